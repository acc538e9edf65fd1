package domain

import "time"

// StanceDimension names one axis of the behavioral state.
type StanceDimension string

const (
	DimDirectness          StanceDimension = "directness"
	DimInterventionDepth   StanceDimension = "intervention_depth"
	DimPatience            StanceDimension = "patience"
	DimEscalationThreshold StanceDimension = "escalation_threshold"
	DimReflectionLevel     StanceDimension = "reflection_level"
)

// StanceDimensions is the fixed iteration order for deterministic output.
var StanceDimensions = []StanceDimension{
	DimDirectness,
	DimInterventionDepth,
	DimPatience,
	DimEscalationThreshold,
	DimReflectionLevel,
}

// Stance ("Haltung") is the bounded behavioral state shaping how assertively
// downstream output may act. Dimensions live in [0,1], change only on
// explicitly classified feedback, and never decay on their own.
type Stance struct {
	Directness          float64   `json:"directness"`
	InterventionDepth   float64   `json:"intervention_depth"`
	Patience            float64   `json:"patience"`
	EscalationThreshold float64   `json:"escalation_threshold"`
	ReflectionLevel     float64   `json:"reflection_level"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// DefaultStance is the state a user starts from before any feedback.
func DefaultStance() Stance {
	return Stance{
		Directness:          0.5,
		InterventionDepth:   0.5,
		Patience:            0.5,
		EscalationThreshold: 0.5,
		ReflectionLevel:     0.5,
	}
}

func (s Stance) Get(d StanceDimension) float64 {
	switch d {
	case DimDirectness:
		return s.Directness
	case DimInterventionDepth:
		return s.InterventionDepth
	case DimPatience:
		return s.Patience
	case DimEscalationThreshold:
		return s.EscalationThreshold
	case DimReflectionLevel:
		return s.ReflectionLevel
	}
	return 0
}

func (s *Stance) Set(d StanceDimension, v float64) {
	switch d {
	case DimDirectness:
		s.Directness = v
	case DimInterventionDepth:
		s.InterventionDepth = v
	case DimPatience:
		s.Patience = v
	case DimEscalationThreshold:
		s.EscalationThreshold = v
	case DimReflectionLevel:
		s.ReflectionLevel = v
	}
}

// StancePatch is a set of deltas derived from one classified feedback event.
// An empty patch means the message carried no recognizable feedback.
type StancePatch map[StanceDimension]float64
