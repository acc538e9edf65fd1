package domain

type InterventionLevel string

const (
	LevelObserve    InterventionLevel = "observe"
	LevelHint       InterventionLevel = "hint"
	LevelRecommend  InterventionLevel = "recommend"
	LevelContradict InterventionLevel = "contradict"
)

// Trigger is a deterministically detected condition that raises the
// intervention score.
type Trigger string

const (
	TriggerDecisionNear     Trigger = "decision_near"
	TriggerEscalationMarker Trigger = "escalation_marker"
	TriggerContradiction    Trigger = "contradiction"
	TriggerRepeatPattern    Trigger = "repeat_pattern"
)

// InterventionRecord is derived fresh each turn from stance and triggers.
// ReasonCodes carry the full justification; downstream consumers see the
// level and reasons only, never raw stance numbers.
type InterventionRecord struct {
	Level       InterventionLevel `json:"level"`
	Score       float64           `json:"score"`
	Triggers    []Trigger         `json:"triggers,omitempty"`
	ReasonCodes []string          `json:"reason_codes"`
}
