// Package stance adapts the behavioral state ("Haltung") from explicit user
// feedback. Detection is fixed, conservative phrase matching, never
// probabilistic, and each recognized signal moves specific dimensions by
// one fixed step. No phrase, no change; the state never decays on its own.
package stance

import (
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

// DefaultStep is the fixed adjustment magnitude per classified feedback
// event. Exposed as configuration, not a value to tune per call.
const DefaultStep = 0.08

type Options struct {
	Step float64
}

func DefaultOptions() Options {
	return Options{Step: DefaultStep}
}

// signal maps trigger phrases to the direction each dimension moves.
type signal struct {
	phrases    []string
	directions map[domain.StanceDimension]int
}

var signals = []signal{
	{
		// Too harsh for the user's taste: back off.
		phrases: []string{"zu direkt", "zu hart", "zu forsch", "nicht so direkt"},
		directions: map[domain.StanceDimension]int{
			domain.DimDirectness:        -1,
			domain.DimInterventionDepth: -1,
			domain.DimPatience:          +1,
		},
	},
	{
		phrases: []string{"zu vorsichtig", "sei direkter", "mehr klartext", "sag es direkt"},
		directions: map[domain.StanceDimension]int{
			domain.DimDirectness:        +1,
			domain.DimInterventionDepth: +1,
		},
	},
	{
		phrases: []string{"kürzer", "kuerzer", "zu lang", "fass dich kurz", "zu ausführlich", "zu ausfuehrlich"},
		directions: map[domain.StanceDimension]int{
			domain.DimReflectionLevel: -1,
		},
	},
	{
		phrases: []string{"mehr detail", "mehr details", "ausführlicher", "ausfuehrlicher", "mehr kontext"},
		directions: map[domain.StanceDimension]int{
			domain.DimReflectionLevel: +1,
		},
	},
	{
		phrases: []string{"zu schnell", "nicht so schnell", "lass mir zeit"},
		directions: map[domain.StanceDimension]int{
			domain.DimPatience:            +1,
			domain.DimEscalationThreshold: +1,
		},
	},
	{
		phrases: []string{"zu langsam", "zu zögerlich", "zu zoegerlich"},
		directions: map[domain.StanceDimension]int{
			domain.DimPatience:            -1,
			domain.DimEscalationThreshold: -1,
		},
	},
}

// DetectPatch classifies a message against the fixed phrase table and
// returns the resulting deltas. Contradictory signals on one dimension in
// the same message cancel: that dimension gets no patch at all.
func DetectPatch(message string, opts Options) domain.StancePatch {
	lower := strings.ToLower(message)

	pos := make(map[domain.StanceDimension]bool)
	neg := make(map[domain.StanceDimension]bool)
	for _, sig := range signals {
		matched := false
		for _, p := range sig.phrases {
			if strings.Contains(lower, p) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for dim, dir := range sig.directions {
			if dir > 0 {
				pos[dim] = true
			} else {
				neg[dim] = true
			}
		}
	}

	patch := make(domain.StancePatch)
	for _, dim := range domain.StanceDimensions {
		switch {
		case pos[dim] && neg[dim]:
			// Cancel.
		case pos[dim]:
			patch[dim] = opts.Step
		case neg[dim]:
			patch[dim] = -opts.Step
		}
	}
	if len(patch) == 0 {
		return nil
	}
	return patch
}

// Apply returns the stance after a patch, each dimension clamped to [0,1].
// UpdatedAt is untouched; the persistence layer stamps it.
func Apply(current domain.Stance, patch domain.StancePatch) domain.Stance {
	next := current
	for dim, delta := range patch {
		next.Set(dim, clamp01(next.Get(dim)+delta))
	}
	return next
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
