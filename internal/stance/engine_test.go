package stance

import (
	"math"
	"testing"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDetectPatch_TooDirect(t *testing.T) {
	patch := DetectPatch("Das war mir zu direkt, bitte sanfter.", DefaultOptions())

	if !almostEqual(patch[domain.DimDirectness], -0.08) {
		t.Errorf("directness delta = %v, want -0.08", patch[domain.DimDirectness])
	}
	if !almostEqual(patch[domain.DimInterventionDepth], -0.08) {
		t.Errorf("intervention_depth delta = %v, want -0.08", patch[domain.DimInterventionDepth])
	}
	if !almostEqual(patch[domain.DimPatience], 0.08) {
		t.Errorf("patience delta = %v, want +0.08", patch[domain.DimPatience])
	}
	if _, ok := patch[domain.DimReflectionLevel]; ok {
		t.Error("reflection_level must be untouched")
	}
}

func TestDetectPatch_NoTriggerPhrase(t *testing.T) {
	if patch := DetectPatch("ok", DefaultOptions()); patch != nil {
		t.Errorf("plain acknowledgement must not patch, got %v", patch)
	}
	if patch := DetectPatch("Die Kaltmiete beträgt 900 Euro.", DefaultOptions()); patch != nil {
		t.Errorf("factual statement must not patch, got %v", patch)
	}
}

func TestDetectPatch_ContradictorySignalsCancel(t *testing.T) {
	// "kürzer" pushes reflection down, "mehr details" pushes it up.
	patch := DetectPatch("Bitte kürzer, aber mit mehr Details zu den Kosten.", DefaultOptions())
	if _, ok := patch[domain.DimReflectionLevel]; ok {
		t.Errorf("contradictory signals must cancel, got %v", patch[domain.DimReflectionLevel])
	}
}

func TestDetectPatch_CaseInsensitive(t *testing.T) {
	patch := DetectPatch("ZU DIREKT!", DefaultOptions())
	if patch == nil {
		t.Fatal("expected a patch for uppercase feedback")
	}
}

func TestApply_Clamping(t *testing.T) {
	s := domain.DefaultStance()
	s.Directness = 0.02
	s.Patience = 0.98

	next := Apply(s, domain.StancePatch{
		domain.DimDirectness: -0.08,
		domain.DimPatience:   +0.08,
	})

	if next.Directness != 0 {
		t.Errorf("directness = %v, want clamped 0", next.Directness)
	}
	if next.Patience != 1 {
		t.Errorf("patience = %v, want clamped 1", next.Patience)
	}
}

func TestApply_EmptyPatchIsIdentity(t *testing.T) {
	s := domain.DefaultStance()
	s.Directness = 0.42

	if next := Apply(s, nil); next != s {
		t.Errorf("empty patch must not change stance: %+v", next)
	}
}

func TestApply_StepSequence(t *testing.T) {
	s := domain.DefaultStance()
	for i := 0; i < 3; i++ {
		s = Apply(s, DetectPatch("zu direkt", DefaultOptions()))
	}
	if !almostEqual(s.Directness, 0.5-3*0.08) {
		t.Errorf("directness after 3 steps = %v, want 0.26", s.Directness)
	}
}
