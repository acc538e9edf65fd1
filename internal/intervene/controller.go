// Package intervene decides, per turn, how strongly the system may step
// into the conversation. The decision is a pure function of stance and
// deterministically detected triggers, and every contributing factor comes
// back as a machine-checkable reason code.
package intervene

import (
	"fmt"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

const (
	weightDepth      = 0.55
	weightImpatience = 0.30
	weightDirectness = 0.15

	bonusDecisionNear  = 0.35
	bonusEscalation    = 0.45
	bonusContradiction = 0.40
	bonusRepeat        = 0.25

	thresholdDamping = 0.20

	levelHint       = 0.32
	levelRecommend  = 0.58
	levelContradict = 0.82
)

func triggerBonus(t domain.Trigger) float64 {
	switch t {
	case domain.TriggerDecisionNear:
		return bonusDecisionNear
	case domain.TriggerEscalationMarker:
		return bonusEscalation
	case domain.TriggerContradiction:
		return bonusContradiction
	case domain.TriggerRepeatPattern:
		return bonusRepeat
	}
	return 0
}

// Decide maps stance and triggers to a discrete intervention level.
// Contradict is gated: without an explicit contradiction or escalation
// trigger a high score caps at recommend, and the gate itself is echoed as
// a reason.
func Decide(s domain.Stance, triggers []domain.Trigger) domain.InterventionRecord {
	score := s.InterventionDepth*weightDepth + (1-s.Patience)*weightImpatience + s.Directness*weightDirectness

	reasons := []string{
		fmt.Sprintf("base:intervention_depth=%.2f", s.InterventionDepth),
		fmt.Sprintf("base:impatience=%.2f", 1-s.Patience),
		fmt.Sprintf("base:directness=%.2f", s.Directness),
	}

	hardTrigger := false
	for _, t := range triggers {
		score += triggerBonus(t)
		reasons = append(reasons, "trigger:"+string(t))
		if t == domain.TriggerContradiction || t == domain.TriggerEscalationMarker {
			hardTrigger = true
		}
	}

	if s.EscalationThreshold != 0.5 {
		score -= (s.EscalationThreshold - 0.5) * thresholdDamping
		reasons = append(reasons, fmt.Sprintf("damp:escalation_threshold=%.2f", s.EscalationThreshold))
	}

	score = clamp01(score)

	var level domain.InterventionLevel
	switch {
	case score < levelHint:
		level = domain.LevelObserve
	case score < levelRecommend:
		level = domain.LevelHint
	case score < levelContradict:
		level = domain.LevelRecommend
	default:
		if hardTrigger {
			level = domain.LevelContradict
		} else {
			level = domain.LevelRecommend
			reasons = append(reasons, "gate:contradict_blocked")
		}
	}
	reasons = append(reasons, "level:"+string(level))

	return domain.InterventionRecord{
		Level:       level,
		Score:       score,
		Triggers:    triggers,
		ReasonCodes: reasons,
	}
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
