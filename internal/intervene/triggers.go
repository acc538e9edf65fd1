package intervene

import (
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

var decisionPhrases = []string{
	"soll ich",
	"was soll ich tun",
	"entscheiden",
	"kündigen oder",
	"kuendigen oder",
	"unterschreiben",
}

var escalationPhrases = []string{
	"dringend",
	"sofort",
	"eskalieren",
	"anwalt",
	"frist läuft",
	"frist laeuft",
	"letzte mahnung",
}

var repeatPhrases = []string{
	"schon wieder",
	"zum dritten mal",
	"immer noch",
	"nochmal das gleiche",
}

// DetectTriggers derives the active triggers for one turn: phrase markers
// from the message, the contradiction trigger from this turn's resolutions,
// and the repeat trigger from either a phrase or the caller-counted
// repetitions of the same normalized message.
func DetectTriggers(message string, resolutions []domain.ResolveResult, repeatCount int) []domain.Trigger {
	lower := strings.ToLower(message)

	var triggers []domain.Trigger
	if containsAny(lower, decisionPhrases) {
		triggers = append(triggers, domain.TriggerDecisionNear)
	}
	if containsAny(lower, escalationPhrases) {
		triggers = append(triggers, domain.TriggerEscalationMarker)
	}
	for _, r := range resolutions {
		if r.Conflict {
			triggers = append(triggers, domain.TriggerContradiction)
			break
		}
	}
	if repeatCount >= 2 || containsAny(lower, repeatPhrases) {
		triggers = append(triggers, domain.TriggerRepeatPattern)
	}
	return triggers
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
