// Package resolve picks at most one winner among disagreeing facts for one
// (entity, key) and classifies resolved facts against prior state.
package resolve

import (
	"errors"
	"sort"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/factid"
)

// ErrNoCandidates marks a caller contract violation: resolution over an
// empty list is programmer error, not user data.
var ErrNoCandidates = errors.New("resolve: empty candidate list")

const (
	// DefaultTieDelta is the score distance below which two disagreeing
	// candidates are handed to the user instead of auto-resolved.
	DefaultTieDelta = 2.0

	weightReliability   = 25.0
	weightConfidence    = 25.0
	weightTemporal      = 15.0
	weightUserConfirmed = 15.0
	weightSystem        = 5.0
	weightLatest        = 15.0

	// neutralMidpoint substitutes for missing confidence or reliability so
	// sparse metadata is not unfairly penalized.
	neutralMidpoint = 0.5
)

type Options struct {
	TieDelta float64
}

func DefaultOptions() Options {
	return Options{TieDelta: DefaultTieDelta}
}

// Score computes the strength of one candidate in [0,100].
func Score(f domain.Fact) float64 {
	reliability := neutralMidpoint
	if f.Meta.SourceReliability != nil {
		reliability = *f.Meta.SourceReliability
	}
	confidence := neutralMidpoint
	if f.Meta.Confidence != nil {
		confidence = *f.Meta.Confidence
	}

	s := reliability*weightReliability + confidence*weightConfidence
	s += f.Meta.Temporal.Score() * weightTemporal
	if f.Meta.UserConfirmed {
		s += weightUserConfirmed
	}
	if f.Meta.System {
		s += weightSystem
	}
	if f.Meta.Latest {
		s += weightLatest
	}
	return s
}

// Resolve ranks all active candidates for one (entity, key). A final user
// override wins unconditionally; otherwise the strength score decides, and
// two disagreeing candidates within the tie delta are a question for the
// user, not for this code.
func Resolve(candidates []domain.Fact, opts Options) (domain.ResolveResult, error) {
	if len(candidates) == 0 {
		return domain.ResolveResult{}, ErrNoCandidates
	}

	type scored struct {
		fact     domain.Fact
		score    float64
		override bool
		valueKey string
	}

	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{
			fact:     c,
			score:    Score(c),
			override: c.Meta.Override && c.Meta.Finality == domain.FinalityFinal,
			valueKey: factid.StableSerialize(c.Value),
		}
	}

	// Overrides first, then score, then id for a total deterministic order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].override != ranked[j].override {
			return ranked[i].override
		}
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].fact.ID < ranked[j].fact.ID
	})

	scores := make([]domain.CandidateScore, len(ranked))
	for i, r := range ranked {
		scores[i] = domain.CandidateScore{FactID: r.fact.ID, Score: r.score, Override: r.override}
	}

	top := ranked[0]
	disagreement := false
	for _, r := range ranked[1:] {
		if r.valueKey != top.valueKey {
			disagreement = true
			break
		}
	}

	result := domain.ResolveResult{
		EntityID: top.fact.EntityID,
		Key:      top.fact.Key,
		Scores:   scores,
	}

	if top.override {
		winner := top.fact
		winner.Conflict = disagreement
		result.Winner = &winner
		result.Conflict = disagreement
		result.Outcome = domain.OutcomeResolved
		if disagreement {
			result.Outcome = domain.OutcomeResolvedWithConflict
		}
		return result, nil
	}

	if len(ranked) > 1 {
		second := ranked[1]
		if top.score-second.score <= opts.TieDelta && top.valueKey != second.valueKey {
			// A tie over the same value is no tie at all; this one is a real
			// disagreement the system refuses to auto-resolve.
			result.Outcome = domain.OutcomeNeedsUser
			result.Conflict = true
			result.Candidates = make([]domain.Fact, len(ranked))
			for i, r := range ranked {
				result.Candidates[i] = r.fact
			}
			return result, nil
		}
	}

	winner := top.fact
	winner.Conflict = disagreement
	result.Winner = &winner
	result.Conflict = disagreement
	result.Outcome = domain.OutcomeResolved
	if disagreement {
		result.Outcome = domain.OutcomeResolvedWithConflict
	}
	return result, nil
}
