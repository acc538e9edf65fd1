package domain

type ResolveOutcome string

const (
	OutcomeResolved             ResolveOutcome = "resolved"
	OutcomeResolvedWithConflict ResolveOutcome = "resolved_with_conflict"
	OutcomeNeedsUser            ResolveOutcome = "needs_user"
)

// CandidateScore is the per-candidate debug breakdown of one resolution.
type CandidateScore struct {
	FactID   string  `json:"fact_id"`
	Score    float64 `json:"score"`
	Override bool    `json:"override,omitempty"`
}

// ResolveResult is the outcome of resolving all candidates for one
// (entity, key). It is recomputed on demand and never persisted as source of
// truth; only its consequence (a conflict ticket) is.
type ResolveResult struct {
	EntityID string           `json:"entity_id"`
	Key      string           `json:"key"`
	Outcome  ResolveOutcome   `json:"outcome"`
	Winner   *Fact            `json:"winner,omitempty"`
	Conflict bool             `json:"conflict"`
	Scores   []CandidateScore `json:"scores"`
	// Candidates carries the disputed facts when the outcome is needs_user,
	// so a conflict ticket can be filed without re-deriving them.
	Candidates []Fact `json:"candidates,omitempty"`
}

type DiffStatus string

const (
	DiffNew     DiffStatus = "new"
	DiffUpdated DiffStatus = "updated"
	DiffIgnored DiffStatus = "ignored"
)

// FactChange classifies one resolved fact against the prior snapshot.
type FactChange struct {
	Fact   Fact       `json:"fact"`
	Status DiffStatus `json:"status"`
}
