package domain

import (
	"context"

	"github.com/google/uuid"
)

type AccountStore interface {
	Create(ctx context.Context, a *Account) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Account, error)
}

type RawEventStore interface {
	// Append inserts the event if its id is unseen and reports whether a row
	// was written. Replaying the same event is a no-op.
	Append(ctx context.Context, accountID uuid.UUID, e *RawEvent) (bool, error)
	GetByID(ctx context.Context, accountID uuid.UUID, id string) (*RawEvent, error)
	ListByUser(ctx context.Context, accountID uuid.UUID, userID string, limit int) ([]RawEvent, error)
}

type FactStore interface {
	// Upsert writes the fact keyed by its content id and reports whether the
	// row changed. Writing an identical payload twice changes nothing.
	Upsert(ctx context.Context, accountID uuid.UUID, f *Fact) (bool, error)
	GetByID(ctx context.Context, accountID uuid.UUID, id string) (*Fact, error)
	ListByEntity(ctx context.Context, accountID uuid.UUID, entityID string) ([]Fact, error)
	ListActiveByUser(ctx context.Context, accountID uuid.UUID, userID string) ([]Fact, error)
	UpdateEmbedding(ctx context.Context, accountID uuid.UUID, id string, embedding []float32) error
	FindSimilar(ctx context.Context, accountID uuid.UUID, embedding []float32, limit int) ([]FactWithScore, error)
}

type HaltungStore interface {
	Get(ctx context.Context, accountID uuid.UUID, userID string) (*Stance, error)
	Set(ctx context.Context, accountID uuid.UUID, userID string, s Stance) error
}

type ConflictStore interface {
	Open(ctx context.Context, t *ConflictTicket) error
	ListOpen(ctx context.Context, accountID uuid.UUID, userID string) ([]ConflictTicket, error)
	Resolve(ctx context.Context, accountID uuid.UUID, id uuid.UUID) error
}

// EntityResolver maps a fingerprint reference onto a stored entity, creating
// it when unseen. Exclusivity (at most one entity per canonical fingerprint)
// is this collaborator's contract, enforced with a transactional
// read-modify-write; the pure core never calls it.
type EntityResolver interface {
	Resolve(ctx context.Context, accountID uuid.UUID, userID string, ref EntityRef) (*Entity, error)
}

// Executor applies a compiled write plan. Implementations must be
// idempotent: executing an unchanged plan again reports a no-op rather than
// duplicating writes.
type Executor interface {
	Execute(ctx context.Context, accountID uuid.UUID, plan WritePlan, rec *DecisionRecord) (*ExecResult, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ReplyRequest is everything the reply generator is allowed to see: the
// intervention level with its reasons and the user's message. Raw stance
// numbers deliberately stay out of this contract.
type ReplyRequest struct {
	Level       InterventionLevel
	ReasonCodes []string
	Message     string
	Locale      string
}

type ReplyClient interface {
	Reply(ctx context.Context, req ReplyRequest) (string, error)
}

// SatelliteInput is the read-only snapshot handed to analyzers.
type SatelliteInput struct {
	AccountID uuid.UUID
	RawEvent  RawEvent
	Facts     []Fact
	Locale    string
}

// FactProposal is a satellite suggestion. Proposals never become facts
// unless an extractor run accepts equivalent input; satellites observe and
// propose, they do not decide or write.
type FactProposal struct {
	Entity EntityRef `json:"entity"`
	Key    string    `json:"key"`
	Value  any       `json:"value"`
	Reason string    `json:"reason,omitempty"`
}

type SatelliteResult struct {
	Insights  []string           `json:"insights,omitempty"`
	Proposals []FactProposal     `json:"proposals,omitempty"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

type Satellite interface {
	ID() string
	Run(ctx context.Context, in SatelliteInput) (*SatelliteResult, error)
}
