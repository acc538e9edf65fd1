package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is an API consumer. Authentication hashes the presented key and
// looks the account up by hash; the raw key is never stored.
type Account struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ConflictStatus string

const (
	ConflictOpen     ConflictStatus = "open"
	ConflictResolved ConflictStatus = "resolved"
)

// ConflictTicket is the persisted consequence of a needs_user resolution:
// the system refused to pick a winner and parked the disagreement for the
// user to settle.
type ConflictTicket struct {
	ID         uuid.UUID      `json:"id"`
	AccountID  uuid.UUID      `json:"account_id"`
	UserID     string         `json:"user_id"`
	EntityID   string         `json:"entity_id"`
	Key        string         `json:"key"`
	Candidates []Fact         `json:"candidates"`
	Status     ConflictStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
}
