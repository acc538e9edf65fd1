package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

type ConflictStore struct {
	db *pgxpool.Pool
}

func NewConflictStore(db *pgxpool.Pool) *ConflictStore {
	return &ConflictStore{db: db}
}

// Open files a ticket for a disagreement the resolver refused to settle. One
// open ticket per (account, user, entity, key); re-opening the same
// disagreement refreshes the candidates instead of stacking tickets.
func (s *ConflictStore) Open(ctx context.Context, t *domain.ConflictTicket) error {
	candidates, err := json.Marshal(t.Candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO conflict_tickets (account_id, user_id, entity_id, key, candidates, status)
		 VALUES ($1, $2, $3, $4, $5, 'open')
		 ON CONFLICT (account_id, user_id, entity_id, key) WHERE status = 'open'
		 DO UPDATE SET candidates = EXCLUDED.candidates
		 RETURNING id, created_at`,
		t.AccountID, t.UserID, t.EntityID, t.Key, candidates,
	).Scan(&t.ID, &t.CreatedAt)
}

func (s *ConflictStore) ListOpen(ctx context.Context, accountID uuid.UUID, userID string) ([]domain.ConflictTicket, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, account_id, user_id, entity_id, key, candidates, status, created_at, resolved_at
		 FROM conflict_tickets
		 WHERE account_id = $1 AND user_id = $2 AND status = 'open'
		 ORDER BY created_at ASC`,
		accountID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.ConflictTicket
	for rows.Next() {
		var t domain.ConflictTicket
		var candidates []byte
		if err := rows.Scan(&t.ID, &t.AccountID, &t.UserID, &t.EntityID, &t.Key, &candidates, &t.Status, &t.CreatedAt, &t.ResolvedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(candidates, &t.Candidates); err != nil {
			return nil, fmt.Errorf("unmarshal candidates: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *ConflictStore) Resolve(ctx context.Context, accountID uuid.UUID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE conflict_tickets SET status = 'resolved', resolved_at = NOW()
		 WHERE account_id = $1 AND id = $2 AND status = 'open'`,
		accountID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
