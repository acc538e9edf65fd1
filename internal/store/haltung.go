package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

type HaltungStore struct {
	db *pgxpool.Pool
}

func NewHaltungStore(db *pgxpool.Pool) *HaltungStore {
	return &HaltungStore{db: db}
}

func (s *HaltungStore) Get(ctx context.Context, accountID uuid.UUID, userID string) (*domain.Stance, error) {
	st := &domain.Stance{}
	err := s.db.QueryRow(ctx,
		`SELECT directness, intervention_depth, patience, escalation_threshold, reflection_level, updated_at
		 FROM haltung WHERE account_id = $1 AND user_id = $2`,
		accountID, userID,
	).Scan(&st.Directness, &st.InterventionDepth, &st.Patience, &st.EscalationThreshold, &st.ReflectionLevel, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

// Set writes the full state. One row per (account, user); the write always
// replaces every dimension so partial patches cannot drift from the engine's
// view of the state.
func (s *HaltungStore) Set(ctx context.Context, accountID uuid.UUID, userID string, st domain.Stance) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO haltung (account_id, user_id, directness, intervention_depth, patience, escalation_threshold, reflection_level, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (account_id, user_id) DO UPDATE
		 SET directness = EXCLUDED.directness,
		     intervention_depth = EXCLUDED.intervention_depth,
		     patience = EXCLUDED.patience,
		     escalation_threshold = EXCLUDED.escalation_threshold,
		     reflection_level = EXCLUDED.reflection_level,
		     updated_at = NOW()`,
		accountID, userID, st.Directness, st.InterventionDepth, st.Patience, st.EscalationThreshold, st.ReflectionLevel,
	)
	return err
}
