package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/fingerprint"
)

type EntityStore struct {
	db *pgxpool.Pool
}

func NewEntityStore(db *pgxpool.Pool) *EntityStore {
	return &EntityStore{db: db}
}

// Resolve maps a fingerprint reference onto its stored entity, creating the
// row on first sight. The canonical fingerprint is recorded as an alias
// inside the same transaction, so spelling variants observed later can be
// attached to the existing entity instead of forking a duplicate.
func (s *EntityStore) Resolve(ctx context.Context, accountID uuid.UUID, userID string, ref domain.EntityRef) (*domain.Entity, error) {
	canonical := fingerprint.Normalize(ref.Fingerprint)
	if canonical == "" {
		return nil, fmt.Errorf("entity fingerprint %q normalizes to nothing", ref.Fingerprint)
	}
	id := fingerprint.EntityID(ref.Domain, canonical)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// An alias row may already point this fingerprint at an earlier entity,
	// e.g. after a user merged two spellings.
	var aliasTarget string
	err = tx.QueryRow(ctx,
		`SELECT entity_id FROM entity_aliases
		 WHERE account_id = $1 AND user_id = $2 AND domain = $3 AND fingerprint = $4`,
		accountID, userID, ref.Domain, canonical,
	).Scan(&aliasTarget)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if aliasTarget != "" {
		id = aliasTarget
	}

	e := &domain.Entity{}
	err = tx.QueryRow(ctx,
		`INSERT INTO entities (account_id, id, user_id, domain, fingerprint, display_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (account_id, id) DO UPDATE SET updated_at = NOW()
		 RETURNING id, user_id, domain, fingerprint, display_name, created_at, updated_at`,
		accountID, id, userID, ref.Domain, canonical, ref.Fingerprint,
	).Scan(&e.ID, &e.UserID, &e.Domain, &e.Fingerprint, &e.DisplayName, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if aliasTarget == "" {
		if _, err := tx.Exec(ctx,
			`INSERT INTO entity_aliases (account_id, user_id, domain, fingerprint, entity_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (account_id, user_id, domain, fingerprint) DO NOTHING`,
			accountID, userID, ref.Domain, canonical, e.ID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EntityStore) GetByID(ctx context.Context, accountID uuid.UUID, id string) (*domain.Entity, error) {
	e := &domain.Entity{}
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, domain, fingerprint, display_name, created_at, updated_at
		 FROM entities WHERE account_id = $1 AND id = $2`,
		accountID, id,
	).Scan(&e.ID, &e.UserID, &e.Domain, &e.Fingerprint, &e.DisplayName, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EntityStore) ListByUser(ctx context.Context, accountID uuid.UUID, userID string) ([]domain.Entity, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, domain, fingerprint, display_name, created_at, updated_at
		 FROM entities WHERE account_id = $1 AND user_id = $2
		 ORDER BY domain, fingerprint`,
		accountID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.ID, &e.UserID, &e.Domain, &e.Fingerprint, &e.DisplayName, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// AddAlias points an additional fingerprint spelling at an existing entity.
func (s *EntityStore) AddAlias(ctx context.Context, accountID uuid.UUID, userID string, ref domain.EntityRef, entityID string) error {
	canonical := fingerprint.Normalize(ref.Fingerprint)
	if canonical == "" {
		return fmt.Errorf("entity fingerprint %q normalizes to nothing", ref.Fingerprint)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO entity_aliases (account_id, user_id, domain, fingerprint, entity_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (account_id, user_id, domain, fingerprint)
		 DO UPDATE SET entity_id = EXCLUDED.entity_id`,
		accountID, userID, ref.Domain, canonical, entityID,
	)
	return err
}
