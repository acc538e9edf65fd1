package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

type FactStore struct {
	db *pgxpool.Pool
}

func NewFactStore(db *pgxpool.Pool) *FactStore {
	return &FactStore{db: db}
}

const factColumns = `id, entity_id, domain, key, value, validity, source, source_ref, meta, conflict, created_at, updated_at`

// Upsert writes the fact under its content id. The conflict branch only
// fires when the payload actually differs, so the returned flag tells the
// executor whether anything changed: identical replays affect zero rows.
func (s *FactStore) Upsert(ctx context.Context, accountID uuid.UUID, f *domain.Fact) (bool, error) {
	value, err := json.Marshal(f.Value)
	if err != nil {
		return false, fmt.Errorf("marshal value: %w", err)
	}
	meta, err := json.Marshal(f.Meta)
	if err != nil {
		return false, fmt.Errorf("marshal meta: %w", err)
	}
	var validity []byte
	if f.Validity != nil {
		if validity, err = json.Marshal(f.Validity); err != nil {
			return false, fmt.Errorf("marshal validity: %w", err)
		}
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO facts (account_id, id, entity_id, domain, key, value, validity, source, source_ref, meta, conflict)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (account_id, id) DO UPDATE
		 SET value = EXCLUDED.value,
		     validity = EXCLUDED.validity,
		     source = EXCLUDED.source,
		     source_ref = EXCLUDED.source_ref,
		     meta = EXCLUDED.meta,
		     conflict = EXCLUDED.conflict,
		     updated_at = NOW()
		 WHERE (facts.value, facts.validity, facts.source, facts.source_ref, facts.meta, facts.conflict)
		       IS DISTINCT FROM
		       (EXCLUDED.value, EXCLUDED.validity, EXCLUDED.source, EXCLUDED.source_ref, EXCLUDED.meta, EXCLUDED.conflict)`,
		accountID, f.ID, f.EntityID, f.Domain, f.Key, value, validity, f.Source, f.SourceRef, meta, f.Conflict,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *FactStore) GetByID(ctx context.Context, accountID uuid.UUID, id string) (*domain.Fact, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+factColumns+` FROM facts WHERE account_id = $1 AND id = $2`,
		accountID, id,
	)
	f, err := scanFact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FactStore) ListByEntity(ctx context.Context, accountID uuid.UUID, entityID string) ([]domain.Fact, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+factColumns+` FROM facts
		 WHERE account_id = $1 AND entity_id = $2
		 ORDER BY key, id`,
		accountID, entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFacts(rows)
}

// ListActiveByUser returns every fact attached to an entity the user has
// referenced, ordered stably so callers can feed it straight back into the
// engine as the prior snapshot.
func (s *FactStore) ListActiveByUser(ctx context.Context, accountID uuid.UUID, userID string) ([]domain.Fact, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+factColumns+` FROM facts
		 WHERE account_id = $1 AND entity_id IN (
		     SELECT id FROM entities WHERE account_id = $1 AND user_id = $2
		 )
		 ORDER BY entity_id, key, id`,
		accountID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFacts(rows)
}

func (s *FactStore) UpdateEmbedding(ctx context.Context, accountID uuid.UUID, id string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	tag, err := s.db.Exec(ctx,
		`UPDATE facts SET embedding = $3, updated_at = NOW()
		 WHERE account_id = $1 AND id = $2`,
		accountID, id, vec,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FactStore) FindSimilar(ctx context.Context, accountID uuid.UUID, embedding []float32, limit int) ([]domain.FactWithScore, error) {
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT `+factColumns+`, 1 - (embedding <=> $2) AS score
		 FROM facts
		 WHERE account_id = $1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		accountID, vec, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find similar query: %w", err)
	}
	defer rows.Close()

	var results []domain.FactWithScore
	for rows.Next() {
		var fs domain.FactWithScore
		var value, meta []byte
		var validity []byte
		err := rows.Scan(
			&fs.ID, &fs.EntityID, &fs.Domain, &fs.Key, &value, &validity,
			&fs.Source, &fs.SourceRef, &meta, &fs.Conflict, &fs.CreatedAt, &fs.UpdatedAt,
			&fs.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan similar row: %w", err)
		}
		if err := unmarshalFactPayload(&fs.Fact, value, validity, meta); err != nil {
			return nil, err
		}
		results = append(results, fs)
	}
	return results, rows.Err()
}

func scanFact(row pgx.Row) (*domain.Fact, error) {
	f := &domain.Fact{}
	var value, meta []byte
	var validity []byte
	err := row.Scan(
		&f.ID, &f.EntityID, &f.Domain, &f.Key, &value, &validity,
		&f.Source, &f.SourceRef, &meta, &f.Conflict, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalFactPayload(f, value, validity, meta); err != nil {
		return nil, err
	}
	return f, nil
}

func collectFacts(rows pgx.Rows) ([]domain.Fact, error) {
	var facts []domain.Fact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, *f)
	}
	return facts, rows.Err()
}

func unmarshalFactPayload(f *domain.Fact, value, validity, meta []byte) error {
	if err := json.Unmarshal(value, &f.Value); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	if len(validity) > 0 {
		f.Validity = &domain.Validity{}
		if err := json.Unmarshal(validity, f.Validity); err != nil {
			return fmt.Errorf("unmarshal validity: %w", err)
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &f.Meta); err != nil {
			return fmt.Errorf("unmarshal meta: %w", err)
		}
	}
	return nil
}
