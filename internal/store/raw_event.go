package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

type RawEventStore struct {
	db *pgxpool.Pool
}

func NewRawEventStore(db *pgxpool.Pool) *RawEventStore {
	return &RawEventStore{db: db}
}

// Append inserts the event unless its content id was already seen. The
// conflict target makes replays a clean no-op instead of an error.
func (s *RawEventStore) Append(ctx context.Context, accountID uuid.UUID, e *domain.RawEvent) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO raw_events (account_id, id, user_id, locale, text, source_type, day_bucket, ingested_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (account_id, id) DO NOTHING`,
		accountID, e.ID, e.UserID, e.Locale, e.Text, e.SourceType, e.DayBucket,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *RawEventStore) GetByID(ctx context.Context, accountID uuid.UUID, id string) (*domain.RawEvent, error) {
	e := &domain.RawEvent{}
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, locale, text, source_type, day_bucket, EXTRACT(EPOCH FROM ingested_at)::bigint
		 FROM raw_events WHERE account_id = $1 AND id = $2`,
		accountID, id,
	).Scan(&e.ID, &e.UserID, &e.Locale, &e.Text, &e.SourceType, &e.DayBucket, &e.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *RawEventStore) ListByUser(ctx context.Context, accountID uuid.UUID, userID string, limit int) ([]domain.RawEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, locale, text, source_type, day_bucket, EXTRACT(EPOCH FROM ingested_at)::bigint
		 FROM raw_events WHERE account_id = $1 AND user_id = $2
		 ORDER BY ingested_at DESC
		 LIMIT $3`,
		accountID, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.RawEvent
	for rows.Next() {
		var e domain.RawEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Locale, &e.Text, &e.SourceType, &e.DayBucket, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
