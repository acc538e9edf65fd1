package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

type AccountStore struct {
	db *pgxpool.Pool
}

func NewAccountStore(db *pgxpool.Pool) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, a *domain.Account) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO accounts (name, api_key_hash) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		a.Name, a.APIKeyHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (s *AccountStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Account, error) {
	a := &domain.Account{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, api_key_hash, created_at, updated_at
		 FROM accounts WHERE api_key_hash = $1`,
		apiKeyHash,
	).Scan(&a.ID, &a.Name, &a.APIKeyHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
