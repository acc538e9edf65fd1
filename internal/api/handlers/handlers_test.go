package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/embedding"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

// MockAccountStore mocks the AccountStore interface.
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Create(ctx context.Context, a *domain.Account) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = uuid.New()
		a.CreatedAt = time.Now()
		a.UpdatedAt = a.CreatedAt
	}
	return args.Error(0)
}

func (m *MockAccountStore) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Account, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockFactStore mocks the FactStore interface.
type MockFactStore struct {
	mock.Mock
}

func (m *MockFactStore) Upsert(ctx context.Context, accountID uuid.UUID, f *domain.Fact) (bool, error) {
	args := m.Called(ctx, accountID, f)
	return args.Bool(0), args.Error(1)
}

func (m *MockFactStore) GetByID(ctx context.Context, accountID uuid.UUID, id string) (*domain.Fact, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fact), args.Error(1)
}

func (m *MockFactStore) ListByEntity(ctx context.Context, accountID uuid.UUID, entityID string) ([]domain.Fact, error) {
	args := m.Called(ctx, accountID, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fact), args.Error(1)
}

func (m *MockFactStore) ListActiveByUser(ctx context.Context, accountID uuid.UUID, userID string) ([]domain.Fact, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fact), args.Error(1)
}

func (m *MockFactStore) UpdateEmbedding(ctx context.Context, accountID uuid.UUID, id string, embedding []float32) error {
	args := m.Called(ctx, accountID, id, embedding)
	return args.Error(0)
}

func (m *MockFactStore) FindSimilar(ctx context.Context, accountID uuid.UUID, embedding []float32, limit int) ([]domain.FactWithScore, error) {
	args := m.Called(ctx, accountID, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FactWithScore), args.Error(1)
}

// MockHaltungStore mocks the HaltungStore interface.
type MockHaltungStore struct {
	mock.Mock
}

func (m *MockHaltungStore) Get(ctx context.Context, accountID uuid.UUID, userID string) (*domain.Stance, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stance), args.Error(1)
}

func (m *MockHaltungStore) Set(ctx context.Context, accountID uuid.UUID, userID string, s domain.Stance) error {
	args := m.Called(ctx, accountID, userID, s)
	return args.Error(0)
}

const testAPIKey = "ak_test"

func testAccount() *domain.Account {
	return &domain.Account{
		ID:         uuid.New(),
		Name:       "Test Account",
		APIKeyHash: middleware.HashAPIKey(testAPIKey),
	}
}

// serve routes the request through API key auth the same way the real
// router does, so handlers see the account on the context.
func serve(t *testing.T, accounts domain.AccountStore, method, pattern, target string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(middleware.APIKeyAuth(accounts))
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func authedAccountStore(account *domain.Account) *MockAccountStore {
	accounts := new(MockAccountStore)
	accounts.On("GetByAPIKeyHash", mock.Anything, account.APIKeyHash).Return(account, nil)
	return accounts
}

func TestFactHandler_ListRequiresUserID(t *testing.T) {
	account := testAccount()
	facts := new(MockFactStore)
	h := NewFactHandler(facts, nil, zap.NewNop())

	rec := serve(t, authedAccountStore(account), http.MethodGet, "/facts", "/facts", h.List)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	facts.AssertNotCalled(t, "ListActiveByUser")
}

func TestFactHandler_List(t *testing.T) {
	account := testAccount()
	facts := new(MockFactStore)
	facts.On("ListActiveByUser", mock.Anything, account.ID, "user-1").Return([]domain.Fact{
		{ID: "f1", Key: "rent_cold", Value: 1200.5},
	}, nil)
	h := NewFactHandler(facts, nil, zap.NewNop())

	rec := serve(t, authedAccountStore(account), http.MethodGet, "/facts", "/facts?user_id=user-1", h.List)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rent_cold")
	facts.AssertExpectations(t)
}

func TestFactHandler_GetNotFound(t *testing.T) {
	account := testAccount()
	facts := new(MockFactStore)
	facts.On("GetByID", mock.Anything, account.ID, "missing").Return(nil, store.ErrNotFound)
	h := NewFactHandler(facts, nil, zap.NewNop())

	rec := serve(t, authedAccountStore(account), http.MethodGet, "/facts/{id}", "/facts/missing", h.Get)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFactHandler_Search(t *testing.T) {
	account := testAccount()
	facts := new(MockFactStore)
	facts.On("FindSimilar", mock.Anything, account.ID, mock.Anything, 10).Return([]domain.FactWithScore{
		{Fact: domain.Fact{ID: "f1", Key: "deposit"}, Score: 0.91},
	}, nil)
	h := NewFactHandler(facts, embedding.NewMockClient(), zap.NewNop())

	rec := serve(t, authedAccountStore(account), http.MethodGet, "/facts/search", "/facts/search?q=Kaution", h.Search)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deposit")
	facts.AssertExpectations(t)
}

func TestFactHandler_SearchRequiresQuery(t *testing.T) {
	account := testAccount()
	h := NewFactHandler(new(MockFactStore), embedding.NewMockClient(), zap.NewNop())

	rec := serve(t, authedAccountStore(account), http.MethodGet, "/facts/search", "/facts/search", h.Search)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHaltungHandler_DefaultsWhenUnseen(t *testing.T) {
	account := testAccount()
	haltung := new(MockHaltungStore)
	haltung.On("Get", mock.Anything, account.ID, "new-user").Return(nil, store.ErrNotFound)
	h := NewHaltungHandler(haltung, zap.NewNop())

	rec := serve(t, authedAccountStore(account), http.MethodGet, "/haltung/{userID}", "/haltung/new-user", h.Get)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "directness")
}

func TestAuth_RejectsMissingKey(t *testing.T) {
	accounts := new(MockAccountStore)
	accounts.On("GetByAPIKeyHash", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound)

	r := chi.NewRouter()
	r.Use(middleware.APIKeyAuth(accounts))
	r.Get("/facts", NewFactHandler(new(MockFactStore), nil, zap.NewNop()).List)

	req := httptest.NewRequest(http.MethodGet, "/facts?user_id=u", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}
