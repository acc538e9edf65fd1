package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/fingerprint"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

type mockRawEventStore struct {
	events map[string]domain.RawEvent
	order  []string
	err    error
}

func newMockRawEventStore() *mockRawEventStore {
	return &mockRawEventStore{events: make(map[string]domain.RawEvent)}
}

func (m *mockRawEventStore) Append(_ context.Context, _ uuid.UUID, e *domain.RawEvent) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, exists := m.events[e.ID]; exists {
		return false, nil
	}
	m.events[e.ID] = *e
	m.order = append(m.order, e.ID)
	return true, nil
}

func (m *mockRawEventStore) GetByID(_ context.Context, _ uuid.UUID, id string) (*domain.RawEvent, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (m *mockRawEventStore) ListByUser(_ context.Context, _ uuid.UUID, userID string, limit int) ([]domain.RawEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.RawEvent
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.events[m.order[i]]
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockFactStore struct {
	facts      map[string]domain.Fact
	embeddings map[string][]float32
	similar    []domain.FactWithScore
	upsertErr  error
	listErr    error
}

func newMockFactStore() *mockFactStore {
	return &mockFactStore{
		facts:      make(map[string]domain.Fact),
		embeddings: make(map[string][]float32),
	}
}

func (m *mockFactStore) Upsert(_ context.Context, _ uuid.UUID, f *domain.Fact) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	if existing, ok := m.facts[f.ID]; ok && factPayloadEqual(existing, *f) {
		return false, nil
	}
	m.facts[f.ID] = *f
	return true, nil
}

func (m *mockFactStore) GetByID(_ context.Context, _ uuid.UUID, id string) (*domain.Fact, error) {
	f, ok := m.facts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

func (m *mockFactStore) ListByEntity(_ context.Context, _ uuid.UUID, entityID string) ([]domain.Fact, error) {
	var out []domain.Fact
	for _, f := range m.facts {
		if f.EntityID == entityID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFactStore) ListActiveByUser(_ context.Context, _ uuid.UUID, _ string) ([]domain.Fact, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Fact
	for _, f := range m.facts {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFactStore) UpdateEmbedding(_ context.Context, _ uuid.UUID, id string, embedding []float32) error {
	if _, ok := m.facts[id]; !ok {
		return store.ErrNotFound
	}
	m.embeddings[id] = embedding
	return nil
}

func (m *mockFactStore) FindSimilar(_ context.Context, _ uuid.UUID, _ []float32, _ int) ([]domain.FactWithScore, error) {
	return m.similar, nil
}

func factPayloadEqual(a, b domain.Fact) bool {
	return a.ID == b.ID && a.EntityID == b.EntityID && a.Key == b.Key &&
		fmt.Sprintf("%v", a.Value) == fmt.Sprintf("%v", b.Value) && a.Conflict == b.Conflict
}

type mockHaltungStore struct {
	states map[string]domain.Stance
	err    error
}

func newMockHaltungStore() *mockHaltungStore {
	return &mockHaltungStore{states: make(map[string]domain.Stance)}
}

func (m *mockHaltungStore) Get(_ context.Context, _ uuid.UUID, userID string) (*domain.Stance, error) {
	if m.err != nil {
		return nil, m.err
	}
	st, ok := m.states[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &st, nil
}

func (m *mockHaltungStore) Set(_ context.Context, _ uuid.UUID, userID string, st domain.Stance) error {
	if m.err != nil {
		return m.err
	}
	m.states[userID] = st
	return nil
}

type mockConflictStore struct {
	tickets []domain.ConflictTicket
	err     error
}

func newMockConflictStore() *mockConflictStore {
	return &mockConflictStore{}
}

func (m *mockConflictStore) Open(_ context.Context, t *domain.ConflictTicket) error {
	if m.err != nil {
		return m.err
	}
	t.ID = uuid.New()
	m.tickets = append(m.tickets, *t)
	return nil
}

func (m *mockConflictStore) ListOpen(_ context.Context, _ uuid.UUID, userID string) ([]domain.ConflictTicket, error) {
	var out []domain.ConflictTicket
	for _, t := range m.tickets {
		if t.UserID == userID && t.Status != domain.ConflictResolved {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockConflictStore) Resolve(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	for i := range m.tickets {
		if m.tickets[i].ID == id {
			m.tickets[i].Status = domain.ConflictResolved
			return nil
		}
	}
	return store.ErrNotFound
}

// mockEntityResolver mirrors the store behavior: deterministic ids from the
// canonical fingerprint, with optional alias redirects.
type mockEntityResolver struct {
	aliases map[string]string
	calls   int
	err     error
}

func newMockEntityResolver() *mockEntityResolver {
	return &mockEntityResolver{aliases: make(map[string]string)}
}

func (m *mockEntityResolver) Resolve(_ context.Context, _ uuid.UUID, userID string, ref domain.EntityRef) (*domain.Entity, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	canonical := fingerprint.Normalize(ref.Fingerprint)
	id := fingerprint.EntityID(ref.Domain, canonical)
	if target, ok := m.aliases[id]; ok {
		id = target
	}
	return &domain.Entity{
		ID:          id,
		UserID:      userID,
		Domain:      ref.Domain,
		Fingerprint: canonical,
	}, nil
}
