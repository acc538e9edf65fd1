package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/core"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/factid"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

var (
	ErrIngestUserIDMissing = errors.New("user_id is required")
	ErrIngestTextMissing   = errors.New("text is required")
)

// repeatLookback is how many recent events are scanned to count repetitions
// of the same statement.
const repeatLookback = 20

// IngestService is the impure shell around the engine: it gathers the prior
// snapshot, stamps the day bucket from the wall clock, runs one pure turn,
// and carries out the consequences (writes, conflict tickets, embeddings).
type IngestService struct {
	engine    *core.Engine
	executor  domain.Executor
	rawEvents domain.RawEventStore
	facts     domain.FactStore
	haltung   domain.HaltungStore
	conflicts domain.ConflictStore
	embedder  domain.EmbeddingClient
	logger    *zap.Logger
}

func NewIngestService(
	engine *core.Engine,
	executor domain.Executor,
	rawEvents domain.RawEventStore,
	facts domain.FactStore,
	haltung domain.HaltungStore,
	conflicts domain.ConflictStore,
	embedder domain.EmbeddingClient,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		engine:    engine,
		executor:  executor,
		rawEvents: rawEvents,
		facts:     facts,
		haltung:   haltung,
		conflicts: conflicts,
		embedder:  embedder,
		logger:    logger,
	}
}

type IngestRequest struct {
	UserID       string            `json:"user_id"`
	Locale       string            `json:"locale,omitempty"`
	Text         string            `json:"text"`
	SourceType   domain.SourceType `json:"source_type,omitempty"`
	ExtractorIDs []string          `json:"extractor_ids"`
	DryRun       bool              `json:"dry_run,omitempty"`
}

func (s *IngestService) Ingest(ctx context.Context, accountID uuid.UUID, req IngestRequest) (*core.RunResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrIngestUserIDMissing
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrIngestTextMissing
	}

	prior, err := s.facts.ListActiveByUser(ctx, accountID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load prior facts: %w", err)
	}

	var priorStance *domain.Stance
	st, err := s.haltung.Get(ctx, accountID, req.UserID)
	switch {
	case err == nil:
		priorStance = st
	case errors.Is(err, store.ErrNotFound):
		// First contact, the engine starts from the default.
	default:
		return nil, fmt.Errorf("load haltung: %w", err)
	}

	repeats, err := s.countRepeats(ctx, accountID, req.UserID, req.Text)
	if err != nil {
		s.logger.Warn("repeat count unavailable", zap.Error(err))
	}

	in := core.Input{
		UserID:       req.UserID,
		Locale:       req.Locale,
		Text:         req.Text,
		SourceType:   req.SourceType,
		DayBucket:    time.Now().UTC().Format("2006-01-02"),
		ExtractorIDs: req.ExtractorIDs,
		PriorFacts:   prior,
		PriorStance:  priorStance,
		RepeatCount:  repeats,
	}

	result, err := s.engine.RunWithPersistence(ctx, accountID, s.executor, in, req.DryRun)
	if err != nil {
		return nil, err
	}

	if !req.DryRun {
		s.openConflictTickets(ctx, accountID, req.UserID, result.Record)
		s.embedChangedFacts(ctx, accountID, result.Record)
	}

	return result, nil
}

// countRepeats counts how often the user recently said the same thing. Best
// effort: a storage error degrades to zero instead of failing the turn.
func (s *IngestService) countRepeats(ctx context.Context, accountID uuid.UUID, userID, text string) (int, error) {
	recent, err := s.rawEvents.ListByUser(ctx, accountID, userID, repeatLookback)
	if err != nil {
		return 0, err
	}
	normalized := strings.ToLower(strings.TrimSpace(text))
	count := 0
	for _, e := range recent {
		if strings.ToLower(strings.TrimSpace(e.Text)) == normalized {
			count++
		}
	}
	return count, nil
}

// openConflictTickets files one ticket per resolution the engine handed back
// to the user. Ticket failures are logged, not fatal: the decision record
// already carries the disagreement.
func (s *IngestService) openConflictTickets(ctx context.Context, accountID uuid.UUID, userID string, rec *domain.DecisionRecord) {
	for _, r := range rec.Resolutions {
		if r.Outcome != domain.OutcomeNeedsUser {
			continue
		}
		ticket := &domain.ConflictTicket{
			AccountID:  accountID,
			UserID:     userID,
			EntityID:   r.EntityID,
			Key:        r.Key,
			Candidates: r.Candidates,
		}
		if err := s.conflicts.Open(ctx, ticket); err != nil {
			s.logger.Error("open conflict ticket",
				zap.String("entity_id", r.EntityID),
				zap.String("key", r.Key),
				zap.Error(err))
		}
	}
}

// embedChangedFacts attaches embeddings to new and updated facts so similar
// statements can be found later. Strictly best effort.
func (s *IngestService) embedChangedFacts(ctx context.Context, accountID uuid.UUID, rec *domain.DecisionRecord) {
	if s.embedder == nil {
		return
	}
	for _, c := range rec.Changes {
		if c.Status == domain.DiffIgnored {
			continue
		}
		text := c.Fact.Key + ": " + factid.StableSerialize(c.Fact.Value)
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			s.logger.Warn("embed fact", zap.String("fact_id", c.Fact.ID), zap.Error(err))
			continue
		}
		if err := s.facts.UpdateEmbedding(ctx, accountID, c.Fact.ID, vec); err != nil {
			s.logger.Warn("store embedding", zap.String("fact_id", c.Fact.ID), zap.Error(err))
		}
	}
}
