package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

// SatelliteRunner executes registered analyzers over a decision's input.
// Satellites observe and propose; nothing they return is ever written to the
// knowledge base directly. A failing satellite is logged and skipped.
type SatelliteRunner struct {
	satellites []domain.Satellite
	facts      domain.FactStore
	logger     *zap.Logger
}

func NewSatelliteRunner(facts domain.FactStore, logger *zap.Logger, satellites ...domain.Satellite) *SatelliteRunner {
	return &SatelliteRunner{
		satellites: satellites,
		facts:      facts,
		logger:     logger,
	}
}

func (r *SatelliteRunner) Run(ctx context.Context, accountID uuid.UUID, rec *domain.DecisionRecord) map[string]*domain.SatelliteResult {
	if len(r.satellites) == 0 {
		return nil
	}

	facts, err := r.facts.ListActiveByUser(ctx, accountID, rec.RawEvent.UserID)
	if err != nil {
		r.logger.Warn("satellite snapshot unavailable", zap.Error(err))
	}

	in := domain.SatelliteInput{
		AccountID: accountID,
		RawEvent:  rec.RawEvent,
		Facts:     facts,
		Locale:    rec.RawEvent.Locale,
	}

	results := make(map[string]*domain.SatelliteResult, len(r.satellites))
	for _, sat := range r.satellites {
		res, err := sat.Run(ctx, in)
		if err != nil {
			r.logger.Warn("satellite failed", zap.String("satellite", sat.ID()), zap.Error(err))
			continue
		}
		if res != nil {
			results[sat.ID()] = res
		}
	}
	return results
}

// DocClassifierSatellite labels document-like input by keyword class so the
// caller can route attachments without waiting for extraction.
type DocClassifierSatellite struct{}

func (s *DocClassifierSatellite) ID() string { return "doc_classifier" }

var satelliteDocClasses = []struct {
	label    string
	keywords []string
}{
	{"mietvertrag", []string{"mietvertrag"}},
	{"kuendigung", []string{"kündigung", "kuendigung"}},
	{"nebenkostenabrechnung", []string{"nebenkostenabrechnung", "betriebskostenabrechnung"}},
	{"uebergabeprotokoll", []string{"übergabeprotokoll", "uebergabeprotokoll"}},
	{"mahnung", []string{"mahnung", "zahlungserinnerung"}},
}

func (s *DocClassifierSatellite) Run(_ context.Context, in domain.SatelliteInput) (*domain.SatelliteResult, error) {
	lower := strings.ToLower(in.RawEvent.Text)
	for _, c := range satelliteDocClasses {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return &domain.SatelliteResult{
					Insights: []string{fmt.Sprintf("input resembles a %s", c.label)},
					Scores:   map[string]float64{"doc_class_confidence": 0.7},
				}, nil
			}
		}
	}
	return &domain.SatelliteResult{}, nil
}

// SignalSatellite scores soft conversational signals that are not strong
// enough to be triggers but useful to surface alongside a reply.
type SignalSatellite struct{}

func (s *SignalSatellite) ID() string { return "signal_scan" }

var softSignals = map[string][]string{
	"urgency":     {"dringend", "sofort", "asap", "heute noch"},
	"frustration": {"schon wieder", "langsam reicht es", "immer noch", "keine antwort"},
	"uncertainty": {"weiß nicht", "weiss nicht", "unsicher", "keine ahnung"},
}

func (s *SignalSatellite) Run(_ context.Context, in domain.SatelliteInput) (*domain.SatelliteResult, error) {
	lower := strings.ToLower(in.RawEvent.Text)
	scores := make(map[string]float64)
	for signal, phrases := range softSignals {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				scores[signal] = 1.0
				break
			}
		}
	}
	if len(scores) == 0 {
		return &domain.SatelliteResult{}, nil
	}
	return &domain.SatelliteResult{Scores: scores}, nil
}

// DuplicateHintSatellite flags stored facts semantically close to the new
// statement, hinting at re-statements the exact-match identity would miss.
type DuplicateHintSatellite struct {
	embedder domain.EmbeddingClient
	facts    domain.FactStore
	minScore float32
}

func NewDuplicateHintSatellite(embedder domain.EmbeddingClient, facts domain.FactStore) *DuplicateHintSatellite {
	return &DuplicateHintSatellite{embedder: embedder, facts: facts, minScore: 0.85}
}

func (s *DuplicateHintSatellite) ID() string { return "duplicate_hint" }

func (s *DuplicateHintSatellite) Run(ctx context.Context, in domain.SatelliteInput) (*domain.SatelliteResult, error) {
	if s.embedder == nil {
		return &domain.SatelliteResult{}, nil
	}

	vec, err := s.embedder.Embed(ctx, in.RawEvent.Text)
	if err != nil {
		return nil, fmt.Errorf("embed input: %w", err)
	}
	similar, err := s.facts.FindSimilar(ctx, in.AccountID, vec, 5)
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}

	result := &domain.SatelliteResult{Scores: map[string]float64{}}
	for _, fs := range similar {
		if fs.Score < s.minScore {
			continue
		}
		result.Insights = append(result.Insights,
			fmt.Sprintf("statement closely matches stored fact %s (%s)", fs.ID, fs.Key))
		result.Scores["max_similarity"] = max(result.Scores["max_similarity"], float64(fs.Score))
	}
	return result, nil
}
