package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/embedding"
)

type failingSatellite struct{}

func (s *failingSatellite) ID() string { return "broken" }

func (s *failingSatellite) Run(context.Context, domain.SatelliteInput) (*domain.SatelliteResult, error) {
	return nil, errors.New("boom")
}

func TestSatelliteRunner_FailureIsIsolated(t *testing.T) {
	facts := newMockFactStore()
	runner := NewSatelliteRunner(facts, zap.NewNop(), &failingSatellite{}, &SignalSatellite{})

	rec := &domain.DecisionRecord{
		RawEvent: domain.RawEvent{UserID: "user-1", Text: "Das ist dringend, keine Antwort seit Tagen."},
	}
	results := runner.Run(context.Background(), uuid.New(), rec)

	if _, ok := results["broken"]; ok {
		t.Error("failed satellite must not report a result")
	}
	res, ok := results["signal_scan"]
	if !ok {
		t.Fatal("healthy satellite must still run")
	}
	if res.Scores["urgency"] != 1.0 {
		t.Errorf("scores = %v, want urgency flagged", res.Scores)
	}
}

func TestDocClassifierSatellite(t *testing.T) {
	sat := &DocClassifierSatellite{}
	res, err := sat.Run(context.Background(), domain.SatelliteInput{
		RawEvent: domain.RawEvent{Text: "Anbei die Betriebskostenabrechnung für 2023."},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Insights) != 1 {
		t.Fatalf("insights = %v, want a classification", res.Insights)
	}
}

func TestDuplicateHintSatellite(t *testing.T) {
	facts := newMockFactStore()
	facts.similar = []domain.FactWithScore{
		{Fact: domain.Fact{ID: "f1", Key: "rent_cold"}, Score: 0.93},
		{Fact: domain.Fact{ID: "f2", Key: "deposit"}, Score: 0.41},
	}
	sat := NewDuplicateHintSatellite(embedding.NewMockClient(), facts)

	res, err := sat.Run(context.Background(), domain.SatelliteInput{
		AccountID: uuid.New(),
		RawEvent:  domain.RawEvent{Text: "Die Kaltmiete ist 1200"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Insights) != 1 {
		t.Fatalf("insights = %v, want only the close match", res.Insights)
	}
	if res.Scores["max_similarity"] < 0.92 {
		t.Errorf("max similarity = %v, want the top score", res.Scores["max_similarity"])
	}
}
