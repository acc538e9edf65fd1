package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/llm"
)

func TestReplyService_Generate(t *testing.T) {
	client := llm.NewMockClient()
	client.ReplyResponse = "Kurzer Hinweis zur Kaution."
	svc := NewReplyService(client, zap.NewNop())

	rec := &domain.DecisionRecord{
		RawEvent: domain.RawEvent{Text: "Die Kaution ist 2.400", Locale: "de-DE"},
		Intervention: domain.InterventionRecord{
			Level:       domain.LevelHint,
			ReasonCodes: []string{"base:directness=0.50", "level:hint"},
		},
	}

	reply, err := svc.Generate(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Kurzer Hinweis zur Kaution." {
		t.Errorf("reply = %q", reply)
	}
	if len(client.ReplyCalls) != 1 {
		t.Fatalf("calls = %d, want 1", len(client.ReplyCalls))
	}

	req := client.ReplyCalls[0]
	if req.Level != domain.LevelHint {
		t.Errorf("level = %q, want hint", req.Level)
	}
	if req.Message != rec.RawEvent.Text || req.Locale != "de-DE" {
		t.Errorf("request = %+v, want message and locale forwarded", req)
	}
}

func TestReplyService_NoClient(t *testing.T) {
	svc := NewReplyService(nil, zap.NewNop())
	_, err := svc.Generate(context.Background(), &domain.DecisionRecord{})
	if !errors.Is(err, ErrReplyClientMissing) {
		t.Errorf("err = %v, want ErrReplyClientMissing", err)
	}
}

func TestReplyService_PropagatesClientError(t *testing.T) {
	client := llm.NewMockClient()
	client.ReplyError = errors.New("upstream down")
	svc := NewReplyService(client, zap.NewNop())

	if _, err := svc.Generate(context.Background(), &domain.DecisionRecord{}); err == nil {
		t.Fatal("expected error")
	}
}
