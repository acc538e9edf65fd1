package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

var ErrReplyClientMissing = errors.New("reply client not configured")

// ReplyService renders a decision into user-facing text. It sees only the
// intervention verdict and the message; stance values never leave the
// engine.
type ReplyService struct {
	client domain.ReplyClient
	logger *zap.Logger
}

func NewReplyService(client domain.ReplyClient, logger *zap.Logger) *ReplyService {
	return &ReplyService{client: client, logger: logger}
}

func (s *ReplyService) Generate(ctx context.Context, rec *domain.DecisionRecord) (string, error) {
	if s.client == nil {
		return "", ErrReplyClientMissing
	}

	reply, err := s.client.Reply(ctx, domain.ReplyRequest{
		Level:       rec.Intervention.Level,
		ReasonCodes: rec.Intervention.ReasonCodes,
		Message:     rec.RawEvent.Text,
		Locale:      rec.RawEvent.Locale,
	})
	if err != nil {
		s.logger.Error("reply generation failed",
			zap.String("level", string(rec.Intervention.Level)),
			zap.Error(err))
		return "", err
	}
	return reply, nil
}
