package llm

import (
	"context"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

// MockClient is a configurable reply client for testing. Set the response
// fields to control what Reply returns; calls are recorded for assertions.
type MockClient struct {
	ReplyResponse string
	ReplyError    error

	ReplyCalls []domain.ReplyRequest
}

func NewMockClient() *MockClient {
	return &MockClient{
		ReplyResponse: "Mock reply",
	}
}

func (c *MockClient) Reply(ctx context.Context, req domain.ReplyRequest) (string, error) {
	c.ReplyCalls = append(c.ReplyCalls, req)
	if c.ReplyError != nil {
		return "", c.ReplyError
	}
	return c.ReplyResponse, nil
}

// Reset clears recorded calls and restores the default response.
func (c *MockClient) Reset() {
	c.ReplyResponse = "Mock reply"
	c.ReplyError = nil
	c.ReplyCalls = nil
}
