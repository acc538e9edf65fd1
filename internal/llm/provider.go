// Package llm turns an intervention verdict into user-facing text. The
// engine never depends on this package; reply generation consumes its
// output and can be swapped or disabled without touching a decision.
package llm

import (
	"fmt"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// NewClient creates a reply client for the configured provider. The key is
// required for every provider except mock.
func NewClient(provider, apiKey string) (domain.ReplyClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, mock)", provider)
	}
}
