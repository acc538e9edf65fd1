package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by ANORA_ENV (or .env by default),
// then loads the corresponding .secret sidecar if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("ANORA_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// LLMProvider returns the configured reply provider.
// Defaults to "openai". Valid values: openai, anthropic, mock.
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai". Valid values: openai, mock.
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured reply provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingModel returns the model name passed to the embedding provider.
// Defaults to "text-embedding-3-small".
func EmbeddingModel() string {
	m := os.Getenv("EMBEDDING_MODEL")
	if m == "" {
		return "text-embedding-3-small"
	}
	return m
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// StrictKeys reports whether fact key normalization rejects rewritten keys
// instead of accepting the canonical form. Defaults to off.
func StrictKeys() bool {
	v, err := strconv.ParseBool(os.Getenv("STRICT_KEYS"))
	if err != nil {
		return false
	}
	return v
}

// TieDelta returns the score distance below which disagreeing facts are
// handed to the user. Defaults to 2.0.
func TieDelta() float64 {
	d, err := strconv.ParseFloat(os.Getenv("TIE_DELTA"), 64)
	if err != nil || d < 0 {
		return 2.0
	}
	return d
}

// StanceStep returns the per-feedback adjustment magnitude.
// Defaults to 0.08.
func StanceStep() float64 {
	s, err := strconv.ParseFloat(os.Getenv("STANCE_STEP"), 64)
	if err != nil || s <= 0 || s > 1 {
		return 0.08
	}
	return s
}

// DefaultExtractors returns the extractor ids applied when a request does
// not name its own set. Empty means extraction is off by default.
func DefaultExtractors() []string {
	raw := os.Getenv("EXTRACTORS")
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// RateLimitRPS returns requests per second limit. Defaults to 100.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting. Defaults to 20.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info".
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
