package scoring

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Client is a scorer that holds provider resources.
type Client interface {
	Score(ctx context.Context, question, answer string) (int, error)
	Close() error
}

// Config selects and configures a scoring provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

// New creates a scoring client for the configured provider ("openai" or "gemini").
func New(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key is not configured", cfg.Provider)
	}
	log.Printf("initializing %s scorer with model %q", cfg.Provider, cfg.Model)

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIScorer(cfg.APIKey, cfg.Model), nil
	case "gemini":
		return NewGeminiScorer(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported scoring provider: %s. Use 'openai' or 'gemini'", cfg.Provider)
	}
}
