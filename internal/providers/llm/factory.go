package llm

import (
	"context"
	"errors"

	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/pkg/log"
)

// NewProvider creates the completion client from configuration.
func NewProvider(ctx context.Context, cfg *config.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	log.FromCtx(ctx).Info().
		Str("model", cfg.Model).
		Int("max_retries", cfg.MaxRetries).
		Dur("attempt_timeout", cfg.AttemptTimeout).
		Msg("starting completion client")

	return NewGemini(GeminiOptions{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		Model:          cfg.Model,
		Retry:          cfg.RetryConfig(),
		AttemptTimeout: cfg.AttemptTimeout,
	}), nil
}
