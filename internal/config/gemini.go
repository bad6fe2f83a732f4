package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/aquabot/pkg/log"
	"github.com/sandevgo/aquabot/pkg/retry"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash-preview-05-20"
)

type GeminiConfig struct {
	APIKey  string `env:"AQUA_GEMINI_API_KEY,required,notEmpty"`
	Model   string `env:"AQUA_GEMINI_MODEL" envDefault:"gemini-2.5-flash-preview-05-20"`
	BaseURL string `env:"AQUA_GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`

	MaxRetries     int           `env:"AQUA_MAX_RETRIES" envDefault:"3"`
	InitialDelay   time.Duration `env:"AQUA_INITIAL_DELAY" envDefault:"1s"`
	AttemptTimeout time.Duration `env:"AQUA_ATTEMPT_TIMEOUT" envDefault:"10s"`
}

func NewGeminiConfig(ctx context.Context) *GeminiConfig {
	c := &GeminiConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gemini config")
	}
	if err := c.Validate(); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid Gemini config")
	}
	return c
}

func (c GeminiConfig) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return fmt.Errorf("AQUA_MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	case c.InitialDelay < 0:
		return fmt.Errorf("AQUA_INITIAL_DELAY must not be negative, got %s", c.InitialDelay)
	case c.AttemptTimeout < 0:
		return fmt.Errorf("AQUA_ATTEMPT_TIMEOUT must not be negative, got %s", c.AttemptTimeout)
	}
	return nil
}

// RetryConfig maps the retry settings onto a doubling backoff.
func (c GeminiConfig) RetryConfig() *retry.Config {
	cfg := retry.NewDefaultConfig()
	cfg.MaxRetries = c.MaxRetries
	cfg.InitialDelay = c.InitialDelay
	return cfg
}
