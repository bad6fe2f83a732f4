package command

import (
	"context"
	"strconv"

	"github.com/sandevgo/aquabot/internal/config"
)

type ModelCommand struct {
	cfg       *config.GeminiConfig
	formatter *ResponseFormatter
}

func NewModelCommand(cfg *config.GeminiConfig) *ModelCommand {
	return &ModelCommand{
		cfg:       cfg,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show the completion model and retry policy"
}

func (c *ModelCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	return c.formatter.Combine(
		c.formatter.Info("Completion Model"),
		c.formatter.Label("Model", c.cfg.Model),
		c.formatter.Label("Retries", strconv.Itoa(c.cfg.MaxRetries)),
		c.formatter.Label("Initial delay", c.cfg.InitialDelay.String()),
		c.formatter.Label("Attempt timeout", c.cfg.AttemptTimeout.String()),
	), nil
}
