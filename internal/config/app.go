package config

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/aquabot/pkg/log"
)

const (
	TransportCLI      = "cli"
	TransportTelegram = "telegram"
)

type AppConfig struct {
	RuntimePath string `env:"AQUA_RUNTIME_PATH"`
	Transport   string `env:"AQUA_TRANSPORT" envDefault:"cli"`

	// Pause before a knowledge-table answer is shown.
	ReplyDelay time.Duration `env:"AQUA_REPLY_DELAY" envDefault:"500ms"`

	KnowledgeFile    string `env:"AQUA_KNOWLEDGE_FILE"`
	StatsEnabled     bool   `env:"AQUA_STATS_ENABLED" envDefault:"false"`
	SummaryMaxTokens int    `env:"AQUA_SUMMARY_MAX_TOKENS" envDefault:"0"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if c.RuntimePath == "" {
		c.RuntimePath = GetRuntimePath()
	}
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetKnowledgePath() string {
	if c.KnowledgeFile != "" {
		return c.KnowledgeFile
	}
	return filepath.Join(c.RuntimePath, "knowledge.yaml")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "aquabot.db")
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.Transport == TransportTelegram
}
