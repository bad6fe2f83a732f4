package config

import (
	"context"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/aquabot/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"AQUA_TELEGRAM_TOKEN,required,notEmpty"`

	// Empty means every chat may talk to the bot.
	AllowedChats []int64 `env:"AQUA_TELEGRAM_ALLOWED_CHATS" envSeparator:","`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func (c TelegramConfig) IsChatAllowed(chatID int64) bool {
	return len(c.AllowedChats) == 0 || slices.Contains(c.AllowedChats, chatID)
}
