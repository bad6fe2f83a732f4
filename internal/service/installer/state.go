package installer

import (
	"github.com/sandevgo/aquabot/internal/config"
)

// InstallState collects answers as the typed config structs they end up in,
// so the .env file is rendered from the same env tags that parse it.
type InstallState struct {
	RuntimePath string

	App      config.AppConfig
	Gemini   config.GeminiConfig
	Telegram config.TelegramConfig

	EnvPath       string
	KnowledgePath string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{RuntimePath: runtimePath}
}
