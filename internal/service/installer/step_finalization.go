package installer

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/aquabot/internal/config"
)

// FinalizationStep computes derived values before anything is written
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if state.App.Transport != config.TransportTelegram {
		state.Telegram = config.TelegramConfig{}
	}
	if state.App.Transport == config.TransportCLI {
		// Default transport, no need to pin it.
		state.App.Transport = ""
	}

	state.EnvPath = filepath.Join(state.RuntimePath, ".env")
	state.KnowledgePath = filepath.Join(state.RuntimePath, "knowledge.yaml")
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
