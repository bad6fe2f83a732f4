package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/knowledge"
	"github.com/sandevgo/aquabot/internal/providers/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAPIKeyStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewAPIKeyStep()

	next, _ := step.Update(enter, state, 80, 24)
	require.NotNil(t, next, "empty key is rejected")
	assert.Contains(t, next.View(state), "required")

	next, _ = next.Update(typeText("AIzaTest"), state, 80, 24)
	next, _ = next.Update(enter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, "AIzaTest", state.Gemini.APIKey)
	assert.NotContains(t, step.View(state), "AIzaTest", "key is masked")
}

func TestModelStep_Select(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.Gemini.APIKey = "key"

	var gotKey string
	step := NewModelStep(func(ctx context.Context, apiKey string) ([]llm.Model, error) {
		gotKey = apiKey
		return []llm.Model{
			{ID: "gemini-other", Name: "Other"},
			{ID: config.DefaultGeminiModel, Name: "Flash"},
		}, nil
	})

	next, cmd := step.Update(nextMsg{}, state, 80, 24)
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(state), "Fetching models")

	msg := cmd()
	assert.Equal(t, "key", gotKey)

	next, _ = next.Update(msg, state, 80, 24)
	next, _ = next.Update(enter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, config.DefaultGeminiModel, state.Gemini.Model, "cursor starts on the default model")
}

func TestModelStep_ErrorSkip(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewModelStep(func(ctx context.Context, apiKey string) ([]llm.Model, error) {
		return nil, errors.New("http 403")
	})

	next, cmd := step.Update(nextMsg{}, state, 80, 24)
	next, _ = next.Update(cmd(), state, 80, 24)
	assert.Contains(t, next.View(state), "http 403")

	next, _ = next.Update(typeText("s"), state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, config.DefaultGeminiModel, state.Gemini.Model)
}

func TestChannelStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewChannelStep()

	next, _ := step.Update(tea.KeyMsg{Type: tea.KeyDown}, state, 80, 24)
	next, _ = next.Update(enter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, config.TransportTelegram, state.App.Transport)
}

func TestTelegramTokenStep_SkippedForCLI(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.App.Transport = config.TransportCLI

	next, _ := NewTelegramTokenStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, next)
	assert.Empty(t, state.Telegram.Token)
}

func TestTelegramTokenStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.App.Transport = config.TransportTelegram
	step := NewTelegramTokenStep()

	next, _ := step.Update(enter, state, 80, 24)
	require.NotNil(t, next, "empty token is not accepted")

	next, _ = next.Update(typeText("123:abc"), state, 80, 24)
	next, _ = next.Update(enter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, "123:abc", state.Telegram.Token)
}

func TestPersistence_WritesEnvAndKnowledge(t *testing.T) {
	dir := t.TempDir()
	state := NewInstallState(dir)
	state.Gemini.APIKey = "AIzaTest"
	state.Gemini.Model = "gemini-other"
	state.App.Transport = config.TransportTelegram
	state.App.StatsEnabled = true
	state.Telegram.Token = "123:abc"

	for _, step := range []Step{NewFinalizationStep(), NewSaveEnvStep(), NewInitializeFilesStep()} {
		next, _ := step.Update(nextMsg{}, state, 80, 24)
		require.Nil(t, next, step.View(state))
	}

	vars, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"AQUA_TRANSPORT":      "telegram",
		"AQUA_STATS_ENABLED":  "true",
		"AQUA_GEMINI_API_KEY": "AIzaTest",
		"AQUA_GEMINI_MODEL":   "gemini-other",
		"AQUA_TELEGRAM_TOKEN": "123:abc",
	}, vars)

	table, err := knowledge.Load(filepath.Join(dir, "knowledge.yaml"))
	require.NoError(t, err)
	assert.Equal(t, knowledge.Default().Entries(), table.Entries())
}

func TestSaveEnvStep_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("KEEP=1\n"), 0600))

	state := NewInstallState(dir)
	state.EnvPath = envPath
	state.Gemini.APIKey = "new"

	step := NewSaveEnvStep()
	next, _ := step.Update(nextMsg{}, state, 80, 24)
	require.NotNil(t, next)
	assert.Contains(t, next.View(state), "already exists")

	data, err := os.ReadFile(envPath)
	require.NoError(t, err)
	assert.Equal(t, "KEEP=1\n", string(data))
}

func TestFinalizationStep_DropsUnusedTelegramToken(t *testing.T) {
	state := NewInstallState("/tmp/aqua")
	state.App.Transport = config.TransportCLI
	state.Telegram.Token = "stale"

	next, _ := NewFinalizationStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, next)
	assert.Empty(t, state.Telegram.Token)
	assert.Empty(t, state.App.Transport)
	assert.Equal(t, filepath.Join("/tmp/aqua", ".env"), state.EnvPath)
}

func TestWizard_CtrlCQuits(t *testing.T) {
	m := initialModel(t.TempDir())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, updated.(model).quitting)
	assert.Equal(t, "Setup cancelled.\n", updated.View())
}

func TestWizard_AdvancesSteps(t *testing.T) {
	m := model{
		steps: []Step{NewChannelStep(), NewTelegramTokenStep()},
		state: NewInstallState(t.TempDir()),
	}

	updated, _ := m.Update(enter)
	m = updated.(model)
	assert.Equal(t, 1, m.currentStep)
	assert.Equal(t, config.TransportCLI, m.state.App.Transport)

	// Telegram token step skips itself for the terminal transport.
	updated, cmd := m.Update(nextMsg{})
	assert.Equal(t, 2, updated.(model).currentStep)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Configuration complete!\n", updated.View())
}
