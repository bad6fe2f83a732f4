package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AQUA_RUNTIME_PATH", dir)
	t.Setenv("AQUA_TRANSPORT", " Telegram ")

	cfg := NewAppConfig(context.Background())

	assert.Equal(t, dir, cfg.GetRuntimePath())
	assert.True(t, cfg.IsTelegramSelected())
	assert.Equal(t, 500*time.Millisecond, cfg.ReplyDelay)
	assert.False(t, cfg.StatsEnabled)
	assert.Equal(t, filepath.Join(dir, "knowledge.yaml"), cfg.GetKnowledgePath())
	assert.Equal(t, filepath.Join(dir, "aquabot.db"), cfg.GetDatabasePath())
}

func TestNewAppConfig_KnowledgeOverride(t *testing.T) {
	t.Setenv("AQUA_RUNTIME_PATH", t.TempDir())
	t.Setenv("AQUA_KNOWLEDGE_FILE", "/etc/aqua/kb.yaml")

	cfg := NewAppConfig(context.Background())
	assert.Equal(t, "/etc/aqua/kb.yaml", cfg.GetKnowledgePath())
}

func TestGetRuntimePath_Relative(t *testing.T) {
	t.Setenv("AQUA_RUNTIME_PATH", "custom-dir")
	assert.True(t, filepath.IsAbs(GetRuntimePath()))
	assert.Equal(t, "custom-dir", filepath.Base(GetRuntimePath()))
}

func TestNewGeminiConfig(t *testing.T) {
	t.Setenv("AQUA_GEMINI_API_KEY", "test-key")
	t.Setenv("AQUA_INITIAL_DELAY", "250ms")

	cfg := NewGeminiConfig(context.Background())

	assert.Equal(t, DefaultGeminiModel, cfg.Model)
	assert.Equal(t, DefaultGeminiBaseURL, cfg.BaseURL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.AttemptTimeout)

	rc := cfg.RetryConfig()
	assert.Equal(t, 3, rc.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, rc.InitialDelay)
	assert.Equal(t, 2.0, rc.BackoffFactor)
}

func TestNewTelegramConfig_AllowedChats(t *testing.T) {
	t.Setenv("AQUA_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("AQUA_TELEGRAM_ALLOWED_CHATS", "42,-100")

	cfg := NewTelegramConfig(context.Background())

	assert.Equal(t, []int64{42, -100}, cfg.AllowedChats)
	assert.True(t, cfg.IsChatAllowed(-100))
	assert.False(t, cfg.IsChatAllowed(7))
	assert.True(t, TelegramConfig{}.IsChatAllowed(7), "empty allowlist admits everyone")
}

func TestGeminiConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GeminiConfig
		wantErr string
	}{
		{"defaults", GeminiConfig{MaxRetries: 3, InitialDelay: time.Second, AttemptTimeout: 10 * time.Second}, ""},
		{"zero retries", GeminiConfig{}, ""},
		{"negative retries", GeminiConfig{MaxRetries: -1}, "AQUA_MAX_RETRIES"},
		{"negative delay", GeminiConfig{InitialDelay: -time.Second}, "AQUA_INITIAL_DELAY"},
		{"negative timeout", GeminiConfig{AttemptTimeout: -time.Second}, "AQUA_ATTEMPT_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetRuntimePath_HomeRelative(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("AQUA_RUNTIME_PATH", "~/aqua-data/")
	assert.Equal(t, filepath.Join(home, "aqua-data"), GetRuntimePath())

	t.Setenv("AQUA_RUNTIME_PATH", "")
	assert.Equal(t, filepath.Join(home, ".aquabot"), GetRuntimePath())
}

func TestIsDebug(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"0", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("AQUA_DEBUG", tt.value)
			assert.Equal(t, tt.want, IsDebug())
		})
	}
}
