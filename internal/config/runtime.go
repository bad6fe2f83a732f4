package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	runtimePathEnv     = "AQUA_RUNTIME_PATH"
	defaultRuntimePath = ".aquabot"
)

// GetRuntimePath resolves AQUA_RUNTIME_PATH. Relative paths and a leading "~/"
// are taken from the home directory.
func GetRuntimePath() string {
	path := strings.TrimSpace(os.Getenv(runtimePathEnv))
	if path == "" {
		path = defaultRuntimePath
	}
	path = strings.TrimPrefix(path, "~"+string(filepath.Separator))

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return filepath.Clean(path)
}
