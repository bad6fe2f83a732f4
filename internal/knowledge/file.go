package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sandevgo/aquabot/internal/core"
	"gopkg.in/yaml.v3"
)

// Load reads a table from a YAML sequence of {keyword, answer} objects.
// A sequence keeps declaration order, which a mapping would not.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var entries []core.KnowledgeEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode knowledge yaml: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("knowledge file has no entries")
	}
	return New(entries)
}

// LoadOrDefault loads path, or returns Default when path is empty or does not exist.
func LoadOrDefault(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	t, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load knowledge %s: %w", path, err)
	}
	return t, nil
}

func Save(path string, t *Table) error {
	data, err := yaml.Marshal(t.Entries())
	if err != nil {
		return fmt.Errorf("encode knowledge yaml: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
