// Package config persists umake's user configuration: which frameworks are
// installed and where. The file is YAML under the XDG config dir. Reads are
// forgiving (a missing or malformed file is an empty config, logged and
// swallowed); writes happen only on explicit Save.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/miamibc/ubuntu-make/internal/log"
	"github.com/miamibc/ubuntu-make/internal/registry"
)

// FileName is the config file name inside the XDG config dir.
const FileName = "umake"

// Store reads and writes the umake config file.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store rooted at the XDG config dir.
func NewStore() *Store {
	e, err := LoadEnv()
	if err != nil {
		log.WithComponent("config").Warn("environment parse failed, using defaults", "error", err)
	}
	return NewStoreAt(e.ConfigDir())
}

// NewStoreAt creates a Store rooted at dir. Used by tests and by callers
// that already resolved the config location.
func NewStoreAt(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: log.WithComponent("config"),
	}
}

// Default returns the one process-wide Store.
func Default() *Store {
	s, _ := registry.Get(registry.Default(), func() (*Store, error) {
		return NewStore(), nil
	})
	return s
}

// Path returns the config file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load returns the config mapping. A missing file yields an empty mapping;
// a malformed file is logged and also yields an empty mapping. Load never
// fails from the caller's point of view.
func (s *Store) Load() map[string]any {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("config file unreadable, ignoring", "path", s.Path(), "error", err)
		}
		return map[string]any{}
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		s.logger.Error("invalid config file, ignoring", "path", s.Path(), "error", err)
		return map[string]any{}
	}
	if m == nil {
		m = map[string]any{}
	}
	return m
}

// Save serializes m deterministically and writes it to the config file,
// creating the parent directory if needed.
func (s *Store) Save(m map[string]any) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	s.logger.Debug("config saved", "path", s.Path())
	return nil
}
