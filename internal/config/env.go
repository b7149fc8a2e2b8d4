package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Env captures the environment knobs umake reacts to. XDG overrides follow
// the basedir spec; empty values fall back to the conventional home paths.
type Env struct {
	ConfigHome     string `env:"XDG_CONFIG_HOME"`
	DataHome       string `env:"XDG_DATA_HOME"`
	CacheHome      string `env:"XDG_CACHE_HOME"`
	CurrentDesktop string `env:"XDG_CURRENT_DESKTOP"`
	LogLevel       string `env:"UMAKE_LOG_LEVEL" envDefault:"INFO"`
	Argcomplete    string `env:"_ARGCOMPLETE"`
}

// LoadEnv parses the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// ConfigDir returns the directory holding the umake config file.
func (e Env) ConfigDir() string {
	if e.ConfigHome != "" {
		return e.ConfigHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config"
	}
	return filepath.Join(home, ".config")
}

// DataDir returns the root of the user data dir (launchers, install journal).
func (e Env) DataDir() string {
	if e.DataHome != "" {
		return e.DataHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "share")
	}
	return filepath.Join(home, ".local", "share")
}

// CompletionMode reports whether we run under shell completion, where slow
// work (platform queries, network) must be skipped.
func (e Env) CompletionMode() bool {
	return e.Argcomplete != ""
}
