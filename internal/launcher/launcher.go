// Package launcher installs desktop launcher entries and, on Unity, pins
// them to the favorites list through the desktop settings schema.
package launcher

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/miamibc/ubuntu-make/internal/config"
	"github.com/miamibc/ubuntu-make/internal/log"
)

const (
	// UnityLauncherSchema is the settings schema exposing the favorites list.
	UnityLauncherSchema = "com.canonical.Unity.Launcher"

	favoritesKey = "favorites"
)

// Launcher writes desktop entries into the applications dir and manages
// favorites pinning.
type Launcher struct {
	appsDir        string
	settings       Settings
	currentDesktop string
	logger         *slog.Logger
}

// New creates a Launcher for the current environment.
func New() *Launcher {
	e, err := config.LoadEnv()
	if err != nil {
		log.WithComponent("launcher").Warn("environment parse failed, using defaults", "error", err)
	}
	return NewWith(filepath.Join(e.DataDir(), "applications"), GSettings{}, e.CurrentDesktop)
}

// NewWith creates a Launcher with explicit paths and settings backend.
func NewWith(appsDir string, settings Settings, currentDesktop string) *Launcher {
	return &Launcher{
		appsDir:        appsDir,
		settings:       settings,
		currentDesktop: currentDesktop,
		logger:         log.WithComponent("launcher"),
	}
}

// Path returns the on-disk location for a launcher id.
func (l *Launcher) Path(id string) string {
	return filepath.Join(l.appsDir, id)
}

// Install writes the launcher file and pins it to the favorites list when a
// launcher schema is available. The write is idempotent: the file is only
// rewritten when its content differs.
func (l *Launcher) Install(id, content string) error {
	path := l.Path(id)

	existing, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(existing, []byte(content)) {
		if err := os.MkdirAll(l.appsDir, 0o755); err != nil {
			return fmt.Errorf("create applications directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write launcher %s: %w", id, err)
		}
		l.logger.Debug("launcher written", "id", id)
	}

	l.pin(id)
	return nil
}

// pin adds the launcher to the favorites list if the schema exists and the
// entry is not already present. Best effort: no schema means no pinning.
func (l *Launcher) pin(id string) {
	if !slices.Contains(l.settings.ListSchemas(), UnityLauncherSchema) {
		l.logger.Debug("no launcher schema, skipping pinning", "id", id)
		return
	}

	favorites := l.settings.GetStrv(UnityLauncherSchema, favoritesKey)
	entry := "application://" + id
	if slices.Contains(favorites, entry) {
		return
	}

	favorites = append(favorites, entry)
	if err := l.settings.SetStrv(UnityLauncherSchema, favoritesKey, favorites); err != nil {
		l.logger.Warn("could not pin launcher", "id", id, "error", err)
		return
	}
	l.logger.Debug("launcher pinned", "id", id)
}

// Remove deletes the launcher file. A missing file is not an error.
func (l *Launcher) Remove(id string) error {
	if err := os.Remove(l.Path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove launcher %s: %w", id, err)
	}
	return nil
}

// ExistsAndIsPinned reports whether the launcher file exists and the entry
// is pinned. Outside Unity the pinning half is vacuously true; on Unity
// without the launcher schema it is false.
func (l *Launcher) ExistsAndIsPinned(id string) bool {
	if _, err := os.Stat(l.Path(id)); err != nil {
		return false
	}

	if l.currentDesktop != "Unity" {
		return true
	}
	if !slices.Contains(l.settings.ListSchemas(), UnityLauncherSchema) {
		return false
	}
	favorites := l.settings.GetStrv(UnityLauncherSchema, favoritesKey)
	return slices.Contains(favorites, "application://"+id)
}
