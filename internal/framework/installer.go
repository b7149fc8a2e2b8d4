package framework

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/miamibc/ubuntu-make/internal/config"
	"github.com/miamibc/ubuntu-make/internal/launcher"
	"github.com/miamibc/ubuntu-make/internal/log"
	"github.com/miamibc/ubuntu-make/internal/platform"
	"github.com/miamibc/ubuntu-make/internal/storage"
)

// Installer orchestrates framework installs and removals.
type Installer struct {
	platform    *platform.Query
	launcher    *launcher.Launcher
	store       *config.Store
	journal     *storage.Journal
	fetcher     Fetcher
	installRoot string
	logger      *slog.Logger
}

// NewInstaller wires an Installer. installRoot is the directory frameworks
// are installed under (one subdirectory per category/name).
func NewInstaller(
	pq *platform.Query,
	l *launcher.Launcher,
	store *config.Store,
	journal *storage.Journal,
	fetcher Fetcher,
	installRoot string,
) *Installer {
	return &Installer{
		platform:    pq,
		launcher:    l,
		store:       store,
		journal:     journal,
		fetcher:     fetcher,
		installRoot: installRoot,
		logger:      log.WithComponent("installer"),
	}
}

// InstallPath returns where a framework lives on disk.
func (i *Installer) InstallPath(fw Framework) string {
	return filepath.Join(i.installRoot, fw.Category, fw.Name)
}

// Install downloads, verifies, and registers one framework. progress, if not
// nil, receives download percentages.
func (i *Installer) Install(ctx context.Context, fw Framework, progress func(float64)) error {
	fwLogger := i.logger.With("framework", fw.Name)

	if len(fw.OnlyOnArchs) > 0 {
		arch, err := i.platform.CurrentArch()
		if err != nil {
			return fmt.Errorf("install %s: %w", fw.Name, err)
		}
		if !slices.Contains(fw.OnlyOnArchs, arch) {
			return fmt.Errorf("install %s: architecture %s not supported (needs one of %v)",
				fw.Name, arch, fw.OnlyOnArchs)
		}
	}

	dest := i.InstallPath(fw)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("install %s: create install directory: %w", fw.Name, err)
	}

	archive := filepath.Join(dest, filepath.Base(fw.DownloadURL))
	fwLogger.Info("downloading", "url", fw.DownloadURL)
	if err := i.fetcher.Fetch(ctx, fw.DownloadURL, archive, progress); err != nil {
		return fmt.Errorf("install %s: %w", fw.Name, err)
	}

	checksum := fw.Checksum
	if checksum != "" {
		if err := VerifyChecksum(archive, checksum); err != nil {
			return fmt.Errorf("install %s: %w", fw.Name, err)
		}
	} else {
		computed, err := ComputeChecksum(archive)
		if err != nil {
			return fmt.Errorf("install %s: %w", fw.Name, err)
		}
		checksum = computed
	}

	if fw.DesktopID != "" {
		opts := fw.Desktop
		if opts.Exec == "" {
			opts.Exec = filepath.Join(dest, "bin", fw.Name)
		}
		if opts.Icon == "" {
			opts.Icon = filepath.Join(dest, "icon.png")
		}
		if err := i.launcher.Install(fw.DesktopID, launcher.DesktopEntry(opts)); err != nil {
			return fmt.Errorf("install %s: %w", fw.Name, err)
		}
	}

	if err := i.recordConfig(fw, dest); err != nil {
		return fmt.Errorf("install %s: %w", fw.Name, err)
	}
	if err := i.journal.Record(ctx, storage.Install{
		Framework:   fw.Name,
		Category:    fw.Category,
		InstallPath: dest,
		Checksum:    checksum,
	}); err != nil {
		return fmt.Errorf("install %s: %w", fw.Name, err)
	}

	fwLogger.Info("installed", "path", dest)
	return nil
}

// Remove deletes a framework's files, launcher, and records.
func (i *Installer) Remove(ctx context.Context, fw Framework) error {
	dest := i.InstallPath(fw)
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("remove %s: %w", fw.Name, err)
	}

	if fw.DesktopID != "" {
		if err := i.launcher.Remove(fw.DesktopID); err != nil {
			return fmt.Errorf("remove %s: %w", fw.Name, err)
		}
	}

	if err := i.dropConfig(fw); err != nil {
		return fmt.Errorf("remove %s: %w", fw.Name, err)
	}
	if err := i.journal.Remove(ctx, fw.Name); err != nil {
		return fmt.Errorf("remove %s: %w", fw.Name, err)
	}

	i.logger.Info("removed", "framework", fw.Name)
	return nil
}

// recordConfig stores the install path under frameworks.<category>.<name>.
func (i *Installer) recordConfig(fw Framework, dest string) error {
	cfg := i.store.Load()

	frameworks, _ := cfg["frameworks"].(map[string]any)
	if frameworks == nil {
		frameworks = map[string]any{}
	}
	category, _ := frameworks[fw.Category].(map[string]any)
	if category == nil {
		category = map[string]any{}
	}
	category[fw.Name] = map[string]any{"path": dest}
	frameworks[fw.Category] = category
	cfg["frameworks"] = frameworks

	return i.store.Save(cfg)
}

func (i *Installer) dropConfig(fw Framework) error {
	cfg := i.store.Load()

	frameworks, _ := cfg["frameworks"].(map[string]any)
	if frameworks == nil {
		return nil
	}
	category, _ := frameworks[fw.Category].(map[string]any)
	if category == nil {
		return nil
	}
	if _, present := category[fw.Name]; !present {
		return nil
	}

	delete(category, fw.Name)
	if len(category) == 0 {
		delete(frameworks, fw.Category)
	} else {
		frameworks[fw.Category] = category
	}
	if len(frameworks) == 0 {
		delete(cfg, "frameworks")
	} else {
		cfg["frameworks"] = frameworks
	}

	return i.store.Save(cfg)
}
