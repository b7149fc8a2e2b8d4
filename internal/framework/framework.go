// Package framework defines the developer tools umake can install and the
// orchestration that installs them: architecture preconditions, download and
// checksum verification, desktop launcher creation, and bookkeeping in the
// config store and the install journal.
package framework

import (
	"github.com/miamibc/ubuntu-make/internal/launcher"
)

// Framework describes one installable developer tool.
type Framework struct {
	Name        string
	Category    string
	Description string

	// OnlyOnArchs restricts installation to these dpkg architectures.
	// Empty means any.
	OnlyOnArchs []string

	DownloadURL string
	// Checksum is the expected BLAKE3 hex digest of the download. Empty
	// skips verification.
	Checksum string

	// DesktopID is the launcher file name, e.g. "android-studio.desktop".
	// Empty means no launcher.
	DesktopID string
	Desktop   launcher.EntryOptions
}

// Catalog is a named collection of frameworks.
type Catalog struct {
	byName map[string]Framework
	names  []string
}

// NewCatalog builds a catalog from frameworks, preserving order.
func NewCatalog(frameworks ...Framework) *Catalog {
	c := &Catalog{byName: make(map[string]Framework, len(frameworks))}
	for _, fw := range frameworks {
		if _, dup := c.byName[fw.Name]; dup {
			continue
		}
		c.byName[fw.Name] = fw
		c.names = append(c.names, fw.Name)
	}
	return c
}

// Get looks up a framework by name.
func (c *Catalog) Get(name string) (Framework, bool) {
	fw, ok := c.byName[name]
	return fw, ok
}

// Names returns the framework names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// BuiltIn returns the stock catalog.
func BuiltIn() *Catalog {
	return NewCatalog(
		Framework{
			Name:        "android-studio",
			Category:    "android",
			Description: "Android Studio (default Android IDE)",
			OnlyOnArchs: []string{"amd64"},
			DownloadURL: "https://dl.google.com/dl/android/studio/ide-zips/android-studio-linux.tar.gz",
			DesktopID:   "android-studio.desktop",
			Desktop: launcher.EntryOptions{
				Name:       "Android Studio",
				Comment:    "Android Studio developer environment",
				Categories: "Development;IDE;",
				Extra:      "StartupWMClass=jetbrains-android-studio",
			},
		},
		Framework{
			Name:        "idea",
			Category:    "ide",
			Description: "IntelliJ IDEA Community Edition",
			OnlyOnArchs: []string{"amd64", "arm64"},
			DownloadURL: "https://download.jetbrains.com/idea/ideaIC.tar.gz",
			DesktopID:   "jetbrains-idea-ce.desktop",
			Desktop: launcher.EntryOptions{
				Name:       "IntelliJ IDEA",
				Comment:    "Capable and Ergonomic IDE for JVM",
				Categories: "Development;IDE;",
				Extra:      "StartupWMClass=jetbrains-idea-ce",
			},
		},
		Framework{
			Name:        "go-lang",
			Category:    "languages",
			Description: "Go language compiler and tools",
			DownloadURL: "https://go.dev/dl/go-linux.tar.gz",
		},
	)
}
