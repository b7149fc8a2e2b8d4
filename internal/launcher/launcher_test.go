package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSettings implements Settings in memory.
type fakeSettings struct {
	schemas   []string
	favorites []string
	setCalls  int
}

func (f *fakeSettings) ListSchemas() []string { return f.schemas }

func (f *fakeSettings) GetStrv(schema, key string) []string { return f.favorites }

func (f *fakeSettings) SetStrv(schema, key string, value []string) error {
	f.favorites = value
	f.setCalls++
	return nil
}

func genericDesktopContent() string {
	return DesktopEntry(EntryOptions{
		Name:       "Android Studio",
		Icon:       "/home/didrocks/tools/android-studio/bin/idea.png",
		Exec:       `"/home/didrocks/tools/android-studio/bin/studio.sh" %f`,
		Comment:    "Develop with pleasure!",
		Categories: "Development;IDE;",
	})
}

func newTestLauncher(t *testing.T, settings Settings, desktop string) (*Launcher, string) {
	t.Helper()
	appsDir := filepath.Join(t.TempDir(), "applications")
	require.NoError(t, os.MkdirAll(appsDir, 0o755))
	return NewWith(appsDir, settings, desktop), appsDir
}

func TestInstallWritesFileAndPins(t *testing.T) {
	settings := &fakeSettings{
		schemas:   []string{"foo", "bar", UnityLauncherSchema, "baz"},
		favorites: []string{"application://bar.desktop", "unity://running"},
	}
	l, appsDir := newTestLauncher(t, settings, "Unity")

	require.NoError(t, l.Install("foo.desktop", genericDesktopContent()))

	data, err := os.ReadFile(filepath.Join(appsDir, "foo.desktop"))
	require.NoError(t, err)
	assert.Equal(t, genericDesktopContent(), string(data))
	assert.Equal(t, []string{
		"application://bar.desktop",
		"unity://running",
		"application://foo.desktop",
	}, settings.favorites)
}

func TestInstallAlreadyPinnedLeavesFavoritesAlone(t *testing.T) {
	settings := &fakeSettings{
		schemas:   []string{UnityLauncherSchema},
		favorites: []string{"application://bar.desktop", "application://foo.desktop", "unity://running"},
	}
	l, appsDir := newTestLauncher(t, settings, "Unity")

	require.NoError(t, l.Install("foo.desktop", genericDesktopContent()))

	assert.FileExists(t, filepath.Join(appsDir, "foo.desktop"))
	assert.Zero(t, settings.setCalls, "already-pinned entry must not be rewritten")
}

func TestInstallNoSchemaStillWritesFile(t *testing.T) {
	settings := &fakeSettings{schemas: []string{"foo", "bar", "baz"}}
	l, appsDir := newTestLauncher(t, settings, "Unity")

	require.NoError(t, l.Install("foo.desktop", genericDesktopContent()))

	assert.FileExists(t, filepath.Join(appsDir, "foo.desktop"))
	assert.Zero(t, settings.setCalls)
}

func TestInstallOverwritesDifferentContent(t *testing.T) {
	settings := &fakeSettings{schemas: []string{"foo"}}
	l, appsDir := newTestLauncher(t, settings, "Unity")
	path := filepath.Join(appsDir, "foo.desktop")
	require.NoError(t, os.WriteFile(path, []byte("Foo Bar Baz"), 0o644))

	require.NoError(t, l.Install("foo.desktop", genericDesktopContent()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, genericDesktopContent(), string(data))
}

func TestInstallUnchangedContentNotRewritten(t *testing.T) {
	settings := &fakeSettings{}
	l, appsDir := newTestLauncher(t, settings, "Unity")
	path := filepath.Join(appsDir, "foo.desktop")

	require.NoError(t, l.Install("foo.desktop", genericDesktopContent()))
	first, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, l.Install("foo.desktop", genericDesktopContent()))
	second, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, first.ModTime(), second.ModTime(), "identical content must not be rewritten")
}

func TestExistsAndIsPinned(t *testing.T) {
	tests := []struct {
		name       string
		desktop    string
		schemas    []string
		favorites  []string
		writeFile  bool
		wantPinned bool
	}{
		{
			name:       "file exists and pinned",
			desktop:    "Unity",
			schemas:    []string{UnityLauncherSchema},
			favorites:  []string{"application://bar.desktop", "application://foo.desktop", "unity://running"},
			writeFile:  true,
			wantPinned: true,
		},
		{
			name:       "file exists but not in favorites",
			desktop:    "Unity",
			schemas:    []string{UnityLauncherSchema},
			favorites:  []string{"application://bar.desktop", "unity://running"},
			writeFile:  true,
			wantPinned: false,
		},
		{
			name:       "not pinned but outside unity",
			desktop:    "FOOenv",
			schemas:    []string{UnityLauncherSchema},
			favorites:  []string{"application://bar.desktop"},
			writeFile:  true,
			wantPinned: true,
		},
		{
			name:       "no schema outside unity",
			desktop:    "FOOenv",
			schemas:    []string{"foo", "bar"},
			writeFile:  true,
			wantPinned: true,
		},
		{
			name:       "no schema in unity",
			desktop:    "Unity",
			schemas:    []string{"foo", "bar"},
			writeFile:  true,
			wantPinned: false,
		},
		{
			name:       "pinned but no file",
			desktop:    "Unity",
			schemas:    []string{UnityLauncherSchema},
			favorites:  []string{"application://foo.desktop"},
			writeFile:  false,
			wantPinned: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &fakeSettings{schemas: tt.schemas, favorites: tt.favorites}
			l, appsDir := newTestLauncher(t, settings, tt.desktop)
			if tt.writeFile {
				require.NoError(t, os.WriteFile(filepath.Join(appsDir, "foo.desktop"), []byte("Foo Bar Baz"), 0o644))
			}

			assert.Equal(t, tt.wantPinned, l.ExistsAndIsPinned("foo.desktop"))
		})
	}
}

func TestRemove(t *testing.T) {
	l, appsDir := newTestLauncher(t, &fakeSettings{}, "Unity")
	path := filepath.Join(appsDir, "foo.desktop")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, l.Remove("foo.desktop"))
	assert.NoFileExists(t, path)

	// Removing again is not an error.
	assert.NoError(t, l.Remove("foo.desktop"))
}
