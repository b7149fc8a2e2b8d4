package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDesktopEntry(t *testing.T) {
	got := DesktopEntry(EntryOptions{
		Name:       "Name 1",
		Icon:       "/to/icon/path",
		Exec:       "/to/exec/path %f",
		Comment:    "Comment for Name 1",
		Categories: "Cat1:Cat2",
	})

	assert.Equal(t, `[Desktop Entry]
Version=1.0
Type=Application
Name=Name 1
Icon=/to/icon/path
Exec=/to/exec/path %f
Comment=Comment for Name 1
Categories=Cat1:Cat2
Terminal=false

`, got)
}

func TestDesktopEntryWithExtra(t *testing.T) {
	got := DesktopEntry(EntryOptions{
		Name:       "Name 1",
		Icon:       "/to/icon/path",
		Exec:       "/to/exec/path %f",
		Comment:    "Comment for Name 1",
		Categories: "Cat1:Cat2",
		Extra:      "Extra=extra1\nFoo=foo",
	})

	assert.Equal(t, `[Desktop Entry]
Version=1.0
Type=Application
Name=Name 1
Icon=/to/icon/path
Exec=/to/exec/path %f
Comment=Comment for Name 1
Categories=Cat1:Cat2
Terminal=false
Extra=extra1
Foo=foo
`, got)
}

func TestDesktopEntryAllEmpty(t *testing.T) {
	got := DesktopEntry(EntryOptions{})

	assert.Equal(t, `[Desktop Entry]
Version=1.0
Type=Application
Name=
Icon=
Exec=
Comment=
Categories=
Terminal=false

`, got)
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "balanced tags",
			in:   "content <a foo bar>content content content</a><b><c>content\n content</c>\n</b>content content",
			want: "content content content contentcontent\n content\ncontent content",
		},
		{
			name: "unbalanced tags",
			in:   "content <a foo bar>content content content</a><b>content\n content</c>\n</b>content content",
			want: "content content content contentcontent\n content\ncontent content",
		},
		{
			name: "no tags",
			in:   "content content content contentcontent\n content\ncontent content",
			want: "content content content contentcontent\n content\ncontent content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestParseStrv(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty array", "@as []", nil},
		{"plain empty", "[]", nil},
		{"single", "['application://foo.desktop']", []string{"application://foo.desktop"}},
		{
			"multiple",
			"['application://foo.desktop', 'unity://running-apps']",
			[]string{"application://foo.desktop", "unity://running-apps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStrv(tt.in))
		})
	}
}

func TestFormatStrv(t *testing.T) {
	assert.Equal(t, "[]", formatStrv(nil))
	assert.Equal(t,
		"['application://foo.desktop', 'unity://running-apps']",
		formatStrv([]string{"application://foo.desktop", "unity://running-apps"}))
}
