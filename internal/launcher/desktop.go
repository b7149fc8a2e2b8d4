package launcher

import (
	"fmt"
	"regexp"
)

// EntryOptions describes a desktop launcher entry.
type EntryOptions struct {
	Name       string
	Icon       string
	Exec       string
	Comment    string
	Categories string
	Extra      string
}

// DesktopEntry renders a [Desktop Entry] block. Extra lines, if any, are
// appended verbatim after the fixed keys.
func DesktopEntry(opts EntryOptions) string {
	return fmt.Sprintf(`[Desktop Entry]
Version=1.0
Type=Application
Name=%s
Icon=%s
Exec=%s
Comment=%s
Categories=%s
Terminal=false
%s
`, opts.Name, opts.Icon, opts.Exec, opts.Comment, opts.Categories, opts.Extra)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes SGML-ish markup from content so framework descriptions
// render cleanly in a terminal. Unbalanced tags are stripped all the same.
func StripTags(content string) string {
	return tagPattern.ReplaceAllString(content, "")
}
