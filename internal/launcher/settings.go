package launcher

import (
	"fmt"
	"os/exec"
	"strings"
)

// Settings is the desktop settings schema surface the launcher needs.
// Production goes through gsettings; tests substitute a fake.
type Settings interface {
	ListSchemas() []string
	GetStrv(schema, key string) []string
	SetStrv(schema, key string, value []string) error
}

// GSettings shells out to the gsettings CLI.
type GSettings struct{}

func (GSettings) ListSchemas() []string {
	out, err := exec.Command("gsettings", "list-schemas").Output()
	if err != nil {
		return nil
	}
	var schemas []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			schemas = append(schemas, line)
		}
	}
	return schemas
}

func (GSettings) GetStrv(schema, key string) []string {
	out, err := exec.Command("gsettings", "get", schema, key).Output()
	if err != nil {
		return nil
	}
	return parseStrv(string(out))
}

func (GSettings) SetStrv(schema, key string, value []string) error {
	if err := exec.Command("gsettings", "set", schema, key, formatStrv(value)).Run(); err != nil {
		return fmt.Errorf("gsettings set %s %s: %w", schema, key, err)
	}
	return nil
}

// parseStrv decodes gsettings' text form of a string array, e.g.
// ['application://foo.desktop', 'unity://running-apps'].
func parseStrv(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@as ")
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `'"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatStrv(value []string) string {
	quoted := make([]string, len(value))
	for i, v := range value {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
