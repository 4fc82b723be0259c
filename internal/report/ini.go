// Package report renders an analysed session: the simulator parameter file,
// degradation plots and a strategy chart.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/banshee-data/pitwall/internal/kv"
	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
)

// INIOptions controls the parameter file layout.
type INIOptions struct {
	Generated time.Time
	Scheme    lookup.CompoundScheme
	// IndentBraces indents closing braces that would otherwise start a
	// line, which some INI readers require for continuation lines.
	IndentBraces bool
}

// INIFileName is the default parameter file name for a generation time.
func INIFileName(generated time.Time) string {
	return fmt.Sprintf("race_pars_%s.ini", generated.Format("20060102_150405"))
}

// WriteINI writes groups as INI sections, each holding one key whose value
// is indented JSON.
func WriteINI(w io.Writer, groups []kv.Group, opts INIOptions) error {
	scheme := opts.Scheme
	if scheme == "" {
		scheme = lookup.SchemeVisual
	}
	lines := []string{
		"# encoding UTF-8",
		"# Generated from F1 25 telemetry data on " + opts.Generated.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("# Using %s for strategy analysis", scheme.Column()),
		"",
	}
	for _, g := range groups {
		value, err := indentJSON(g.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", g.Section, err)
		}
		lines = append(lines, "["+g.Section+"]", g.Key+" = "+value, "")
	}
	out := strings.Join(lines, "\n")
	if opts.IndentBraces {
		out = indentClosingBraces(out)
	}
	_, err := io.WriteString(w, out)
	return err
}

func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func indentClosingBraces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "}") && strings.TrimSpace(line) == "}" {
			lines[i] = "    }"
		}
	}
	return strings.Join(lines, "\n")
}
