// Package tmpl provides template rendering utilities for text output.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"
)

// quote prefixes every line of s with a markdown blockquote marker.
func quote(s string) string {
	if s == "" {
		return ">"
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(n int, s string) string {
	if n < 1 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// date formats t in the local zone. The zero time renders as "-".
func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

var funcs = template.FuncMap{
	"quote":    quote,
	"truncate": truncate,
	"date":     date,
	"upper":    strings.ToUpper,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - quote: Prefix each line with "> "
//   - truncate N: Cut a string to N characters
//   - date: Format a time.Time as "2006-01-02 15:04"
//   - upper: Upper-case a string
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
