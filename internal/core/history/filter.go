package history

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hay-kot/lingo/internal/core/translation"
)

// Filter returns the records whose source or translated text matches pattern.
// Matching is case-insensitive. A pattern without glob metacharacters is a
// substring search; otherwise it must match the whole text, so "hello*" finds
// texts that start with hello.
func Filter(records []translation.Record, pattern string) ([]translation.Record, error) {
	pattern = normalizeForMatch(strings.TrimSpace(pattern))
	if pattern == "" {
		return records, nil
	}

	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern %q", pattern)
	}

	out := make([]translation.Record, 0, len(records))
	for _, r := range records {
		if matchText(pattern, r.SourceText) || matchText(pattern, r.TranslatedText) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchText(pattern, text string) bool {
	ok, err := doublestar.Match(pattern, normalizeForMatch(text))
	return err == nil && ok
}

// normalizeForMatch lowercases s and folds path separators into spaces so a
// single star can span the whole text.
func normalizeForMatch(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "/", " ")
}
