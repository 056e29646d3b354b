package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lingo/internal/core/translation"
)

func TestFilter(t *testing.T) {
	records := []translation.Record{
		{ID: "a", SourceText: "Good morning", TranslatedText: "Buenos días"},
		{ID: "b", SourceText: "Where is the station?", TranslatedText: "¿Dónde está la estación?"},
		{ID: "c", SourceText: "either/or", TranslatedText: "o bien"},
	}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{name: "empty returns all", pattern: "", want: []string{"a", "b", "c"}},
		{name: "substring", pattern: "morning", want: []string{"a"}},
		{name: "case insensitive", pattern: "BUENOS", want: []string{"a"}},
		{name: "translated text", pattern: "estación", want: []string{"b"}},
		{name: "prefix glob", pattern: "where*", want: []string{"b"}},
		{name: "anchored glob misses", pattern: "morning*", want: []string{}},
		{name: "single char", pattern: "g??d*", want: []string{"a"}},
		{name: "alternation", pattern: "{good,where}*", want: []string{"a", "b"}},
		{name: "slash in text", pattern: "either*", want: []string{"c"}},
		{name: "no match", pattern: "xyz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(records, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := Filter([]translation.Record{{ID: "a", SourceText: "x"}}, "[abc")
	assert.Error(t, err)
}
