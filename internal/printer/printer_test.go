package printer

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/lingo/internal/core/translation"
)

func TestNew_BufferHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Successf("saved %d", 2)
	assert.Equal(t, Check+" saved 2\n", buf.String())
}

func TestWithColor(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).WithColor(true).Errorf("boom")
	assert.Equal(t, ColorRed+Cross+" boom"+ColorReset+"\n", buf.String())
}

func TestFatalError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).FatalError(errors.New("translation unavailable"))

	out := buf.String()
	assert.Contains(t, out, "╭ Error")
	assert.Contains(t, out, "translation unavailable")
}

func TestFatalError_Nil(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).FatalError(nil)
	assert.Empty(t, buf.String())
}

func TestFatalError_FieldErrors(t *testing.T) {
	var buf bytes.Buffer
	fieldErrs := criterio.FieldErrors{
		{Field: "templates.card", Err: errors.New("template error")},
		{Err: errors.New("data directory cannot be empty")},
	}

	New(&buf).FatalError(fmt.Errorf("load config: %w", fieldErrs))

	out := buf.String()
	assert.Contains(t, out, "╭ Validation Error")
	assert.Contains(t, out, "load config")
	assert.Contains(t, out, "templates.card: template error")
	assert.Contains(t, out, Cross+" data directory cannot be empty")
}

func TestTranslation(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Translation(translation.Record{TranslatedText: "hola", SourceLang: "en", TargetLang: "es"})
	assert.Equal(t, "hola\nen "+Arrow+" es\n", buf.String())
}

func TestRecordLine(t *testing.T) {
	r := translation.Record{
		ID:             "abc",
		SourceText:     "good\nmorning",
		TranslatedText: "buenos días",
		SourceLang:     "en",
		TargetLang:     "es",
	}

	tests := []struct {
		name  string
		width int
		want  string
	}{
		{name: "full", width: 0, want: "  1  en " + Arrow + " es  good morning " + Arrow + " buenos días  abc\n"},
		{name: "clipped", width: 6, want: "  1  en " + Arrow + " es  good …  abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf).RecordLine(1, r, tt.width)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWidth_Fallback(t *testing.T) {
	assert.Equal(t, 80, New(&bytes.Buffer{}).Width(80))
}
