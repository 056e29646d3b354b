package executil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Output(t *testing.T) {
	e := &RealExecutor{}

	out, err := e.Output(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out))

	_, err = e.Output(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRecordingExecutor(t *testing.T) {
	errBoom := errors.New("boom")
	e := &RecordingExecutor{
		Outputs: map[string][]byte{"pdftotext": []byte("text")},
		Errors:  map[string]error{"false": errBoom},
		Missing: map[string]bool{"tesseract": true},
	}

	out, err := e.Output(context.Background(), "pdftotext", "-layout", "a.pdf", "-")
	require.NoError(t, err)
	assert.Equal(t, "text", string(out))

	_, err = e.Output(context.Background(), "false")
	assert.ErrorIs(t, err, errBoom)

	require.Len(t, e.Commands, 2)
	assert.Equal(t, RecordedCommand{Cmd: "pdftotext", Args: []string{"-layout", "a.pdf", "-"}}, e.Commands[0])

	_, err = e.LookPath("tesseract")
	assert.Error(t, err)
	_, err = e.LookPath("pdftotext")
	assert.NoError(t, err)

	e.Reset()
	assert.Empty(t, e.Commands)
}
