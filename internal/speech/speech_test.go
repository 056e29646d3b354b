package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wav = Audio{Data: []byte("RIFF....WAVEfmt "), ContentType: "audio/wav", Language: "en"}

func TestWit_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech", r.URL.Path)
		assert.Equal(t, DefaultWitVersion, r.URL.Query().Get("v"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, wav.Data, body)

		// wit streams partial results before the final one
		_, _ = io.WriteString(w, `{"text":"hello"}`+"\r\n")
		_, _ = io.WriteString(w, `{"text":"hello wor"}`+"\r\n")
		_, _ = io.WriteString(w, `{"text":"hello world","is_final":true}`+"\r\n")
		_, _ = io.WriteString(w, `{"text":""}`)
	}))
	defer srv.Close()

	text, err := NewWit(srv.URL, "secret").Transcribe(context.Background(), wav)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestWit_Errors(t *testing.T) {
	_, err := NewWit("http://127.0.0.1:0", "").Transcribe(context.Background(), wav)
	require.ErrorContains(t, err, "not configured")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"Bad audio","code":"bad-request"}`)
	}))
	defer srv.Close()

	_, err = NewWit(srv.URL, "secret").Transcribe(context.Background(), wav)
	assert.ErrorContains(t, err, "Bad audio")
}

func TestVosk_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)

		var req voskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, base64.StdEncoding.EncodeToString(wav.Data), req.AudioData)
		assert.Equal(t, "en", req.Language)

		_, _ = io.WriteString(w, `{"text":"good morning"}`)
	}))
	defer srv.Close()

	text, err := NewVosk(srv.URL).Transcribe(context.Background(), wav)
	require.NoError(t, err)
	assert.Equal(t, "good morning", text)
}

func TestRev_Transcribe(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /speechtotext/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, _, err := r.FormFile("media")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, wav.Data, data)
		assert.JSONEq(t, `{"language":"en"}`, r.FormValue("options"))

		_, _ = io.WriteString(w, `{"id":"job1","status":"in_progress"}`)
	})
	mux.HandleFunc("GET /speechtotext/v1/jobs/job1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			_, _ = io.WriteString(w, `{"id":"job1","status":"in_progress"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"job1","status":"transcribed"}`)
	})
	mux.HandleFunc("GET /speechtotext/v1/jobs/job1/transcript", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, "Speaker 0    00:00:00    Hello there.\nSpeaker 0    00:00:02    How are you?\n")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	rev := NewRev(srv.URL, "tok")
	rev.pollInterval = 5 * time.Millisecond

	text, err := rev.Transcribe(context.Background(), wav)
	require.NoError(t, err)
	assert.Equal(t, "Hello there. How are you?", text)
	assert.Equal(t, int32(2), polls.Load())
}

func TestRev_FailedJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"job2","status":"failed","failure_detail":"unsupported media"}`)
	}))
	defer srv.Close()

	_, err := NewRev(srv.URL, "tok").Transcribe(context.Background(), wav)
	assert.ErrorContains(t, err, "unsupported media")
}

type fakeTranscriber struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Name() string { return f.name }

func (f *fakeTranscriber) Transcribe(context.Context, Audio) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestChain(t *testing.T) {
	errDown := errors.New("service down")

	t.Run("falls back in order", func(t *testing.T) {
		first := &fakeTranscriber{name: "wit", err: errDown}
		second := &fakeTranscriber{name: "rev", text: "  "}
		third := &fakeTranscriber{name: "vosk", text: " hola "}
		unused := &fakeTranscriber{name: "extra", text: "never"}

		c := NewChain(zerolog.Nop(), first, second, third, unused)
		text, err := c.Transcribe(context.Background(), wav)
		require.NoError(t, err)

		assert.Equal(t, "hola", text)
		assert.Equal(t, []int{1, 1, 1, 0}, []int{first.calls, second.calls, third.calls, unused.calls})
		assert.Equal(t, "wit,rev,vosk,extra", c.Name())
	})

	t.Run("all fail", func(t *testing.T) {
		c := NewChain(zerolog.Nop(),
			&fakeTranscriber{name: "wit", err: errDown},
			&fakeTranscriber{name: "vosk", text: ""},
		)
		_, err := c.Transcribe(context.Background(), wav)
		require.ErrorIs(t, err, ErrTranscriptionFailed)
		assert.ErrorIs(t, err, errDown)
		assert.ErrorContains(t, err, "vosk: empty transcript")
	})

	t.Run("empty audio", func(t *testing.T) {
		c := NewChain(zerolog.Nop(), &fakeTranscriber{name: "wit", text: "x"})
		_, err := c.Transcribe(context.Background(), Audio{})
		assert.ErrorIs(t, err, ErrTranscriptionFailed)
	})

	t.Run("no transcribers", func(t *testing.T) {
		_, err := NewChain(zerolog.Nop()).Transcribe(context.Background(), wav)
		assert.ErrorIs(t, err, ErrTranscriptionFailed)
	})
}

func TestPlainTranscript(t *testing.T) {
	assert.Equal(t, "one two", plainTranscript("Speaker 0    00:00:00    one\n\nSpeaker 1    00:00:04    two"))
	assert.Equal(t, "no speaker prefix", plainTranscript("no speaker prefix\n"))
}
