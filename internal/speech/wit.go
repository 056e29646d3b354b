package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultWitURL     = "https://api.wit.ai"
	DefaultWitVersion = "20230215"
)

// Wit transcribes with the Wit.ai speech endpoint.
type Wit struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewWit(baseURL, token string) *Wit {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultWitURL
	}
	return &Wit{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (w *Wit) Name() string { return "wit" }

type witChunk struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Error   string `json:"error"`
}

// Transcribe posts the audio and reads the stream of JSON objects Wit.ai
// answers with. The final transcription wins; otherwise the last
// non-empty partial one does.
func (w *Wit) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if w.token == "" {
		return "", fmt.Errorf("wit.ai token is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/speech?v="+DefaultWitVersion, bytes.NewReader(audio.Data))
	if err != nil {
		return "", fmt.Errorf("build wit request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", audio.contentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send wit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("wit status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var (
		text  string
		final string
	)

	dec := json.NewDecoder(resp.Body)
	for {
		var chunk witChunk
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("decode wit response: %w", err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("wit: %s", chunk.Error)
		}
		if t := strings.TrimSpace(chunk.Text); t != "" {
			text = t
			if chunk.IsFinal {
				final = t
			}
		}
	}

	if final != "" {
		return final, nil
	}
	return text, nil
}
