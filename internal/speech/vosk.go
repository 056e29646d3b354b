package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultVoskURL is where a local VOSK server listens by default.
const DefaultVoskURL = "http://localhost:2700"

// Vosk transcribes with a self-hosted VOSK HTTP server.
type Vosk struct {
	baseURL string
	client  *http.Client
}

func NewVosk(baseURL string) *Vosk {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultVoskURL
	}
	return &Vosk{baseURL: baseURL, client: &http.Client{Timeout: 60 * time.Second}}
}

func (v *Vosk) Name() string { return "vosk" }

type voskRequest struct {
	AudioData string `json:"audio_data"`
	Language  string `json:"language"`
}

type voskResponse struct {
	Text string `json:"text"`
}

func (v *Vosk) Transcribe(ctx context.Context, audio Audio) (string, error) {
	body, err := json.Marshal(voskRequest{
		AudioData: base64.StdEncoding.EncodeToString(audio.Data),
		Language:  audio.language(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal vosk request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/transcribe", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build vosk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send vosk request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read vosk response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("vosk status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed voskResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode vosk response: %w", err)
	}
	return parsed.Text, nil
}
