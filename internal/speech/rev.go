package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// DefaultRevURL is the Rev.ai API host.
const DefaultRevURL = "https://api.rev.ai"

// Rev transcribes by submitting an asynchronous Rev.ai job and polling it
// until the transcript is ready.
type Rev struct {
	baseURL      string
	token        string
	client       *http.Client
	pollInterval time.Duration
}

func NewRev(baseURL, token string) *Rev {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultRevURL
	}
	return &Rev{
		baseURL:      baseURL,
		token:        token,
		client:       &http.Client{Timeout: 60 * time.Second},
		pollInterval: time.Second,
	}
}

func (r *Rev) Name() string { return "rev" }

type revJob struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Failure string `json:"failure_detail"`
}

func (r *Rev) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if r.token == "" {
		return "", fmt.Errorf("rev.ai token is not configured")
	}

	job, err := r.submit(ctx, audio)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		switch job.Status {
		case "transcribed", "completed":
			return r.transcript(ctx, job.ID)
		case "failed":
			return "", fmt.Errorf("rev job %s failed: %s", job.ID, job.Failure)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		if err := r.do(ctx, http.MethodGet, "/speechtotext/v1/jobs/"+job.ID, nil, "", &job); err != nil {
			return "", err
		}
	}
}

func (r *Rev) submit(ctx context.Context, audio Audio) (revJob, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="media"; filename="recording"`)
	header.Set("Content-Type", audio.contentType())
	part, err := mw.CreatePart(header)
	if err != nil {
		return revJob{}, fmt.Errorf("create media part: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return revJob{}, fmt.Errorf("write media part: %w", err)
	}

	options, err := json.Marshal(map[string]string{"language": audio.language()})
	if err != nil {
		return revJob{}, fmt.Errorf("marshal rev options: %w", err)
	}
	if err := mw.WriteField("options", string(options)); err != nil {
		return revJob{}, fmt.Errorf("write options part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return revJob{}, fmt.Errorf("close multipart body: %w", err)
	}

	var job revJob
	if err := r.do(ctx, http.MethodPost, "/speechtotext/v1/jobs", &buf, mw.FormDataContentType(), &job); err != nil {
		return revJob{}, err
	}
	if job.ID == "" {
		return revJob{}, fmt.Errorf("rev response missing job id")
	}
	return job, nil
}

func (r *Rev) transcript(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/speechtotext/v1/jobs/"+id+"/transcript", nil)
	if err != nil {
		return "", fmt.Errorf("build rev request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch rev transcript: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read rev transcript: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("rev status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return plainTranscript(string(body)), nil
}

func (r *Rev) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build rev request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send rev request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read rev response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rev status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode rev response: %w", err)
	}
	return nil
}

// plainTranscript strips the "Speaker 0    00:00:01    " prefix Rev puts on
// every line of a text/plain transcript.
func plainTranscript(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Speaker") {
			fields := strings.SplitN(line, "    ", 3)
			if len(fields) == 3 {
				line = strings.TrimSpace(fields[2])
			}
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}
