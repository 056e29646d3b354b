package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hay-kot/lingo/internal/core/translation"
)

const (
	// DefaultLocalEndpoint points to a local OpenAI-compatible endpoint.
	DefaultLocalEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultLocalModel is the model requested when none is configured.
	DefaultLocalModel = "tencent/HY-MT1.5-7B"
)

// LocalProvider translates text by calling an OpenAI-compatible chat
// completions endpoint, such as a self-hosted translation model.
type LocalProvider struct {
	endpointURL string
	model       string
	client      *http.Client
}

// NewLocalProvider builds a local provider for the given endpoint and model.
func NewLocalProvider(endpoint, model string) *LocalProvider {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultLocalModel
	}
	return &LocalProvider{
		endpointURL: chatCompletionsURL(normalizeEndpoint(endpoint)),
		model:       model,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *LocalProvider) Name() string {
	return "local"
}

// ModelName returns the configured model identifier.
func (p *LocalProvider) ModelName() string {
	return p.model
}

func (p *LocalProvider) SupportedLanguages() []string {
	return translation.Codes()
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *LocalProvider) Translate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.translate(ctx, req)
	if err != nil {
		return nil, unavailable(p.Name(), err)
	}
	return resp, nil
}

func (p *LocalProvider) translate(ctx context.Context, req Request) (*Response, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	source := translation.NormalizeCode(req.SourceLang)
	target := translation.NormalizeCode(req.TargetLang)
	if target == "" {
		return nil, fmt.Errorf("target language is required")
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(text, target)},
		},
		Temperature: 0.7,
		TopP:        0.6,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errPayload chatErrorResponse
		if json.Unmarshal(respBody, &errPayload) == nil {
			if msg := strings.TrimSpace(errPayload.Error.Message); msg != "" {
				return nil, fmt.Errorf("translation endpoint status %d: %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("translation endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("translation response missing choices")
	}

	translated := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if translated == "" {
		return nil, fmt.Errorf("translation response was empty")
	}

	return &Response{
		Text:         translated,
		SourceLang:   source,
		TargetLang:   target,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

func buildPrompt(text, target string) string {
	name := target
	if lang, ok := translation.Lookup(target); ok {
		name = lang.Name
	}
	return fmt.Sprintf("Translate the following segment into %s, without additional explanation.\n\n%s", name, text)
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultLocalEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return DefaultLocalEndpoint
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	if parsed.Path == "" {
		parsed.Path = "/v1"
	}
	return parsed.String()
}

func chatCompletionsURL(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return DefaultLocalEndpoint + "/chat/completions"
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		parsed.Path = path
	case strings.HasSuffix(path, "/v1"):
		parsed.Path = path + "/chat/completions"
	default:
		parsed.Path = path + "/v1/chat/completions"
	}
	return parsed.String()
}
