package translator

import (
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

// DefaultMyMemoryURL is the public MyMemory API.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemoryProvider calls the MyMemory translation memory API.
type MyMemoryProvider struct {
	baseURL string
	email   string
	client  *http.Client
}

// NewMyMemoryProvider creates a provider for baseURL. The email is sent as
// the "de" parameter, which raises MyMemory's anonymous daily quota.
func NewMyMemoryProvider(baseURL, email string) *MyMemoryProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	return &MyMemoryProvider{
		baseURL: baseURL,
		email:   strings.TrimSpace(email),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *MyMemoryProvider) Name() string {
	return "mymemory"
}

func (p *MyMemoryProvider) SupportedLanguages() []string {
	return translation.Codes()
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	// MyMemory sends the status as a number or as a quoted number
	ResponseStatus  json.Number `json:"responseStatus"`
	ResponseDetails string      `json:"responseDetails"`
}

func (p *MyMemoryProvider) Translate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.translate(ctx, req)
	if err != nil {
		return nil, unavailable(p.Name(), err)
	}
	return resp, nil
}

func (p *MyMemoryProvider) translate(ctx context.Context, req Request) (*Response, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	source := translation.NormalizeCode(req.SourceLang)
	target := translation.NormalizeCode(req.TargetLang)
	if source == "" || source == translation.AutoDetect {
		return nil, fmt.Errorf("source language is required")
	}
	if target == "" {
		return nil, fmt.Errorf("target language is required")
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", source+"|"+target)
	if p.email != "" {
		q.Set("de", p.email)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mymemory status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed myMemoryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}

	if status, err := parsed.ResponseStatus.Int64(); err == nil && status != http.StatusOK {
		return nil, fmt.Errorf("mymemory response status %d: %s", status, parsed.ResponseDetails)
	}

	translated := strings.TrimSpace(parsed.ResponseData.TranslatedText)
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
