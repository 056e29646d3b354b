package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyMemoryProvider_Translate(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get", r.URL.Path)
		gotQuery = map[string]string{
			"q":        r.URL.Query().Get("q"),
			"langpair": r.URL.Query().Get("langpair"),
			"de":       r.URL.Query().Get("de"),
		}
		_, _ = w.Write([]byte(`{"responseData":{"translatedText":"Hola","match":1},"responseStatus":200,"responseDetails":""}`))
	}))
	defer srv.Close()

	p := NewMyMemoryProvider(srv.URL, "me@example.com")
	resp, err := p.Translate(context.Background(), Request{Text: " Hello ", SourceLang: "en", TargetLang: "es"})
	require.NoError(t, err)

	assert.Equal(t, "Hola", resp.Text)
	assert.Equal(t, "en", resp.SourceLang)
	assert.Equal(t, "es", resp.TargetLang)
	assert.Equal(t, "mymemory", resp.ProviderName)
	assert.Equal(t, map[string]string{"q": "Hello", "langpair": "en|es", "de": "me@example.com"}, gotQuery)
}

func TestMyMemoryProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusInternalServerError, body: "boom"},
		{name: "quota status as string", status: http.StatusOK, body: `{"responseData":{"translatedText":"MYMEMORY WARNING"},"responseStatus":"429","responseDetails":"quota"}`},
		{name: "bad status", status: http.StatusOK, body: `{"responseData":{"translatedText":""},"responseStatus":403,"responseDetails":"INVALID LANGUAGE PAIR"}`},
		{name: "empty translation", status: http.StatusOK, body: `{"responseData":{"translatedText":"  "},"responseStatus":200}`},
		{name: "invalid json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewMyMemoryProvider(srv.URL, "").Translate(context.Background(), Request{Text: "hi", SourceLang: "en", TargetLang: "fr"})
			assert.ErrorIs(t, err, ErrTranslationUnavailable)
		})
	}
}

func TestMyMemoryProvider_RequiresResolvedSource(t *testing.T) {
	p := NewMyMemoryProvider("http://127.0.0.1:0", "")
	_, err := p.Translate(context.Background(), Request{Text: "hi", SourceLang: "auto", TargetLang: "fr"})
	assert.ErrorIs(t, err, ErrTranslationUnavailable)
}

func TestLocalProvider_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "into French")
		assert.Contains(t, req.Messages[0].Content, "Good night")

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" Bonne nuit "}}]}`))
	}))
	defer srv.Close()

	p := NewLocalProvider(srv.URL, "test-model")
	resp, err := p.Translate(context.Background(), Request{Text: "Good night", SourceLang: "en", TargetLang: "fr"})
	require.NoError(t, err)
	assert.Equal(t, "Bonne nuit", resp.Text)
	assert.Equal(t, "local", resp.ProviderName)
}

func TestLocalProvider_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not loaded"}}`))
	}))
	defer srv.Close()

	_, err := NewLocalProvider(srv.URL, "").Translate(context.Background(), Request{Text: "x", SourceLang: "en", TargetLang: "fr"})
	require.ErrorIs(t, err, ErrTranslationUnavailable)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestChatCompletionsURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "http://127.0.0.1:8845/v1/chat/completions"},
		{in: "localhost:9000", want: "http://localhost:9000/v1/chat/completions"},
		{in: "http://host/v1/", want: "http://host/v1/chat/completions"},
		{in: "https://host/api/v1/chat/completions", want: "https://host/api/v1/chat/completions"},
		{in: "https://host/proxy", want: "https://host/proxy/v1/chat/completions"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, chatCompletionsURL(normalizeEndpoint(tt.in)))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("")
	assert.Equal(t, DefaultProviderName, r.DefaultProvider())

	_, err := r.Provider("")
	require.ErrorIs(t, err, ErrTranslationUnavailable)

	require.NoError(t, r.Register(NewMyMemoryProvider("", "")))
	require.NoError(t, r.Register(NewLocalProvider("", "")))
	require.Error(t, r.Register(nil))

	p, err := r.Provider("")
	require.NoError(t, err)
	assert.Equal(t, "mymemory", p.Name())

	p, err = r.Provider(" LOCAL ")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	_, err = r.Provider("google")
	assert.ErrorContains(t, err, "available: local, mymemory")
	assert.Equal(t, []string{"local", "mymemory"}, r.ProviderNames())
}

type countingProvider struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (p *countingProvider) Name() string                 { return "counting" }
func (p *countingProvider) SupportedLanguages() []string { return []string{"en", "es"} }

func (p *countingProvider) Translate(_ context.Context, req Request) (*Response, error) {
	p.calls.Add(1)
	time.Sleep(p.delay)
	if p.err != nil {
		return nil, p.err
	}
	return &Response{Text: "<" + req.Text + ">", SourceLang: req.SourceLang, TargetLang: req.TargetLang, ProviderName: p.Name()}, nil
}

func TestCached_HitsCache(t *testing.T) {
	next := &countingProvider{}
	c, err := NewCached(next, CacheOptions{Size: 8})
	require.NoError(t, err)

	ctx := context.Background()
	req := Request{Text: "hello", SourceLang: "en", TargetLang: "es"}

	first, err := c.Translate(ctx, req)
	require.NoError(t, err)
	second, err := c.Translate(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, 1, c.Len())

	// a different pair is a different entry
	_, err = c.Translate(ctx, Request{Text: "hello", SourceLang: "es", TargetLang: "en"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCached_CollapsesConcurrentRequests(t *testing.T) {
	next := &countingProvider{delay: 50 * time.Millisecond}
	c, err := NewCached(next, CacheOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Translate(context.Background(), Request{Text: "same", SourceLang: "en", TargetLang: "es"})
			assert.NoError(t, err)
			assert.Equal(t, "<same>", resp.Text)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCached_CanceledLeaderDoesNotFailFollowers(t *testing.T) {
	next := &countingProvider{delay: 100 * time.Millisecond}
	c, err := NewCached(next, CacheOptions{})
	require.NoError(t, err)

	req := Request{Text: "shared", SourceLang: "en", TargetLang: "es"}
	leaderCtx, cancel := context.WithCancel(context.Background())

	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Translate(leaderCtx, req)
		leaderErr <- err
	}()

	// let the leader start the shared call before the follower joins it
	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, time.Millisecond)

	followerResp := make(chan *Response, 1)
	go func() {
		resp, err := c.Translate(context.Background(), req)
		assert.NoError(t, err)
		followerResp <- resp
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-leaderErr, ErrTranslationUnavailable)
	resp := <-followerResp
	require.NotNil(t, resp)
	assert.Equal(t, "<shared>", resp.Text)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	next := &countingProvider{err: unavailable("counting", assert.AnError)}
	c, err := NewCached(next, CacheOptions{})
	require.NoError(t, err)

	req := Request{Text: "x", SourceLang: "en", TargetLang: "es"}
	_, err = c.Translate(context.Background(), req)
	require.ErrorIs(t, err, ErrTranslationUnavailable)
	_, err = c.Translate(context.Background(), req)
	require.Error(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
	assert.Zero(t, c.Len())
}

func TestCached_RateLimitHonorsContext(t *testing.T) {
	next := &countingProvider{}
	c, err := NewCached(next, CacheOptions{RatePerSecond: 0.001, Burst: 1})
	require.NoError(t, err)

	_, err = c.Translate(context.Background(), Request{Text: "a", SourceLang: "en", TargetLang: "es"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Translate(ctx, Request{Text: "b", SourceLang: "en", TargetLang: "es"})
	assert.ErrorIs(t, err, ErrTranslationUnavailable)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestDetector(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{text: "The weather is lovely today and we are going to the park.", want: "en", ok: true},
		{text: "¿Dónde está la estación de tren más cercana?", want: "es", ok: true},
		{text: "Je voudrais un café et un croissant, s'il vous plaît.", want: "fr", ok: true},
		{text: "मुझे हिंदी बोलना पसंद है", want: "hi", ok: true},
		{text: "હું ગુજરાતી બોલું છું", want: "gu", ok: true},
		{text: "ok", ok: false},
		{text: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := d.Detect(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
