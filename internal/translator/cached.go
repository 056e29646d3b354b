package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// CacheOptions configures a Cached provider.
type CacheOptions struct {
	// Size is the number of translations kept; values below 1 use 256.
	Size int
	// RatePerSecond limits outbound calls. Zero disables the limiter.
	RatePerSecond float64
	// Burst is the limiter bucket size; values below 1 use 1.
	Burst int
}

// flightTimeout bounds a shared provider call once it no longer follows the
// context of the caller that started it.
const flightTimeout = time.Minute

type cacheKey struct {
	provider, source, target, text string
}

func (k cacheKey) String() string {
	return strings.Join([]string{k.provider, k.source, k.target, k.text}, "\x00")
}

// Cached wraps a Provider with an LRU result cache, collapses identical
// in-flight requests and rate limits calls to the wrapped provider.
type Cached struct {
	next    Provider
	cache   *lru.Cache[cacheKey, Response]
	group   singleflight.Group
	limiter *rate.Limiter
}

var _ Provider = (*Cached)(nil)

func NewCached(next Provider, opts CacheOptions) (*Cached, error) {
	size := opts.Size
	if size < 1 {
		size = 256
	}
	cache, err := lru.New[cacheKey, Response](size)
	if err != nil {
		return nil, fmt.Errorf("create translation cache: %w", err)
	}

	c := &Cached{next: next, cache: cache}
	if opts.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), max(1, opts.Burst))
	}
	return c, nil
}

func (c *Cached) Name() string {
	return c.next.Name()
}

func (c *Cached) SupportedLanguages() []string {
	return c.next.SupportedLanguages()
}

func (c *Cached) Translate(ctx context.Context, req Request) (*Response, error) {
	key := cacheKey{
		provider: c.next.Name(),
		source:   req.SourceLang,
		target:   req.TargetLang,
		text:     strings.TrimSpace(req.Text),
	}

	if resp, ok := c.cache.Get(key); ok {
		return &resp, nil
	}

	// The shared call must outlive any single caller; each caller waits on its
	// own context.
	ch := c.group.DoChan(key.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()

		if c.limiter != nil {
			if err := c.limiter.Wait(fctx); err != nil {
				return nil, unavailable(c.next.Name(), err)
			}
		}

		resp, err := c.next.Translate(fctx, req)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, *resp)
		return *resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, unavailable(c.next.Name(), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		resp := res.Val.(Response)
		return &resp, nil
	}
}

// Len returns the number of cached translations.
func (c *Cached) Len() int {
	return c.cache.Len()
}
