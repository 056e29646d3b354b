// Package translator holds the text translation backends.
package translator

import (
	"context"
	"errors"
	"fmt"
)

// ErrTranslationUnavailable wraps every failure of a translation backend.
var ErrTranslationUnavailable = errors.New("translation unavailable")

// ErrUnknownProvider is returned when a provider name is not registered.
var ErrUnknownProvider = errors.New("unknown translation provider")

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req Request) (*Response, error)
	Name() string
	SupportedLanguages() []string
}

// Request describes one translation. Languages are ISO 639-1 codes; the
// source must already be resolved (no "auto").
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Response contains translated text and provider metadata.
type Response struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	LatencyMs    int64
}

func unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTranslationUnavailable, provider, err)
}
