// Package document extracts translatable text from files.
package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrExtractionFailed wraps every failure to get text out of a document.
var ErrExtractionFailed = errors.New("document text extraction failed")

// ErrUnsupportedFormat is returned for file types no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor reads the text content of a document on disk.
type Extractor interface {
	Name() string
	ExtractText(ctx context.Context, path string) (string, error)
}

// Router picks extractors by file extension. Extractors registered for the
// same extension are tried in order until one yields non-blank text, which
// lets a scanned PDF fall through from pdftotext to OCR.
type Router struct {
	byExt map[string][]Extractor
	log   zerolog.Logger
}

func NewRouter(log zerolog.Logger) *Router {
	return &Router{
		byExt: make(map[string][]Extractor),
		log:   log.With().Str("component", "document").Logger(),
	}
}

// Handle appends e to the extractors for each extension (".pdf", ".html").
func (r *Router) Handle(e Extractor, exts ...string) *Router {
	for _, ext := range exts {
		ext = normalizeExt(ext)
		r.byExt[ext] = append(r.byExt[ext], e)
	}
	return r
}

func (r *Router) Name() string { return "router" }

// Supports reports whether any extractor handles path's extension.
func (r *Router) Supports(path string) bool {
	return len(r.byExt[normalizeExt(filepath.Ext(path))]) > 0
}

func (r *Router) ExtractText(ctx context.Context, path string) (string, error) {
	ext := normalizeExt(filepath.Ext(path))
	extractors := r.byExt[ext]
	if len(extractors) == 0 {
		return "", fmt.Errorf("%w: %w: %q", ErrExtractionFailed, ErrUnsupportedFormat, ext)
	}

	var errs []error
	for _, e := range extractors {
		text, err := e.ExtractText(ctx, path)
		if err != nil {
			r.log.Warn().Err(err).Str("extractor", e.Name()).Str("path", path).Msg("extractor failed")
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		text = cleanText(text)
		if text == "" {
			r.log.Warn().Str("extractor", e.Name()).Str("path", path).Msg("extractor found no text")
			errs = append(errs, fmt.Errorf("%s: no text found", e.Name()))
			continue
		}

		r.log.Debug().Str("extractor", e.Name()).Int("chars", len(text)).Msg("extracted document text")
		return text, nil
	}

	return "", fmt.Errorf("%w: %w", ErrExtractionFailed, errors.Join(errs...))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// cleanText trims every line, drops form feeds and collapses runs of blank
// lines to a single paragraph break.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")

	var (
		out   []string
		blank bool
	)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
