// Package lingo wires translation, speech, document and history flows into
// the operations the CLI, TUI and HTTP API expose.
package lingo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lingo/internal/auth"
	"github.com/hay-kot/lingo/internal/core/history"
	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/document"
	"github.com/hay-kot/lingo/internal/speech"
	"github.com/hay-kot/lingo/internal/translator"
)

// DefaultCharLimit caps typed input and sets the chunk size for longer texts.
const DefaultCharLimit = 5000

var (
	ErrEmptyText           = errors.New("text is required")
	ErrTextTooLong         = errors.New("text exceeds the character limit")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrDetectionFailed     = errors.New("could not detect the source language")
	ErrSameLanguage        = errors.New("source and target language are the same")
)

// Translators resolves a translation provider by name; "" is the default.
type Translators interface {
	Provider(name string) (translator.Provider, error)
	ProviderNames() []string
}

// Detector guesses the language of a text.
type Detector interface {
	Detect(text string) (string, bool)
}

// Deps are the collaborators a Service needs. Transcriber, Documents and
// Auth may be nil when the matching feature is not configured.
type Deps struct {
	History     *history.Store
	Translators Translators
	Detector    Detector
	Transcriber speech.Transcriber
	Documents   document.Extractor
	Auth        auth.Provider
	CharLimit   int
}

// Service orchestrates lingo operations.
type Service struct {
	history     *history.Store
	translators Translators
	detector    Detector
	transcriber speech.Transcriber
	documents   document.Extractor
	auth        auth.Provider
	charLimit   int
	log         zerolog.Logger
}

// New creates a new Service.
func New(deps Deps, log zerolog.Logger) *Service {
	limit := deps.CharLimit
	if limit < 1 {
		limit = DefaultCharLimit
	}
	return &Service{
		history:     deps.History,
		translators: deps.Translators,
		detector:    deps.Detector,
		transcriber: deps.Transcriber,
		documents:   deps.Documents,
		auth:        deps.Auth,
		charLimit:   limit,
		log:         log.With().Str("component", "service").Logger(),
	}
}

// CharLimit returns the maximum length of typed input, in runes.
func (s *Service) CharLimit() int {
	return s.charLimit
}

// Languages lists the supported languages.
func (s *Service) Languages() []translation.Language {
	return translation.Languages()
}

// ProviderNames lists the registered translation providers.
func (s *Service) ProviderNames() []string {
	return s.translators.ProviderNames()
}

// TextRequest asks for one text translation.
type TextRequest struct {
	Text string
	// Source is a language code or translation.AutoDetect.
	Source string
	Target string
	// Provider selects a translation provider; empty uses the default.
	Provider string
	// Save also stores the result in the saved translations.
	Save bool
	// SkipHistory leaves recording to the caller, for screens that append
	// through their own history.View.
	SkipHistory bool
}

// Result is a completed translation.
type Result struct {
	Record   translation.Record
	Provider string
	// Detected is set when the source language was detected.
	Detected bool
	Saved    bool
	// Transcript holds the recognized speech for speech translations.
	Transcript string
	// HistoryErr is set when the translation succeeded but could not be
	// written to history.
	HistoryErr error
}

// TranslateText translates typed text and records it in the recent history.
// A failed translation records nothing.
func (s *Service) TranslateText(ctx context.Context, req TextRequest) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if n := utf8.RuneCountInString(req.Text); n > s.charLimit {
		return nil, fmt.Errorf("%w: %d > %d", ErrTextTooLong, n, s.charLimit)
	}
	return s.translate(ctx, req, "")
}

func (s *Service) translate(ctx context.Context, req TextRequest, transcript string) (*Result, error) {
	text := strings.TrimSpace(req.Text)

	source, target, detected, err := s.resolveLanguages(text, req.Source, req.Target)
	if err != nil {
		return nil, err
	}

	provider, err := s.translators.Provider(req.Provider)
	if err != nil {
		return nil, err
	}

	translated, err := s.translateChunks(ctx, provider, text, source, target)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", provider.Name()).Msg("translation failed")
		return nil, err
	}

	res := &Result{
		Record:     translation.New(text, translated, source, target),
		Provider:   provider.Name(),
		Detected:   detected,
		Transcript: transcript,
	}

	if req.SkipHistory {
		return res, nil
	}

	if _, err := s.history.Append(ctx, history.Recent, res.Record, s.history.Limit(history.Recent)); err != nil {
		res.HistoryErr = err
	}
	if req.Save {
		if _, err := s.history.Append(ctx, history.Notes, res.Record, s.history.Limit(history.Notes)); err != nil {
			res.HistoryErr = errors.Join(res.HistoryErr, err)
		} else {
			res.Saved = true
		}
	}

	s.log.Info().
		Str("id", res.Record.ID).
		Str("pair", res.Record.Pair()).
		Str("provider", res.Provider).
		Bool("saved", res.Saved).
		Msg("translated")

	return res, nil
}

func (s *Service) resolveLanguages(text, source, target string) (string, string, bool, error) {
	target = translation.NormalizeCode(target)
	if !translation.IsSupported(target) {
		return "", "", false, fmt.Errorf("%w: target %q", ErrUnsupportedLanguage, target)
	}

	detected := false
	source = translation.NormalizeCode(source)
	if source == "" || source == translation.AutoDetect {
		if s.detector == nil {
			return "", "", false, ErrDetectionFailed
		}
		code, ok := s.detector.Detect(text)
		if !ok {
			return "", "", false, ErrDetectionFailed
		}
		source, detected = code, true
		s.log.Debug().Str("source", source).Msg("detected source language")
	}
	if !translation.IsSupported(source) {
		return "", "", false, fmt.Errorf("%w: source %q", ErrUnsupportedLanguage, source)
	}
	if source == target {
		return "", "", false, fmt.Errorf("%w: %s", ErrSameLanguage, source)
	}
	return source, target, detected, nil
}

// translateChunks sends text to the provider in chunks of at most charLimit
// runes and joins the results with the separators the source had.
func (s *Service) translateChunks(ctx context.Context, p translator.Provider, text, source, target string) (string, error) {
	chunks := splitChunks(text, s.charLimit)

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		resp, err := p.Translate(ctx, translator.Request{Text: c.text, SourceLang: source, TargetLang: target})
		if err != nil {
			return "", err
		}
		out = append(out, resp.Text)
	}
	return joinChunks(chunks, out), nil
}

// SaveNote copies an existing record into the saved translations.
func (s *Service) SaveNote(ctx context.Context, r translation.Record) ([]translation.Record, error) {
	return s.history.Append(ctx, history.Notes, r, s.history.Limit(history.Notes))
}

// SaveFromRecent saves the recent translation with the given id.
func (s *Service) SaveFromRecent(ctx context.Context, id string) ([]translation.Record, error) {
	r, err := s.history.Get(ctx, history.Recent, id)
	if err != nil {
		return nil, err
	}
	return s.SaveNote(ctx, r)
}

// History returns the partition newest first.
func (s *Service) History(ctx context.Context, p history.Partition) []translation.Record {
	return s.history.List(ctx, p)
}

// SearchHistory filters the partition by a glob or substring pattern.
func (s *Service) SearchHistory(ctx context.Context, p history.Partition, pattern string) ([]translation.Record, error) {
	return history.Filter(s.history.List(ctx, p), pattern)
}

// HistoryRecord returns a single record. Returns history.ErrNotFound if absent.
func (s *Service) HistoryRecord(ctx context.Context, p history.Partition, id string) (translation.Record, error) {
	return s.history.Get(ctx, p, id)
}

func (s *Service) DeleteHistory(ctx context.Context, p history.Partition, id string) ([]translation.Record, error) {
	return s.history.Remove(ctx, p, id)
}

func (s *Service) ClearHistory(ctx context.Context, p history.Partition) error {
	return s.history.Clear(ctx, p)
}

// NewView creates a screen-local cache of p.
func (s *Service) NewView(p history.Partition) *history.View {
	return history.NewView(s.history, p)
}
