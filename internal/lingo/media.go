package lingo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/document"
	"github.com/hay-kot/lingo/internal/speech"
)

// ErrNotConfigured is returned for features whose backend is not set up.
var ErrNotConfigured = errors.New("feature is not configured")

// SpeechRequest asks for a recording to be transcribed and translated.
type SpeechRequest struct {
	Audio    speech.Audio
	Source   string
	Target   string
	Provider string
	Save     bool
}

// TranslateSpeech transcribes the recording and translates the transcript.
func (s *Service) TranslateSpeech(ctx context.Context, req SpeechRequest) (*Result, error) {
	if s.transcriber == nil {
		return nil, fmt.Errorf("%w: speech", ErrNotConfigured)
	}

	audio := req.Audio
	if audio.Language == "" && req.Source != translation.AutoDetect {
		audio.Language = translation.NormalizeCode(req.Source)
	}

	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyText
	}
	s.log.Debug().Int("chars", len(transcript)).Msg("transcribed speech")

	return s.translate(ctx, TextRequest{
		Text:     transcript,
		Source:   req.Source,
		Target:   req.Target,
		Provider: req.Provider,
		Save:     req.Save,
	}, transcript)
}

// DocumentRequest asks for a document's text to be translated.
type DocumentRequest struct {
	Path     string
	Source   string
	Target   string
	Provider string
	Save     bool
}

// TranslateDocument extracts the document's text and translates all of it.
// The typed-text character limit does not apply; long documents are sent to
// the provider in chunks.
func (s *Service) TranslateDocument(ctx context.Context, req DocumentRequest) (*Result, error) {
	if s.documents == nil {
		return nil, fmt.Errorf("%w: documents", ErrNotConfigured)
	}

	text, err := s.documents.ExtractText(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s contains no text", document.ErrExtractionFailed, req.Path)
	}

	return s.translate(ctx, TextRequest{
		Text:     text,
		Source:   req.Source,
		Target:   req.Target,
		Provider: req.Provider,
		Save:     req.Save,
	}, "")
}
