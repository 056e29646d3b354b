// Package speech turns recorded audio into text.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrTranscriptionFailed is returned when no transcriber produced text.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Audio is one recording.
type Audio struct {
	Data        []byte
	ContentType string
	// Language is the ISO 639-1 code spoken in the recording.
	Language string
}

func (a Audio) contentType() string {
	if a.ContentType == "" {
		return "audio/wav"
	}
	return a.ContentType
}

func (a Audio) language() string {
	if a.Language == "" {
		return "en"
	}
	return a.Language
}

// Transcriber converts audio to text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// Chain tries each transcriber in order and returns the first non-empty
// transcript.
type Chain struct {
	transcribers []Transcriber
	log          zerolog.Logger
}

var _ Transcriber = (*Chain)(nil)

func NewChain(log zerolog.Logger, transcribers ...Transcriber) *Chain {
	return &Chain{
		transcribers: transcribers,
		log:          log.With().Str("component", "speech").Logger(),
	}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.transcribers))
	for i, t := range c.transcribers {
		names[i] = t.Name()
	}
	return strings.Join(names, ",")
}

func (c *Chain) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("%w: audio is empty", ErrTranscriptionFailed)
	}
	if len(c.transcribers) == 0 {
		return "", fmt.Errorf("%w: no transcribers configured", ErrTranscriptionFailed)
	}

	var errs []error
	for _, t := range c.transcribers {
		c.log.Debug().Str("transcriber", t.Name()).Msg("trying transcriber")

		text, err := t.Transcribe(ctx, audio)
		if err != nil {
			c.log.Warn().Err(err).Str("transcriber", t.Name()).Msg("transcriber failed")
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			c.log.Warn().Str("transcriber", t.Name()).Msg("transcriber returned no text")
			errs = append(errs, fmt.Errorf("%s: empty transcript", t.Name()))
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, errors.Join(errs...))
}
