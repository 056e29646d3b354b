// Package translation defines translation records, supported languages and
// the blob codec used to persist record lists.
package translation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one completed translation. Records are immutable once created.
type Record struct {
	ID             string    `json:"id"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	SourceLang     string    `json:"sourceLang"`
	TargetLang     string    `json:"targetLang"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewID returns a unique, time-ordered record identifier (UUIDv7).
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source fails.
		return uuid.NewString()
	}
	return id.String()
}

// New builds a record stamped with a fresh ID and the current time.
func New(sourceText, translatedText, sourceLang, targetLang string) Record {
	return Record{
		ID:             NewID(),
		SourceText:     sourceText,
		TranslatedText: translatedText,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		Timestamp:      time.Now().UTC(),
	}
}

// Validate reports whether the record is complete enough to persist.
// A failed translation (empty translated text) is never valid.
func (r Record) Validate() error {
	var errs []error

	if strings.TrimSpace(r.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if strings.TrimSpace(r.SourceText) == "" {
		errs = append(errs, errors.New("source text is required"))
	}
	if strings.TrimSpace(r.TranslatedText) == "" {
		errs = append(errs, errors.New("translated text is required"))
	}
	if !IsSupported(r.SourceLang) {
		errs = append(errs, fmt.Errorf("unsupported source language %q", r.SourceLang))
	}
	if !IsSupported(r.TargetLang) {
		errs = append(errs, fmt.Errorf("unsupported target language %q", r.TargetLang))
	}
	if r.Timestamp.IsZero() {
		errs = append(errs, errors.New("timestamp is required"))
	}

	return errors.Join(errs...)
}

// Pair returns the "src → tgt" label shown next to a record.
func (r Record) Pair() string {
	return r.SourceLang + " → " + r.TargetLang
}
