package translator

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minDetectLetters is the shortest sample, in letters, worth detecting.
const minDetectLetters = 3

// Detector guesses the language of a text, restricted to the languages lingo
// translates between. The underlying models are loaded on first use.
type Detector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) get() lingua.LanguageDetector {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Hindi, lingua.Gujarati, lingua.Spanish, lingua.French).
			Build()
	})
	return d.detector
}

// Detect returns the ISO 639-1 code of text's language. ok is false when the
// text is too short or no supported language fits.
func (d *Detector) Detect(text string) (code string, ok bool) {
	sample := strings.TrimSpace(text)

	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minDetectLetters {
		return "", false
	}

	language, exists := d.get().DetectLanguageOf(sample)
	if !exists {
		return "", false
	}

	code = strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return "", false
	}
	return code, true
}
