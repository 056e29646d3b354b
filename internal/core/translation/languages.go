package translation

import "strings"

// AutoDetect may be passed as a source language to request detection.
const AutoDetect = "auto"

// Language is a supported translation language.
type Language struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native"`
}

var languages = []Language{
	{Code: "en", Name: "English", Native: "English"},
	{Code: "hi", Name: "Hindi", Native: "हिन्दी"},
	{Code: "gu", Name: "Gujarati", Native: "ગુજરાતી"},
	{Code: "es", Name: "Spanish", Native: "Español"},
	{Code: "fr", Name: "French", Native: "Français"},
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Codes returns the supported language codes in display order.
func Codes() []string {
	codes := make([]string, len(languages))
	for i, l := range languages {
		codes[i] = l.Code
	}
	return codes
}

// NormalizeCode lowercases a code and strips any region subtag ("en-US" -> "en").
func NormalizeCode(raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	code = strings.ReplaceAll(code, "_", "-")
	if dash := strings.IndexByte(code, '-'); dash >= 0 {
		code = code[:dash]
	}
	return code
}

// Lookup returns the language for code.
func Lookup(code string) (Language, bool) {
	code = NormalizeCode(code)
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// IsSupported reports whether code is one of the supported languages.
func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Swap exchanges source and target. An auto-detect source cannot become a
// target, so the pair is returned unchanged in that case.
func Swap(source, target string) (string, string) {
	if source == AutoDetect {
		return source, target
	}
	return target, source
}
