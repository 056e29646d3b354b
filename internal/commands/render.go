package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/lingo/internal/core/config"
	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/pkg/tmpl"
)

// cardData fills the card template from a record.
func cardData(r translation.Record) config.CardTemplateData {
	return config.CardTemplateData{
		ID:             r.ID,
		SourceText:     r.SourceText,
		TranslatedText: r.TranslatedText,
		Source:         r.SourceLang,
		Target:         r.TargetLang,
		SourceName:     languageName(r.SourceLang),
		TargetName:     languageName(r.TargetLang),
		Timestamp:      r.Timestamp,
	}
}

// renderCard renders r with the configured card template. With styled set
// the markdown goes through glamour, wrapped to width.
func renderCard(card string, r translation.Record, width int, styled bool) (string, error) {
	md, err := tmpl.Render(card, cardData(r))
	if err != nil {
		return "", fmt.Errorf("render card: %w", err)
	}
	if !styled {
		return md, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md, nil
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md, nil
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
