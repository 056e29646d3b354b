package config

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/lingo/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// CardTemplateData defines available fields for the history card template.
type CardTemplateData struct {
	ID             string
	SourceText     string
	TranslatedText string
	Source         string
	Target         string
	SourceName     string
	TargetName     string
	Timestamp      time.Time
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this checks template syntax and file access. Problems
// are returned as criterio.FieldErrors keyed by config path.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrors
	add := func(field string, err error) {
		errs = append(errs, criterio.FieldErrors{{Field: field, Err: err}}...)
	}

	if err := c.Validate(); err != nil {
		add("", err)
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil {
			if info.IsDir() {
				add("config", fmt.Errorf("%s is a directory, not a file", configPath))
			}
		} else if !os.IsNotExist(err) {
			add("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil {
			if !info.IsDir() {
				add("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
			}
		} else if !os.IsNotExist(err) {
			add("data_dir", fmt.Errorf("cannot access %s: %w", c.DataDir, err))
		}
	}

	if c.Document.PDFFont != "" {
		if info, err := os.Stat(c.Document.PDFFont); err != nil {
			add("document.pdf_font", fmt.Errorf("cannot read font: %w", err))
		} else if info.IsDir() {
			add("document.pdf_font", fmt.Errorf("%s is a directory, not a font file", c.Document.PDFFont))
		}
	}

	if _, err := tmpl.Render(c.Templates.Card, CardTemplateData{}); err != nil {
		add("templates.card", fmt.Errorf("template error: %w", err))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Warnings returns configuration issues that degrade but do not break lingo,
// mostly credentials missing for configured providers.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning
	warn := func(category, item, msg string) {
		warnings = append(warnings, ValidationWarning{Category: category, Item: item, Message: msg})
	}

	for _, name := range c.Speech.Transcribers {
		switch name {
		case TranscriberWit:
			if c.Credentials.WitAIKey == "" {
				warn("Speech", name, "WIT_AI_KEY is not set; transcriber will be skipped")
			}
		case TranscriberRev:
			if c.Credentials.RevAIKey == "" {
				warn("Speech", name, "REV_AI_KEY is not set; transcriber will be skipped")
			}
		}
	}
	if len(c.Speech.Transcribers) == 0 {
		warn("Speech", "transcribers", "no transcribers configured; speech translation is disabled")
	}

	if c.Document.PDFToTextPath != "" {
		if _, err := exec.LookPath(c.Document.PDFToTextPath); err != nil {
			warn("Document", "pdftotext_path", fmt.Sprintf("%s not found; PDFs fall back to OCR", c.Document.PDFToTextPath))
		}
	}
	if c.Credentials.OCRSpaceKey == "" {
		warn("Document", "ocr", "OCR_SPACE_KEY is not set; OCR fallback is disabled")
	}

	if c.Auth.Provider == AuthFirebase && c.Credentials.FirebaseAPIKey == "" {
		warn("Auth", "firebase", "FIREBASE_API_KEY is not set; sign in will fail")
	}

	return warnings
}
