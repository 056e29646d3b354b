package document

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
)

// HTML extracts the main article text of a saved web page.
type HTML struct{}

func (HTML) Name() string { return "readability" }

func (HTML) ExtractText(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	article, err := readability.FromReader(f, pageURL)
	if err != nil {
		return "", fmt.Errorf("readability parse: %w", err)
	}

	var rendered bytes.Buffer
	if err := article.RenderText(&rendered); err != nil {
		return "", fmt.Errorf("render readability text: %w", err)
	}

	text := strings.TrimSpace(rendered.String())
	if text == "" {
		text = strings.TrimSpace(article.Excerpt())
	}
	return text, nil
}
