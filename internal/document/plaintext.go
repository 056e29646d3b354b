package document

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

// PlainText reads UTF-8 text files as they are.
type PlainText struct{}

func (PlainText) Name() string { return "plaintext" }

func (PlainText) ExtractText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8", path)
	}
	return string(data), nil
}
