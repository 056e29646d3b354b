package document

import (
	"context"
	"fmt"

	"github.com/hay-kot/lingo/pkg/executil"
)

// PDFToText extracts PDF text with poppler's pdftotext.
type PDFToText struct {
	exec   executil.Executor
	binary string
}

func NewPDFToText(exec executil.Executor, binary string) *PDFToText {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PDFToText{exec: exec, binary: binary}
}

func (p *PDFToText) Name() string { return "pdftotext" }

// Available reports whether the pdftotext binary can be found.
func (p *PDFToText) Available() error {
	if _, err := p.exec.LookPath(p.binary); err != nil {
		return fmt.Errorf("%s not found: %w", p.binary, err)
	}
	return nil
}

func (p *PDFToText) ExtractText(ctx context.Context, path string) (string, error) {
	out, err := p.exec.Output(ctx, p.binary, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
