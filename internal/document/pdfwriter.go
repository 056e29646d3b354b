package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDFOptions configures WritePDF.
type PDFOptions struct {
	Title string
	// FontPath is a TrueType font used for all text. Without it the built-in
	// Helvetica is used, which only covers Western European scripts.
	FontPath string
	// Compress deflates page content streams.
	Compress bool
}

// WritePDF lays text out on A4 pages, one block per paragraph, and writes
// the PDF to w.
func WritePDF(w io.Writer, text string, opts PDFOptions) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(opts.Compress)
	pdf.SetCreator("lingo", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}

	family := "Helvetica"
	encode := func(s string) string { return s }
	if opts.FontPath != "" {
		family = "body"
		pdf.AddUTF8Font(family, "", opts.FontPath)
	} else if tr := pdf.UnicodeTranslatorFromDescriptor(""); tr != nil {
		encode = func(s string) string { return tr(strings.ReplaceAll(s, "→", "->")) }
	}

	pdf.AddPage()
	if opts.Title != "" {
		pdf.SetFont(family, "", 16)
		pdf.MultiCell(0, 8, encode(opts.Title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont(family, "", 11)
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}
		pdf.MultiCell(0, 5.5, encode(para), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
