package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/document"
	"github.com/hay-kot/lingo/internal/lingo"
	"github.com/hay-kot/lingo/internal/printer"
)

type DocumentCmd struct {
	flags  *Flags
	opts   langOptions
	output string
}

// NewDocumentCmd creates a new document command
func NewDocumentCmd(flags *Flags) *DocumentCmd {
	return &DocumentCmd{flags: flags}
}

// Register adds the document command to the application
func (cmd *DocumentCmd) Register(app *cli.Command) *cli.Command {
	flags := cmd.opts.flags(defaultSource, defaultTarget)
	flags = append(flags, &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       "write the translation to this file (.pdf writes a PDF, anything else plain text)",
		Destination: &cmd.output,
	})

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "document",
		Aliases:   []string{"doc"},
		Usage:     "Translate the text of a document",
		UsageText: "lingo document [options] <file>",
		Description: `Extracts the text of a PDF, HTML, text or image file and translates all
of it. PDFs are read with pdftotext and fall back to OCR for scans.

With --output the translation is written to a file instead of stdout. A .pdf
path produces a translated PDF; set document.pdf_font to a TrueType font for
scripts such as Gujarati or Hindi.`,
		Flags:  flags,
		Action: cmd.run,
	})

	return app
}

func (cmd *DocumentCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one document")
	}

	source, target := cmd.opts.pair()
	res, err := cmd.flags.Service.TranslateDocument(ctx, lingo.DocumentRequest{
		Path:     c.Args().First(),
		Source:   source,
		Target:   target,
		Provider: cmd.opts.provider,
		Save:     cmd.opts.save,
	})
	if err != nil {
		return fmt.Errorf("document: %w", err)
	}

	if cmd.output != "" {
		if err := writeTranslation(cmd.output, res.Record, cmd.flags.Config.Document.PDFFont); err != nil {
			return err
		}
		printer.Ctx(ctx).Successf("translation written to %s", cmd.output)
		return nil
	}

	return printResult(ctx, c.Root().Writer, res, cmd.opts.json)
}

// writeTranslation writes the translated text of r to path, as a PDF when
// path ends in .pdf and as plain text otherwise.
func writeTranslation(path string, r translation.Record, fontPath string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		if err := os.WriteFile(path, []byte(r.TranslatedText+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	err = document.WritePDF(f, r.TranslatedText, document.PDFOptions{
		Title:    languageName(r.SourceLang) + " → " + languageName(r.TargetLang),
		FontPath: fontPath,
		Compress: true,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
