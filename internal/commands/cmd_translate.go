package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/lingo"
	"github.com/hay-kot/lingo/internal/printer"
)

// Default language pair of the translate and document screens.
const (
	defaultSource = "en"
	defaultTarget = "gu"
)

// langOptions are the flags shared by every translating command.
type langOptions struct {
	source   string
	target   string
	provider string
	save     bool
	swap     bool
	json     bool
}

func (o *langOptions) flags(defaultFrom, defaultTo string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "from",
			Aliases:     []string{"f"},
			Usage:       "source language code, or auto to detect it",
			Value:       defaultFrom,
			Destination: &o.source,
		},
		&cli.StringFlag{
			Name:        "to",
			Aliases:     []string{"t"},
			Usage:       "target language code",
			Value:       defaultTo,
			Destination: &o.target,
		},
		&cli.StringFlag{
			Name:        "provider",
			Aliases:     []string{"p"},
			Usage:       "translation provider (mymemory, local)",
			Sources:     cli.EnvVars("LINGO_PROVIDER"),
			Destination: &o.provider,
		},
		&cli.BoolFlag{
			Name:        "save",
			Aliases:     []string{"s"},
			Usage:       "also keep the translation in notes",
			Destination: &o.save,
		},
		&cli.BoolFlag{
			Name:        "swap",
			Usage:       "swap the source and target languages",
			Destination: &o.swap,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the result as JSON",
			Destination: &o.json,
		},
	}
}

// pair returns the language pair after applying --swap.
func (o *langOptions) pair() (string, string) {
	if o.swap {
		return translation.Swap(o.source, o.target)
	}
	return o.source, o.target
}

type TranslateCmd struct {
	flags *Flags
	opts  langOptions
}

// NewTranslateCmd creates a new translate command
func NewTranslateCmd(flags *Flags) *TranslateCmd {
	return &TranslateCmd{flags: flags}
}

// Register adds the translate command to the application
func (cmd *TranslateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "translate",
		Aliases:   []string{"t"},
		Usage:     "Translate text",
		UsageText: "lingo translate [options] <text...>",
		Description: `Translates text and records it in the recent translations.

Text is read from the arguments, or from stdin when no arguments are given
or the only argument is "-". Use --save to also keep it in notes.`,
		Flags:  cmd.opts.flags(defaultSource, defaultTarget),
		Action: cmd.run,
	})

	return app
}

func (cmd *TranslateCmd) run(ctx context.Context, c *cli.Command) error {
	text, err := readText(c.Args().Slice(), os.Stdin)
	if err != nil {
		return err
	}

	source, target := cmd.opts.pair()
	res, err := cmd.flags.Service.TranslateText(ctx, lingo.TextRequest{
		Text:     text,
		Source:   source,
		Target:   target,
		Provider: cmd.opts.provider,
		Save:     cmd.opts.save,
	})
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	return printResult(ctx, c.Root().Writer, res, cmd.opts.json)
}

// readText joins args into the text to translate, falling back to stdin.
func readText(args []string, stdin *os.File) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	if stdin == nil || term.IsTerminal(int(stdin.Fd())) {
		return "", fmt.Errorf("no text provided; pass it as arguments or pipe it on stdin")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// resultJSON is the --json shape of a translation.
type resultJSON struct {
	translation.Record
	Provider   string `json:"provider"`
	Detected   bool   `json:"detected,omitempty"`
	Saved      bool   `json:"saved,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

func printResult(ctx context.Context, w io.Writer, res *lingo.Result, asJSON bool) error {
	if asJSON {
		out := resultJSON{
			Record:     res.Record,
			Provider:   res.Provider,
			Detected:   res.Detected,
			Saved:      res.Saved,
			Transcript: res.Transcript,
		}
		if res.HistoryErr != nil {
			out.Warning = res.HistoryErr.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	p := printer.Ctx(ctx)
	if res.Transcript != "" {
		p.Infof("heard: %s", res.Transcript)
	}
	if res.Detected {
		p.Infof("detected %s", languageName(res.Record.SourceLang))
	}

	printer.New(w).Translation(res.Record)

	if res.HistoryErr != nil {
		p.Warnf("translation not saved to history: %v", res.HistoryErr)
	} else if res.Saved {
		p.Successf("saved to notes")
	}
	return nil
}

func languageName(code string) string {
	if lang, ok := translation.Lookup(code); ok {
		return lang.Name
	}
	return code
}
