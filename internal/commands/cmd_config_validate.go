package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lingo/internal/core/config"
	"github.com/hay-kot/lingo/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate configuration file",
				UsageText: "lingo config validate [--format text|json]",
				Description: `Validates the configuration file and the card template, then reports which
translation, speech, document and account backends are usable with the
current credentials.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type reportError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// configReport is the outcome of a validation run.
type configReport struct {
	Valid    bool                       `json:"valid"`
	Backends map[string]string          `json:"backends"`
	Errors   []reportError              `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func newConfigReport(cfg *config.Config, configPath string) configReport {
	err := cfg.ValidateDeep(configPath)

	report := configReport{
		Valid:    err == nil,
		Backends: backendSummary(cfg),
		Warnings: cfg.Warnings(),
	}
	for _, fe := range fieldErrors(err) {
		report.Errors = append(report.Errors, reportError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return report
}

// backendSummary names the backend chosen for each feature.
func backendSummary(cfg *config.Config) map[string]string {
	transcribers := strings.Join(cfg.Speech.Transcribers, " → ")
	if transcribers == "" {
		transcribers = "none"
	}

	documents := "plaintext, readability, " + cfg.Document.PDFToTextPath
	if cfg.Credentials.OCRSpaceKey != "" {
		documents += ", ocrspace"
	}

	storage := cfg.Storage.Driver
	if cfg.Storage.Driver == config.DriverJSONFile {
		storage += " (" + cfg.StoreFile() + ")"
	}

	return map[string]string{
		"translation": cfg.Translation.Provider,
		"speech":      transcribers,
		"documents":   documents,
		"auth":        cfg.Auth.Provider,
		"storage":     storage,
		"history":     fmt.Sprintf("recent %d, notes %d", cfg.History.RecentLimit, cfg.History.NotesLimit),
	}
}

// fieldErrors flattens a validation error into criterio field errors.
func fieldErrors(err error) criterio.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return criterio.FieldErrors{{Err: err}}
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	report := newConfigReport(cmd.flags.Config, cmd.flags.ConfigPath)

	switch cmd.format {
	case "json":
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case "text", "":
		printReport(printer.Ctx(ctx), report)
	default:
		return fmt.Errorf("unknown format %q (want text or json)", cmd.format)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

var backendOrder = []string{"translation", "speech", "documents", "auth", "storage", "history"}

func printReport(p *printer.Printer, report configReport) {
	p.Section("Backends")
	for _, name := range backendOrder {
		p.CheckItem(name, report.Backends[name])
	}

	if len(report.Errors) > 0 {
		p.Printf("")
		p.Section("Errors")
		for _, e := range report.Errors {
			if e.Field != "" {
				p.FailItem(e.Field, e.Message)
			} else {
				p.FailItem(e.Message, "")
			}
		}
	}

	if len(report.Warnings) > 0 {
		p.Printf("")
		p.Section("Warnings")
		for _, w := range report.Warnings {
			label := w.Category
			if w.Item != "" {
				label += " " + w.Item
			}
			p.WarnItem(label, w.Message)
		}
	}

	p.Printf("")
	switch {
	case !report.Valid:
		p.Errorf("%d error(s), %d warning(s)", len(report.Errors), len(report.Warnings))
	case len(report.Warnings) > 0:
		p.Successf("Configuration is valid (%d warning(s))", len(report.Warnings))
	default:
		p.Successf("Configuration is valid")
	}
}
