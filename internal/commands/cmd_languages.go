package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

type LanguagesCmd struct {
	flags *Flags
	json  bool
}

// NewLanguagesCmd creates a new languages command
func NewLanguagesCmd(flags *Flags) *LanguagesCmd {
	return &LanguagesCmd{flags: flags}
}

// Register adds the languages command to the application
func (cmd *LanguagesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "languages",
		Aliases:   []string{"langs"},
		Usage:     "List supported languages and providers",
		UsageText: "lingo languages [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print languages as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LanguagesCmd) run(_ context.Context, c *cli.Command) error {
	svc := cmd.flags.Service
	out := c.Root().Writer

	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(svc.Languages())
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tNAME\tNATIVE")
	for _, l := range svc.Languages() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", l.Code, l.Name, l.Native)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nProviders: %v (default %s)\n", svc.ProviderNames(), cmd.flags.Config.Translation.Provider)
	return err
}
