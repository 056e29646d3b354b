package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/lingo/internal/core/history"
	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/printer"
	"github.com/hay-kot/lingo/internal/styles"
)

type HistoryCmd struct {
	flags     *Flags
	name      string
	partition history.Partition

	// Command-specific flags
	search string
	json   bool
	raw    bool
	yes    bool
}

// NewHistoryCmd creates the history command over the recent translations.
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags, name: "history", partition: history.Recent}
}

// NewNotesCmd creates the notes command over the saved translations.
func NewNotesCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags, name: "notes", partition: history.Notes}
}

// Register adds the command and its subcommands to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	what := "recent translations"
	if cmd.partition == history.Notes {
		what = "saved translations"
	}

	subcommands := []*cli.Command{
		{
			Name:      "ls",
			Usage:     "List " + what,
			UsageText: "lingo " + cmd.name + " ls [options]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "search",
					Aliases:     []string{"q"},
					Usage:       "only show records whose text matches this glob",
					Destination: &cmd.search,
				},
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "print records as JSON",
					Destination: &cmd.json,
				},
			},
			Action: cmd.runList,
		},
		{
			Name:      "show",
			Usage:     "Show one record",
			UsageText: "lingo " + cmd.name + " show <index|id>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "raw",
					Usage:       "print the markdown card without styling",
					Destination: &cmd.raw,
				},
			},
			Action: cmd.runShow,
		},
		{
			Name:      "rm",
			Usage:     "Delete records",
			UsageText: "lingo " + cmd.name + " rm <index|id>...",
			Action:    cmd.runRemove,
		},
		{
			Name:      "clear",
			Usage:     "Delete all " + what,
			UsageText: "lingo " + cmd.name + " clear [--yes]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "yes",
					Aliases:     []string{"y"},
					Usage:       "do not ask for confirmation",
					Destination: &cmd.yes,
				},
			},
			Action: cmd.runClear,
		},
	}

	if cmd.partition == history.Recent {
		subcommands = append(subcommands, &cli.Command{
			Name:      "save",
			Usage:     "Copy a recent translation into notes",
			UsageText: "lingo history save <index|id>",
			Action:    cmd.runSave,
		})
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  cmd.name,
		Usage: "View or manage " + what,
		Description: fmt.Sprintf(`View or manage the %s, newest first.

Records are addressed by their list index (1 is the newest) or by id.
Without a subcommand the records are listed.`, what),
		Commands: subcommands,
		Action:   cmd.runList,
	})

	return app
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	svc := cmd.flags.Service

	records := svc.History(ctx, cmd.partition)
	if cmd.search != "" {
		var err error
		records, err = svc.SearchHistory(ctx, cmd.partition, cmd.search)
		if err != nil {
			return err
		}
	}

	out := c.Root().Writer
	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		printer.Ctx(ctx).Infof("No %s", cmd.name)
		return nil
	}

	p := printer.New(out)
	width := p.Width(120) - 50
	for i, r := range records {
		p.RecordLine(i+1, r, width)
	}
	return nil
}

func (cmd *HistoryCmd) runShow(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected one record index or id")
	}

	r, err := cmd.resolve(ctx, c.Args().First())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	styled := !cmd.raw && printer.IsTerminal(out)
	card, err := renderCard(cmd.flags.Config.Templates.Card, r, printer.New(out).Width(80), styled)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, card)
	return err
}

func (cmd *HistoryCmd) runRemove(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one record index or id")
	}

	// Resolve everything first so indexes refer to the list as shown.
	ids := make([]string, 0, c.Args().Len())
	for _, ref := range c.Args().Slice() {
		r, err := cmd.resolve(ctx, ref)
		if err != nil {
			return err
		}
		ids = append(ids, r.ID)
	}

	p := printer.Ctx(ctx)
	for _, id := range ids {
		if _, err := cmd.flags.Service.DeleteHistory(ctx, cmd.partition, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		p.Successf("Deleted %s", id)
	}
	return nil
}

func (cmd *HistoryCmd) runClear(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if !cmd.yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to clear %s without --yes", cmd.name)
		}
		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete all %s?", cmd.name)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme())
		if err := form.Run(); err != nil {
			return err
		}
		if !confirmed {
			p.Infof("Cancelled")
			return nil
		}
	}

	if err := cmd.flags.Service.ClearHistory(ctx, cmd.partition); err != nil {
		return fmt.Errorf("clear %s: %w", cmd.name, err)
	}

	p.Successf("Cleared %s", cmd.name)
	return nil
}

func (cmd *HistoryCmd) runSave(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected one record index or id")
	}

	r, err := cmd.resolve(ctx, c.Args().First())
	if err != nil {
		return err
	}

	if _, err := cmd.flags.Service.SaveNote(ctx, r); err != nil {
		return fmt.Errorf("save note: %w", err)
	}

	printer.Ctx(ctx).Successf("Saved %s to notes", r.ID)
	return nil
}

func (cmd *HistoryCmd) resolve(ctx context.Context, ref string) (translation.Record, error) {
	r, err := resolveRecord(cmd.flags.Service.History(ctx, cmd.partition), ref)
	if errors.Is(err, history.ErrNotFound) {
		return r, fmt.Errorf("%s: no record %q", cmd.name, ref)
	}
	return r, err
}

// resolveRecord finds a record by 1-based index, full id or unique id prefix.
func resolveRecord(records []translation.Record, ref string) (translation.Record, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return translation.Record{}, history.ErrNotFound
	}

	if n, err := strconv.Atoi(ref); err == nil && len(ref) < 4 {
		if n < 1 || n > len(records) {
			return translation.Record{}, history.ErrNotFound
		}
		return records[n-1], nil
	}

	var matches []translation.Record
	for _, r := range records {
		if r.ID == ref {
			return r, nil
		}
		if strings.HasPrefix(r.ID, ref) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return translation.Record{}, history.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return translation.Record{}, fmt.Errorf("id prefix %q matches %d records", ref, len(matches))
	}
}
