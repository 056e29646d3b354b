package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lingo/internal/tui"
)

type TuiCmd struct {
	flags  *Flags
	source string
	target string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Usage:       "initial source language in the TUI (auto to detect)",
			Sources:     cli.EnvVars("LINGO_SOURCE"),
			Value:       defaultSource,
			Local:       true,
			Destination: &cmd.source,
		},
		&cli.StringFlag{
			Name:        "target",
			Usage:       "initial target language in the TUI",
			Sources:     cli.EnvVars("LINGO_TARGET"),
			Value:       defaultTarget,
			Local:       true,
			Destination: &cmd.target,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	opts := tui.Options{
		Source:   cmd.source,
		Target:   cmd.target,
		Provider: cmd.flags.Config.Translation.Provider,
	}

	m := tui.New(ctx, cmd.flags.Service, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
