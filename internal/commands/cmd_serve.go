package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lingo/internal/httpapi"
)

type ServeCmd struct {
	flags *Flags
	addr  string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the translation API over HTTP",
		UsageText: "lingo serve [--addr host:port]",
		Description: `Starts a JSON API exposing translation and history under /api/v1.
Responses use JSend envelopes. Stops on SIGINT or SIGTERM.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr from the config)",
				Sources:     cli.EnvVars("LINGO_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	addr := cmd.addr
	if addr == "" {
		addr = cmd.flags.Config.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(cmd.flags.Service, log.Logger, httpapi.Options{Addr: addr})
	return srv.Start(ctx)
}
