package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lingo/internal/lingo"
	"github.com/hay-kot/lingo/internal/speech"
)

type SpeechCmd struct {
	flags       *Flags
	opts        langOptions
	contentType string
}

// NewSpeechCmd creates a new speech command
func NewSpeechCmd(flags *Flags) *SpeechCmd {
	return &SpeechCmd{flags: flags}
}

// Register adds the speech command to the application
func (cmd *SpeechCmd) Register(app *cli.Command) *cli.Command {
	flags := cmd.opts.flags(defaultSource, "es")
	flags = append(flags, &cli.StringFlag{
		Name:        "content-type",
		Usage:       "audio content type (detected from the file extension when empty)",
		Destination: &cmd.contentType,
	})

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "speech",
		Usage:     "Transcribe a recording and translate it",
		UsageText: "lingo speech [options] <audio-file>",
		Description: `Sends the recording to the configured transcribers in order, then
translates the transcript. The --from language also selects the recognition
language.`,
		Flags:  flags,
		Action: cmd.run,
	})

	return app
}

func (cmd *SpeechCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one audio file")
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}

	contentType := cmd.contentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}

	source, target := cmd.opts.pair()
	res, err := cmd.flags.Service.TranslateSpeech(ctx, lingo.SpeechRequest{
		Audio:    speech.Audio{Data: data, ContentType: contentType},
		Source:   source,
		Target:   target,
		Provider: cmd.opts.provider,
		Save:     cmd.opts.save,
	})
	if err != nil {
		return fmt.Errorf("speech: %w", err)
	}

	return printResult(ctx, c.Root().Writer, res, cmd.opts.json)
}
