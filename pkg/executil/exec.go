// Package executil runs external programs such as pdftotext.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs external commands.
type Executor interface {
	// Output executes a command and returns its stdout. On failure the error
	// carries whatever the command wrote to stderr.
	Output(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// LookPath reports the resolved path of an executable.
	LookPath(cmd string) (string, error)
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

func (e *RealExecutor) Output(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("exec %s: %w: %s", cmd, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("exec %s: %w", cmd, err)
	}
	return stdout.Bytes(), nil
}

func (e *RealExecutor) LookPath(cmd string) (string, error) {
	return exec.LookPath(cmd)
}
