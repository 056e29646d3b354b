package executil

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// RecordedCommand is one invocation seen by a RecordingExecutor.
type RecordedCommand struct {
	Cmd  string
	Args []string
}

// RecordingExecutor is an Executor for tests. Nothing is executed; output,
// failures and missing binaries are scripted per command name.
type RecordingExecutor struct {
	Outputs map[string][]byte
	Errors  map[string]error
	Missing map[string]bool

	mu       sync.Mutex
	Commands []RecordedCommand
}

func (e *RecordingExecutor) Output(_ context.Context, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Cmd: cmd, Args: slices.Clone(args)})
	return e.Outputs[cmd], e.Errors[cmd]
}

func (e *RecordingExecutor) LookPath(cmd string) (string, error) {
	if e.Missing[cmd] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", cmd)
	}
	return "/usr/bin/" + cmd, nil
}

// Reset forgets recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	e.Commands = nil
	e.mu.Unlock()
}
