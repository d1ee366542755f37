// Package executil abstracts external command execution so callers can
// be tested without spawning processes.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Executor runs an external command and returns its stdout.
type Executor interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealExecutor runs commands on the host.
type RealExecutor struct{}

// Output runs the command and returns stdout. On a non-zero exit the
// error includes trailing stderr output for diagnostics.
func (RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if len(msg) > 512 {
			msg = msg[len(msg)-512:]
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return stdout.Bytes(), nil
}

// FakeExecutor returns canned output, recording each invocation.
// Intended for tests.
type FakeExecutor struct {
	Out   []byte
	Err   error
	Calls [][]string
}

func (f *FakeExecutor) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.Calls = append(f.Calls, append([]string{name}, args...))
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Out, nil
}
