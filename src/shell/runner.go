// Package shell abstracts subprocess execution so build and toolchain code
// can be exercised in tests without a real cargo or rustup installation.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Command describes one subprocess invocation. Env is the complete set of
// extra variables for this invocation only; it is layered over the parent
// environment and never mutates ambient process state.
type Command struct {
	Dir  string
	Env  []string
	Name string
	Args []string
}

// Result captures the outcome of a finished subprocess.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	line := c.Name
	for _, a := range c.Args {
		line += " " + a
	}
	return line
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by the operating system.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and waits for it to finish. A non-zero exit is
// returned as an error alongside the captured output.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Env = append(os.Environ(), cmd.Env...)

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("%s exited with code %d", cmd.String(), result.ExitCode)
	}
	if err != nil {
		return result, fmt.Errorf("running %s: %w", cmd.String(), err)
	}
	return result, nil
}
