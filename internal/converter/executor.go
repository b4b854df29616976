package converter

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// ExecResult holds the captured output of a finished process
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor locates and runs external programs.
// Run returns an error only when the process could not be started or was killed by the
// context; a non-zero exit is reported through ExecResult.ExitCode.
type Executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, path string, args ...string) (ExecResult, error)
}

// osExecutor runs programs with os/exec
type osExecutor struct{}

// NewOSExecutor returns the Executor backed by the host operating system
func NewOSExecutor() Executor {
	return osExecutor{}
}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, path string, args ...string) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}
