package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DefaultToolTimeout bounds a single external tool run
const DefaultToolTimeout = 60 * time.Second

// ExternalTool describes one logical converter reachable under several executable names
type ExternalTool struct {
	// Name is the logical tool name used in diagnostics, e.g. "LibreOffice"
	Name string
	// Candidates are tried in order; entries may be bare names or absolute paths
	Candidates []string
	// Args builds the command line for a candidate
	Args func(source, outDir, dest string) []string
	// Output returns where the tool writes its result
	Output func(source, outDir, dest string) string
	// Hint tells the user what to install when no candidate can run
	Hint    string
	Timeout time.Duration
}

// ProbeResult is the outcome of trying every candidate of an ExternalTool
type ProbeResult struct {
	Binary   string
	Failures []Attempt
}

// OK reports whether a candidate produced the destination file
func (r ProbeResult) OK() bool {
	return r.Binary != ""
}

// ToolProbe invokes external tools and decides whether they really produced output
type ToolProbe struct {
	exec    Executor
	fs      afero.Fs
	timeout time.Duration
	logger  *slog.Logger
}

// NewToolProbe creates a probe. A zero timeout selects DefaultToolTimeout.
func NewToolProbe(executor Executor, fsys afero.Fs, timeout time.Duration, logger *slog.Logger) *ToolProbe {
	if executor == nil {
		executor = NewOSExecutor()
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ToolProbe{exec: executor, fs: fsys, timeout: timeout, logger: logger}
}

// Invoke tries every candidate of tool in order until one leaves a new, non-empty file
// at the tool's output location, which is then moved to dest. Exit status alone never
// counts as success, and neither does a file that was already there before the run.
func (p *ToolProbe) Invoke(ctx context.Context, tool ExternalTool, source, dest string) ProbeResult {
	var result ProbeResult
	outDir := filepath.Dir(dest)

	for _, candidate := range tool.Candidates {
		label := fmt.Sprintf("%s (%s)", tool.Name, candidate)
		fail := func(err error) {
			result.Failures = append(result.Failures, Attempt{Strategy: label, Err: err, Hint: tool.Hint})
			p.logger.DebugContext(ctx, "external tool attempt failed",
				"tool", tool.Name,
				"candidate", candidate,
				"error", err,
			)
		}

		binary, err := p.exec.LookPath(candidate)
		if err != nil {
			fail(&ExternalToolNotFoundError{Binary: candidate})
			continue
		}

		produced := tool.Output(source, outDir, dest)
		before := p.snapshot(produced)

		res, err := p.run(ctx, tool, binary, tool.Args(source, outDir, dest))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = ErrToolTimeout
			}
			fail(&ExternalToolFailedError{Binary: candidate, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err})
			if ctx.Err() != nil {
				// the request itself is gone, further candidates cannot run either
				return result
			}
			continue
		}
		if res.ExitCode != 0 {
			fail(&ExternalToolFailedError{Binary: candidate, ExitCode: res.ExitCode, Stderr: res.Stderr})
			continue
		}

		if !p.producedOutput(produced, before) {
			fail(&ExternalToolFalseSuccessError{Binary: candidate, Expected: produced})
			continue
		}
		if err := p.move(produced, dest); err != nil {
			fail(&DestinationNotWriteableError{Path: dest, Err: err})
			continue
		}

		p.logger.InfoContext(ctx, "external tool conversion succeeded",
			"tool", tool.Name,
			"candidate", candidate,
			"output", dest,
		)
		result.Binary = candidate
		return result
	}
	return result
}

// fileState is what a tool's output location looked like before the tool ran
type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func (p *ToolProbe) snapshot(path string) fileState {
	info, err := p.fs.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
}

// producedOutput reports whether the run left a non-empty file at path that was not
// there, unchanged, before the run. A new empty file is removed.
func (p *ToolProbe) producedOutput(path string, before fileState) bool {
	after := p.snapshot(path)
	if !after.exists {
		return false
	}
	if before.exists && after.size == before.size && after.modTime.Equal(before.modTime) {
		return false
	}
	if after.size == 0 {
		_ = p.fs.Remove(path)
		return false
	}
	return true
}

func (p *ToolProbe) run(ctx context.Context, tool ExternalTool, binary string, args []string) (ExecResult, error) {
	timeout := tool.Timeout
	if p.timeout > 0 {
		timeout = p.timeout
	}
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.logger.DebugContext(ctx, "running external tool",
		"binary", binary,
		"args", strings.Join(args, " "),
		"timeout", timeout,
	)
	return p.exec.Run(runCtx, binary, args...)
}

// move renames produced onto dest, copying when a rename is not possible
func (p *ToolProbe) move(produced, dest string) error {
	if filepath.Clean(produced) == filepath.Clean(dest) {
		return nil
	}
	if err := p.fs.Rename(produced, dest); err == nil {
		return nil
	}
	data, err := afero.ReadFile(p.fs, produced)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(p.fs, dest, data, 0o644); err != nil {
		return err
	}
	return p.fs.Remove(produced)
}
