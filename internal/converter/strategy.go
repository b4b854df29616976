package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// Strategy is one way of producing dest from source.
// Run returns the name of what produced the output, or the failed attempts.
type Strategy interface {
	Name() string
	Run(ctx context.Context, d *Dispatcher, source, dest string) (string, []Attempt)
}

// LibraryStrategy runs an in-process converter
type LibraryStrategy struct {
	Library Library
}

func (s LibraryStrategy) Name() string {
	return s.Library.Name()
}

func (s LibraryStrategy) Run(ctx context.Context, _ *Dispatcher, source, dest string) (string, []Attempt) {
	if err := s.Library.Available(); err != nil {
		attempt := Attempt{Strategy: s.Name(), Err: asMissingDependency(s.Name(), err)}
		if h, ok := s.Library.(interface{ Hint() string }); ok {
			attempt.Hint = h.Hint()
		}
		return "", []Attempt{attempt}
	}
	if err := s.Library.Convert(ctx, source, dest); err != nil {
		return "", []Attempt{{Strategy: s.Name(), Err: err}}
	}
	return s.Name(), nil
}

// ToolStrategy runs an external tool through the dispatcher's probe. Every candidate
// binary is its own attempt.
type ToolStrategy struct {
	Tool ExternalTool
}

func (s ToolStrategy) Name() string {
	return s.Tool.Name
}

func (s ToolStrategy) Run(ctx context.Context, d *Dispatcher, source, dest string) (string, []Attempt) {
	result := d.probe.Invoke(ctx, s.Tool, source, dest)
	if !result.OK() {
		return "", result.Failures
	}
	return fmt.Sprintf("%s (%s)", s.Tool.Name, result.Binary), nil
}

// PipelineStrategy converts through an intermediate format: First writes a scratch file
// of format Via, Second converts that file into dest. The scratch file is removed
// whatever the outcome.
type PipelineStrategy struct {
	Via    Format
	First  []Strategy
	Second []Strategy
}

func (s PipelineStrategy) Name() string {
	return fmt.Sprintf("pipeline via %s", s.Via.Label())
}

func (s PipelineStrategy) Run(ctx context.Context, d *Dispatcher, source, dest string) (string, []Attempt) {
	scratch, err := d.scratchPath(dest, s.Via)
	if err != nil {
		return "", []Attempt{{Strategy: s.Name(), Err: err}}
	}
	defer d.removeScratch(ctx, scratch)

	firstVia, failures := d.runChain(ctx, s.First, source, scratch)
	if firstVia == "" {
		return "", prefixAttempts(fmt.Sprintf("to %s", s.Via.Label()), failures)
	}
	secondVia, failures := d.runChain(ctx, s.Second, scratch, dest)
	if secondVia == "" {
		return "", prefixAttempts(fmt.Sprintf("from %s", s.Via.Label()), failures)
	}
	return fmt.Sprintf("%s then %s", firstVia, secondVia), nil
}

// ScratchSpace hands out paths for intermediate files
type ScratchSpace interface {
	TempPath(ext string) (string, error)
}

// scratchPath returns an intermediate file path from the scratch space, or a hidden
// uuid-named file next to dest when none is configured
func (d *Dispatcher) scratchPath(dest string, via Format) (string, error) {
	if d.scratch != nil {
		return d.scratch.TempPath(via.Extension())
	}
	return filepath.Join(filepath.Dir(dest), ".docbridge-"+uuid.NewString()+via.Extension()), nil
}

func (d *Dispatcher) removeScratch(ctx context.Context, path string) {
	if _, err := d.fs.Stat(path); err != nil {
		return
	}
	if err := d.fs.Remove(path); err != nil {
		d.logger.WarnContext(ctx, "failed to remove intermediate file",
			"error", err,
			"path", path,
		)
	}
}

func prefixAttempts(prefix string, attempts []Attempt) []Attempt {
	out := make([]Attempt, len(attempts))
	for i, a := range attempts {
		a.Strategy = prefix + " " + a.Strategy
		out[i] = a
	}
	return out
}

func asMissingDependency(name string, err error) error {
	var missing *MissingDependencyError
	if errors.As(err, &missing) {
		return err
	}
	return &MissingDependencyError{Name: name, Err: err}
}
