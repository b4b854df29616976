package converter

import (
	"errors"
	"fmt"
	"strings"
)

// maxStderrExcerpt bounds how much tool output is carried into a diagnostic
const maxStderrExcerpt = 500

// ErrToolTimeout marks an external tool run that hit its deadline
var ErrToolTimeout = errors.New("conversion timed out")

// SourceNotFoundError is returned when the document to convert does not exist
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("Document %s does not exist", e.Path)
}

// InvalidParameterError represents a malformed caller argument
type InvalidParameterError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DestinationNotWriteableError is returned when the output location cannot be written
type DestinationNotWriteableError struct {
	Path string
	Err  error
}

func (e *DestinationNotWriteableError) Error() string {
	msg := fmt.Sprintf("destination %s is not writeable", e.Path)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *DestinationNotWriteableError) Unwrap() error {
	return e.Err
}

// MissingDependencyError reports an in-process capability that cannot run on this host
type MissingDependencyError struct {
	Name string
	Err  error
}

func (e *MissingDependencyError) Error() string {
	msg := fmt.Sprintf("%s is not available", e.Name)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}

// ExternalToolNotFoundError is recorded when a candidate binary cannot be located
type ExternalToolNotFoundError struct {
	Binary string
}

func (e *ExternalToolNotFoundError) Error() string {
	return fmt.Sprintf("%s: executable not found", e.Binary)
}

// ExternalToolFailedError is recorded when a tool exits non-zero, times out or cannot start
type ExternalToolFailedError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolFailedError) Error() string {
	var msg string
	switch {
	case e.Err != nil:
		msg = fmt.Sprintf("%s failed: %v", e.Binary, e.Err)
	default:
		msg = fmt.Sprintf("%s exited with code %d", e.Binary, e.ExitCode)
	}
	if stderr := excerpt(e.Stderr); stderr != "" {
		msg += fmt.Sprintf(" (stderr: %s)", stderr)
	}
	return msg
}

func (e *ExternalToolFailedError) Unwrap() error {
	return e.Err
}

// ExternalToolFalseSuccessError is recorded when a tool exits 0 without producing output
type ExternalToolFalseSuccessError struct {
	Binary   string
	Expected string
}

func (e *ExternalToolFalseSuccessError) Error() string {
	return fmt.Sprintf("%s reported success but no output file found at %s", e.Binary, e.Expected)
}

// UnsupportedConversionError is returned for format pairs without a strategy chain
type UnsupportedConversionError struct {
	From Format
	To   Format
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("conversion from %s to %s is not supported", e.From.Label(), e.To.Label())
}

// ConversionError wraps a failure inside an in-process converter
type ConversionError struct {
	OriginalError error
	Path          string
	Hint          string
}

func (e *ConversionError) Error() string {
	msg := e.Hint
	if msg == "" {
		msg = "conversion failed"
	}
	if e.OriginalError != nil {
		msg += fmt.Sprintf(": %v", e.OriginalError)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (file: %s)", e.Path)
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.OriginalError
}

// Attempt is one failed strategy or candidate inside a chain run
type Attempt struct {
	Strategy string
	Err      error
	Hint     string
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s: %v", a.Strategy, a.Err)
}

// ChainError aggregates every failed attempt of a strategy chain
type ChainError struct {
	Target   Format
	Attempts []Attempt
}

func (e *ChainError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Failed to convert document to %s using all available methods.", e.Target.Label())
	if len(e.Attempts) > 0 {
		parts := make([]string, len(e.Attempts))
		for i, a := range e.Attempts {
			parts[i] = a.String()
		}
		fmt.Fprintf(&sb, "\nRecorded errors: %s", strings.Join(parts, "; "))
	}
	if hints := e.Hints(); len(hints) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(hints, "\n"))
	}
	return sb.String()
}

// Unwrap exposes the individual attempt errors to errors.Is and errors.As
func (e *ChainError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Hints returns the distinct remediation hints of attempts that failed for lack of a dependency
func (e *ChainError) Hints() []string {
	seen := make(map[string]bool)
	var hints []string
	for _, a := range e.Attempts {
		if a.Hint == "" || seen[a.Hint] || !isMissingDependency(a.Err) {
			continue
		}
		seen[a.Hint] = true
		hints = append(hints, a.Hint)
	}
	return hints
}

func isMissingDependency(err error) bool {
	var notFound *ExternalToolNotFoundError
	var missing *MissingDependencyError
	return errors.As(err, &notFound) || errors.As(err, &missing)
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrExcerpt {
		s = s[:maxStderrExcerpt] + "..."
	}
	return s
}
