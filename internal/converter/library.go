package converter

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// Library is an in-process converter between two formats.
// Available reports whether the backing capability can run on this host; callers check
// it before Convert so a missing capability becomes a MissingDependencyError instead of
// a crash.
type Library interface {
	Name() string
	Available() error
	Convert(ctx context.Context, source, dest string) error
}

// readSource loads the whole source document
func readSource(fsys afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &ConversionError{OriginalError: err, Path: path, Hint: "failed to read source"}
	}
	return data, nil
}

// openSource opens the source for random access, as zip and OLE readers require
func openSource(fsys afero.Fs, path string) (afero.File, int64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, 0, &ConversionError{OriginalError: err, Path: path, Hint: "failed to open source"}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, &ConversionError{OriginalError: err, Path: path, Hint: "failed to stat source"}
	}
	return f, info.Size(), nil
}

// writeOutput writes converted content, replacing any existing file
func writeOutput(fsys afero.Fs, path string, data []byte) error {
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return &DestinationNotWriteableError{Path: path, Err: err}
	}
	return nil
}

// writeOutputFrom streams w into path, replacing any existing file
func writeOutputFrom(fsys afero.Fs, path string, w io.WriterTo) error {
	f, err := fsys.Create(path)
	if err != nil {
		return &DestinationNotWriteableError{Path: path, Err: err}
	}
	if _, err := w.WriteTo(f); err != nil {
		_ = f.Close()
		return &ConversionError{OriginalError: err, Path: path, Hint: "failed to write output"}
	}
	if err := f.Close(); err != nil {
		return &DestinationNotWriteableError{Path: path, Err: err}
	}
	return nil
}

// normalizeNewlines converts CRLF and CR line endings to LF
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
