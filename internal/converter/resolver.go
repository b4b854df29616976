package converter

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ResolvedOutput is the validated destination of a conversion
type ResolvedOutput struct {
	Path string
	Dir  string
}

// PathResolver normalizes and validates conversion destinations
type PathResolver struct {
	fs afero.Fs
}

// NewPathResolver creates a resolver over the given filesystem (OS filesystem when nil)
func NewPathResolver(fsys afero.Fs) *PathResolver {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &PathResolver{fs: fsys}
}

// CheckSource verifies that source exists and is a regular file
func (r *PathResolver) CheckSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return &InvalidParameterError{Field: "input_path", Reason: "must not be empty"}
	}
	if strings.Contains(source, "\x00") {
		return &InvalidParameterError{Field: "input_path", Value: source, Reason: "null bytes not allowed"}
	}
	info, err := r.fs.Stat(source)
	if err != nil || info.IsDir() {
		return &SourceNotFoundError{Path: source}
	}
	return nil
}

// Resolve computes the absolute destination for converting source into target.
// Without an output path the source base name is reused next to the source. An output
// path that lacks the target extension gets it appended, never replaced.
func (r *PathResolver) Resolve(source, output string, target Format) (ResolvedOutput, error) {
	if err := r.CheckSource(source); err != nil {
		return ResolvedOutput{}, err
	}

	dest := output
	if strings.TrimSpace(dest) == "" {
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		dest = filepath.Join(filepath.Dir(source), base+target.Extension())
	} else if !strings.EqualFold(filepath.Ext(dest), target.Extension()) {
		dest += target.Extension()
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return ResolvedOutput{}, &InvalidParameterError{Field: "output_path", Value: output, Reason: err.Error()}
	}

	resolved := ResolvedOutput{Path: abs, Dir: filepath.Dir(abs)}
	if err := r.fs.MkdirAll(resolved.Dir, 0o755); err != nil {
		return ResolvedOutput{}, &DestinationNotWriteableError{Path: resolved.Dir, Err: err}
	}
	if err := r.checkWriteable(resolved.Path); err != nil {
		return ResolvedOutput{}, err
	}
	return resolved, nil
}

// checkWriteable opens an existing file in append mode and releases it, or probes the
// directory with a throwaway file when the destination does not exist yet.
func (r *PathResolver) checkWriteable(path string) error {
	info, err := r.fs.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return &DestinationNotWriteableError{Path: path, Err: errors.New("destination is a directory")}
	case err == nil:
		f, err := r.fs.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return &DestinationNotWriteableError{Path: path, Err: err}
		}
		return f.Close()
	case errors.Is(err, fs.ErrNotExist):
		probe := filepath.Join(filepath.Dir(path), ".docbridge-probe-"+uuid.NewString())
		f, err := r.fs.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			return &DestinationNotWriteableError{Path: filepath.Dir(path), Err: err}
		}
		_ = f.Close()
		return r.fs.Remove(probe)
	default:
		return &DestinationNotWriteableError{Path: path, Err: err}
	}
}
