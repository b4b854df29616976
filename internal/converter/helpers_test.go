package converter

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/require"
)

// fakeExecutor resolves only the binaries in installed and delegates runs to run
type fakeExecutor struct {
	installed map[string]bool
	run       func(ctx context.Context, binary string, args []string) (ExecResult, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.installed[file] {
		return file, nil
	}
	return "", exec.ErrNotFound
}

func (f *fakeExecutor) Run(ctx context.Context, path string, args ...string) (ExecResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	if f.run == nil {
		return ExecResult{}, nil
	}
	return f.run(ctx, path, args)
}

func (f *fakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// officeOutput emulates a headless office run: it writes <outdir>/<base>.<ext>
func officeOutput(t *testing.T, args []string, content string) {
	t.Helper()
	require.GreaterOrEqual(t, len(args), 6)
	ext := args[2]
	outDir := args[4]
	source := args[5]
	base := filepath.Base(source)
	base = base[:len(base)-len(filepath.Ext(base))]
	require.NoError(t, os.WriteFile(filepath.Join(outDir, base+"."+ext), []byte(content), 0o644))
}

// writeDocxFile stores a Word document whose paragraphs are the given lines
func writeDocxFile(t *testing.T, path string, paragraphs ...string) {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	for _, text := range paragraphs {
		doc.AddParagraph().AddText(text)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = doc.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

// failingLibrary is a Library that is never available
type failingLibrary struct {
	name string
	err  error
}

func (l failingLibrary) Name() string { return l.name }

func (l failingLibrary) Available() error { return l.err }

func (l failingLibrary) Convert(context.Context, string, string) error { return l.err }

// writingLibrary writes fixed content to dest
type writingLibrary struct {
	content string
	sources []string
}

func (l *writingLibrary) Name() string { return "test writer" }

func (l *writingLibrary) Available() error { return nil }

func (l *writingLibrary) Convert(_ context.Context, source, dest string) error {
	l.sources = append(l.sources, source)
	return os.WriteFile(dest, []byte(l.content), 0o644)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
