package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SCRATCH_PATH", filepath.Join(t.TempDir(), "scratch"))
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		convertFlags.from, convertFlags.to, convertFlags.output = "", "", ""
		toolsFlags.from, toolsFlags.to, toolsFlags.json = "", "", false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "notes.html")
	require.NoError(t, os.WriteFile(source, []byte("<h1>Notes</h1><p>First line.</p>"), 0o644))
	dest := filepath.Join(dir, "out", "notes")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))

	out, err := runRoot(t, "convert", source, "--to", "markdown", "--output", dest)
	require.NoError(t, err)

	assert.Contains(t, out, "Document successfully converted to Markdown via html-to-markdown: "+dest+".md")
	content, err := os.ReadFile(dest + ".md")
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Notes")
}

func TestConvertCommand_Errors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nothing.docx")
		_, err := runRoot(t, "convert", missing, "--to", "txt")
		require.Error(t, err)
		assert.Equal(t, "Document "+missing+" does not exist", err.Error())
	})

	t.Run("unknown target format", func(t *testing.T) {
		_, err := runRoot(t, "convert", "a.docx", "--to", "xlsx")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown document format")
	})

	t.Run("source without extension", func(t *testing.T) {
		_, err := runRoot(t, "convert", "README", "--to", "pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file has no extension")
	})
}

func TestToolsCommand(t *testing.T) {
	out, err := runRoot(t, "tools", "--from", "html", "--to", "md")
	require.NoError(t, err)
	assert.Contains(t, out, "Available conversions:")
	assert.Contains(t, out, "convert_html_to_markdown (html->md): available")

	out, err = runRoot(t, "tools", "--from", "txt", "--to", "docx", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"pair": "txt->docx"`)
	assert.Contains(t, out, `"available": true`)
}

func TestCreateLogger(t *testing.T) {
	logger := createLogger(cmdConfig{Format: "json", Level: "warn"})
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(t.Context(), -4))
	assert.True(t, logger.Enabled(t.Context(), 4))
}

func TestRootHelp(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "LibreOffice or docx2pdf")
	assert.NotContains(t, rootCmd.Long, "pandoc")
}
