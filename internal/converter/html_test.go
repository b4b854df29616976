package converter

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLTextConverter_Convert(t *testing.T) {
	fsys := afero.NewMemMapFs()
	converter := NewHTMLTextConverter(fsys)
	require.NoError(t, converter.Available())

	t.Run("article content", func(t *testing.T) {
		page := `<!DOCTYPE html>
<html>
<head><title>Release notes</title><style>p { color: red; }</style></head>
<body>
<article>
<h1>Release notes</h1>
<p>Version two adds document conversion between Word, Markdown and HTML files.</p>
<p>Every conversion reports the strategy that produced the output file.</p>
</article>
<script>console.log("tracking")</script>
</body>
</html>`
		require.NoError(t, afero.WriteFile(fsys, "/docs/notes.html", []byte(page), 0o644))

		err := converter.Convert(context.Background(), "/docs/notes.html", "/docs/notes.txt")
		require.NoError(t, err)

		out, err := afero.ReadFile(fsys, "/docs/notes.txt")
		require.NoError(t, err)
		assert.Contains(t, string(out), "Version two adds document conversion")
		assert.NotContains(t, string(out), "tracking")
		assert.True(t, strings.HasSuffix(string(out), "\n"))
	})

	t.Run("short page falls back to body text", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fsys, "/docs/short.html", []byte(`<html><body><p>Hello there</p></body></html>`), 0o644))

		require.NoError(t, converter.Convert(context.Background(), "/docs/short.html", "/docs/short.txt"))

		out, err := afero.ReadFile(fsys, "/docs/short.txt")
		require.NoError(t, err)
		assert.Contains(t, string(out), "Hello there")
	})

	t.Run("missing source", func(t *testing.T) {
		err := converter.Convert(context.Background(), "/docs/absent.html", "/docs/absent.txt")
		var convErr *ConversionError
		require.True(t, errors.As(err, &convErr))
		assert.Equal(t, "/docs/absent.html", convErr.Path)
	})
}

func TestHTMLMarkdownConverter_Convert(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/in/page.html", []byte(`<h1>Title</h1><p>Some <strong>bold</strong> text and a <a href="https://example.com">link</a>.</p><ul><li>one</li><li>two</li></ul>`), 0o644))

	err := NewHTMLMarkdownConverter(fsys).Convert(context.Background(), "/in/page.html", "/in/page.md")
	require.NoError(t, err)

	out, err := afero.ReadFile(fsys, "/in/page.md")
	require.NoError(t, err)
	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Title"))
	assert.Contains(t, md, "**bold**")
	assert.Contains(t, md, "[link](https://example.com)")
	assert.Contains(t, md, "- one")
	assert.Contains(t, md, "- two")
}

func TestMarkdownHTMLConverter_Convert(t *testing.T) {
	fsys := afero.NewMemMapFs()
	source := "# Heading\n\nA paragraph with *emphasis*.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	require.NoError(t, afero.WriteFile(fsys, "/in/readme.md", []byte(source), 0o644))

	err := NewMarkdownHTMLConverter(fsys).Convert(context.Background(), "/in/readme.md", "/in/readme.html")
	require.NoError(t, err)

	out, err := afero.ReadFile(fsys, "/in/readme.html")
	require.NoError(t, err)
	page := string(out)
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>readme</title>")
	assert.Contains(t, page, `<h1 id="heading">Heading</h1>`)
	assert.Contains(t, page, "<em>emphasis</em>")
	assert.Contains(t, page, "<table>")
}

func TestBrowserPDFConverter_Metadata(t *testing.T) {
	converter := NewBrowserPDFConverter(afero.NewMemMapFs(), nil)
	assert.Equal(t, "playwright chromium", converter.Name())
	assert.Contains(t, converter.Hint(), "playwright")

	// closing a browser that never started is a no-op
	require.NoError(t, converter.Close())
}

func TestTitleOf(t *testing.T) {
	assert.Equal(t, "report", titleOf(filepath.Join("a", "b", "report.md")))
	assert.Equal(t, "archive.tar", titleOf("archive.tar.gz"))
}
