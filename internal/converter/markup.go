package converter

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// newMarkdownParser returns the goldmark instance shared by the markdown converters
func newMarkdownParser() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// htmlToMarkdown converts an HTML fragment or page into GitHub flavored markdown
func htmlToMarkdown(src string) (string, error) {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		CodeBlockStyle:   "fenced",
		BulletListMarker: "-",
	})
	conv.Use(plugin.GitHubFlavored())
	out, err := conv.ConvertString(src)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out) + "\n", nil
}

func titleOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// HTMLMarkdownConverter converts HTML to markdown
type HTMLMarkdownConverter struct {
	fs afero.Fs
}

// NewHTMLMarkdownConverter creates an html to md converter
func NewHTMLMarkdownConverter(fsys afero.Fs) *HTMLMarkdownConverter {
	return &HTMLMarkdownConverter{fs: fsys}
}

func (c *HTMLMarkdownConverter) Name() string { return "html-to-markdown" }

func (c *HTMLMarkdownConverter) Available() error { return nil }

func (c *HTMLMarkdownConverter) Convert(_ context.Context, source, dest string) error {
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}
	out, err := htmlToMarkdown(string(data))
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to convert HTML to markdown"}
	}
	return writeOutput(c.fs, dest, []byte(out))
}

// MarkdownHTMLConverter renders markdown as a standalone HTML page
type MarkdownHTMLConverter struct {
	fs       afero.Fs
	markdown goldmark.Markdown
}

// NewMarkdownHTMLConverter creates an md to html converter
func NewMarkdownHTMLConverter(fsys afero.Fs) *MarkdownHTMLConverter {
	return &MarkdownHTMLConverter{fs: fsys, markdown: newMarkdownParser()}
}

func (c *MarkdownHTMLConverter) Name() string { return "goldmark" }

func (c *MarkdownHTMLConverter) Available() error { return nil }

func (c *MarkdownHTMLConverter) Convert(_ context.Context, source, dest string) error {
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	if err := c.markdown.Convert(data, &body); err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to render markdown"}
	}
	return writeOutput(c.fs, dest, []byte(wrapHTMLDocument(titleOf(source), body.String())))
}

// DocxMarkdownConverter goes from Word to markdown through the HTML rendering
type DocxMarkdownConverter struct {
	fs afero.Fs
}

// NewDocxMarkdownConverter creates a docx to md converter
func NewDocxMarkdownConverter(fsys afero.Fs) *DocxMarkdownConverter {
	return &DocxMarkdownConverter{fs: fsys}
}

func (c *DocxMarkdownConverter) Name() string { return "go-docx + html-to-markdown" }

func (c *DocxMarkdownConverter) Available() error { return nil }

func (c *DocxMarkdownConverter) Convert(_ context.Context, source, dest string) error {
	doc, err := parseDocx(c.fs, source)
	if err != nil {
		return err
	}
	out, err := htmlToMarkdown(docxBodyHTML(doc))
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to convert document HTML to markdown"}
	}
	return writeOutput(c.fs, dest, []byte(out))
}
