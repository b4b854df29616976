package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const codeFont = "Courier New"

// headingSizes are run sizes in half points, indexed by heading level
var headingSizes = map[int]string{1: "32", 2: "28", 3: "26", 4: "24", 5: "22", 6: "22"}

func newDocx() *docx.Docx {
	return docx.New().WithDefaultTheme()
}

// writeLines writes one paragraph per line of content
func writeLines(fsys afero.Fs, dest, content string) error {
	f := newDocx()
	for _, line := range strings.Split(normalizeNewlines(content), "\n") {
		p := f.AddParagraph()
		if line != "" {
			p.AddText(line)
		}
	}
	return writeOutputFrom(fsys, dest, f)
}

// TextDocxConverter turns each line of a text file into a Word paragraph
type TextDocxConverter struct {
	fs afero.Fs
}

// NewTextDocxConverter creates a txt to docx converter
func NewTextDocxConverter(fsys afero.Fs) *TextDocxConverter {
	return &TextDocxConverter{fs: fsys}
}

func (c *TextDocxConverter) Name() string { return "go-docx writer" }

func (c *TextDocxConverter) Available() error { return nil }

func (c *TextDocxConverter) Convert(_ context.Context, source, dest string) error {
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}
	return writeLines(c.fs, dest, strings.TrimRight(string(data), "\r\n"))
}

// MarkdownDocxConverter builds a Word document from the markdown syntax tree
type MarkdownDocxConverter struct {
	fs afero.Fs
}

// NewMarkdownDocxConverter creates an md to docx converter
func NewMarkdownDocxConverter(fsys afero.Fs) *MarkdownDocxConverter {
	return &MarkdownDocxConverter{fs: fsys}
}

func (c *MarkdownDocxConverter) Name() string { return "goldmark + go-docx" }

func (c *MarkdownDocxConverter) Available() error { return nil }

func (c *MarkdownDocxConverter) Convert(_ context.Context, source, dest string) error {
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}
	return writeOutputFrom(c.fs, dest, markdownToDocx(data))
}

// HTMLDocxConverter converts HTML to markdown first and then writes it as Word
type HTMLDocxConverter struct {
	fs afero.Fs
}

// NewHTMLDocxConverter creates an html to docx converter
func NewHTMLDocxConverter(fsys afero.Fs) *HTMLDocxConverter {
	return &HTMLDocxConverter{fs: fsys}
}

func (c *HTMLDocxConverter) Name() string { return "html-to-markdown + go-docx" }

func (c *HTMLDocxConverter) Available() error { return nil }

func (c *HTMLDocxConverter) Convert(_ context.Context, source, dest string) error {
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}
	markdown, err := htmlToMarkdown(string(data))
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to convert HTML to markdown"}
	}
	return writeOutputFrom(c.fs, dest, markdownToDocx([]byte(markdown)))
}

// markdownToDocx walks the block structure of src and emits Word paragraphs and tables
func markdownToDocx(src []byte) *docx.Docx {
	w := &docxWriter{doc: newDocx(), src: src}
	root := newMarkdownParser().Parser().Parse(text.NewReader(src))
	w.blocks(root, 0)
	return w.doc
}

type docxWriter struct {
	doc *docx.Docx
	src []byte
}

// runStyle is the inline formatting in effect while walking emphasis nodes
type runStyle struct {
	bold   bool
	italic bool
	code   bool
}

func (w *docxWriter) blocks(parent ast.Node, depth int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, depth)
	}
}

func (w *docxWriter) block(n ast.Node, depth int) {
	switch b := n.(type) {
	case *ast.Heading:
		p := w.doc.AddParagraph().Style(fmt.Sprintf("Heading%d", b.Level))
		w.inlines(p, b, runStyle{bold: true})
		for _, child := range p.Children {
			if run, ok := child.(*docx.Run); ok {
				run.Size(headingSizes[b.Level])
			}
		}
	case *ast.Paragraph, *ast.TextBlock:
		w.inlines(w.doc.AddParagraph(), b, runStyle{})
	case *ast.List:
		w.list(b, depth)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		p := w.doc.AddParagraph()
		code := strings.TrimRight(w.linesOf(b), "\n")
		if code != "" {
			p.AddText(code).Font(codeFont, codeFont, codeFont, "")
		}
	case *ast.Blockquote:
		w.blocks(b, depth)
	case *ast.ThematicBreak:
		w.doc.AddParagraph()
	case *extast.Table:
		w.table(b)
	}
}

func (w *docxWriter) list(l *ast.List, depth int) {
	index := l.Start
	if index == 0 {
		index = 1
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				p := w.doc.AddParagraph()
				prefix := strings.Repeat("  ", depth)
				if first {
					prefix += marker
				} else {
					prefix += "  "
				}
				p.AddText(prefix)
				w.inlines(p, c, runStyle{})
				first = false
			case *ast.List:
				w.list(c, depth+1)
			default:
				w.block(c, depth+1)
			}
		}
	}
}

func (w *docxWriter) table(t *extast.Table) {
	var rows [][]ast.Node
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []ast.Node
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, cell)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	tbl := w.doc.AddTable(len(rows), len(rows[0]), 0, nil)
	for i, cells := range rows {
		for j, cell := range cells {
			if j >= len(tbl.TableRows[i].TableCells) {
				break
			}
			p := tbl.TableRows[i].TableCells[j].AddParagraph()
			w.inlines(p, cell, runStyle{bold: i == 0})
		}
	}
}

func (w *docxWriter) inlines(p *docx.Paragraph, parent ast.Node, style runStyle) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch in := n.(type) {
		case *ast.Text:
			value := string(in.Value(w.src))
			if in.HardLineBreak() {
				value += "\n"
			} else if in.SoftLineBreak() {
				value += " "
			}
			w.text(p, value, style)
		case *ast.String:
			w.text(p, string(in.Value), style)
		case *ast.Emphasis:
			inner := style
			if in.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			w.inlines(p, in, inner)
		case *ast.CodeSpan:
			inner := style
			inner.code = true
			w.inlines(p, in, inner)
		case *ast.Link:
			label := w.plain(in)
			if label == "" {
				label = string(in.Destination)
			}
			p.AddLink(label, string(in.Destination))
		case *ast.AutoLink:
			p.AddLink(string(in.Label(w.src)), string(in.URL(w.src)))
		case *ast.Image:
			w.text(p, w.plain(in), style)
		default:
			w.inlines(p, in, style)
		}
	}
}

func (w *docxWriter) text(p *docx.Paragraph, value string, style runStyle) {
	if value == "" {
		return
	}
	run := p.AddText(value)
	if style.bold {
		run.Bold()
	}
	if style.italic {
		run.Italic()
	}
	if style.code {
		run.Font(codeFont, codeFont, codeFont, "")
	}
}

// plain collects the literal text below n
func (w *docxWriter) plain(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			sb.Write(t.Value(w.src))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func (w *docxWriter) linesOf(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(w.src))
	}
	return sb.String()
}
