package converter

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/spf13/afero"
)

// parseDocx opens and parses a Word document
func parseDocx(fsys afero.Fs, path string) (*docx.Docx, error) {
	f, size, err := openSource(fsys, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := docx.Parse(f, size)
	if err != nil {
		return nil, &ConversionError{OriginalError: err, Path: path, Hint: "failed to parse Word document"}
	}
	return doc, nil
}

// DocxTextConverter flattens a Word document into plain text
type DocxTextConverter struct {
	fs afero.Fs
}

// NewDocxTextConverter creates a docx to txt converter
func NewDocxTextConverter(fsys afero.Fs) *DocxTextConverter {
	return &DocxTextConverter{fs: fsys}
}

func (c *DocxTextConverter) Name() string { return "go-docx text extraction" }

func (c *DocxTextConverter) Available() error { return nil }

// Convert writes every paragraph and table row of source to dest, one per line
func (c *DocxTextConverter) Convert(_ context.Context, source, dest string) error {
	doc, err := parseDocx(c.fs, source)
	if err != nil {
		return err
	}
	return writeOutput(c.fs, dest, []byte(docxPlainText(doc)))
}

func docxPlainText(doc *docx.Docx) string {
	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, paragraphText(it))
		case *docx.Table:
			lines = append(lines, tableTextRows(it)...)
		}
	}
	return strings.Join(lines, "\n")
}

func tableTextRows(t *docx.Table) []string {
	var rows []string
	for _, row := range t.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			cells = append(cells, cellText(cell, " "))
		}
		rows = append(rows, strings.Join(cells, "\t"))
	}
	return rows
}

func cellText(cell *docx.WTableCell, sep string) string {
	parts := make([]string, 0, len(cell.Paragraphs))
	for _, p := range cell.Paragraphs {
		if text := paragraphText(p); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, sep)
}

func paragraphText(p *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			sb.WriteString(runText(c))
		case *docx.Hyperlink:
			sb.WriteString(hyperlinkText(c))
		}
	}
	return sb.String()
}

func runText(r *docx.Run) string {
	var sb strings.Builder
	for _, child := range r.Children {
		switch c := child.(type) {
		case *docx.Text:
			sb.WriteString(c.Text)
		case *docx.Tab:
			sb.WriteByte('\t')
		case *docx.BarterRabbet:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hyperlinkText(h *docx.Hyperlink) string {
	if text := runText(&h.Run); text != "" {
		return text
	}
	return h.Run.InstrText
}

// DocxHTMLConverter renders a Word document as an HTML page
type DocxHTMLConverter struct {
	fs afero.Fs
}

// NewDocxHTMLConverter creates a docx to html converter
func NewDocxHTMLConverter(fsys afero.Fs) *DocxHTMLConverter {
	return &DocxHTMLConverter{fs: fsys}
}

func (c *DocxHTMLConverter) Name() string { return "go-docx HTML rendering" }

func (c *DocxHTMLConverter) Available() error { return nil }

func (c *DocxHTMLConverter) Convert(_ context.Context, source, dest string) error {
	doc, err := parseDocx(c.fs, source)
	if err != nil {
		return err
	}
	return writeOutput(c.fs, dest, []byte(wrapHTMLDocument(titleOf(source), docxBodyHTML(doc))))
}

// docxBodyHTML renders headings, paragraphs, lists and tables. Consecutive numbered
// paragraphs are grouped into one list.
func docxBodyHTML(doc *docx.Docx) string {
	var sb strings.Builder
	inList := false
	closeList := func() {
		if inList {
			sb.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			inner := paragraphHTML(doc, it)
			if isListParagraph(it) {
				if !inList {
					sb.WriteString("<ul>\n")
					inList = true
				}
				fmt.Fprintf(&sb, "<li>%s</li>\n", inner)
				continue
			}
			closeList()
			if strings.TrimSpace(inner) == "" {
				continue
			}
			if level := headingLevel(it); level > 0 {
				// heading runs usually carry bold and size overrides, the tag says enough
				fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", level, html.EscapeString(paragraphText(it)), level)
			} else {
				fmt.Fprintf(&sb, "<p>%s</p>\n", inner)
			}
		case *docx.Table:
			closeList()
			sb.WriteString(tableHTML(doc, it))
		}
	}
	closeList()
	return sb.String()
}

func paragraphHTML(doc *docx.Docx, p *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			sb.WriteString(runHTML(c))
		case *docx.Hyperlink:
			text := html.EscapeString(hyperlinkText(c))
			target, err := doc.ReferTarget(c.ID)
			if err != nil || target == "" {
				sb.WriteString(text)
				continue
			}
			fmt.Fprintf(&sb, `<a href="%s">%s</a>`, html.EscapeString(target), text)
		}
	}
	return sb.String()
}

func runHTML(r *docx.Run) string {
	text := html.EscapeString(runText(r))
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", "<br>")
	if r.RunProperties != nil {
		if r.RunProperties.Italic != nil {
			text = "<em>" + text + "</em>"
		}
		if r.RunProperties.Bold != nil {
			text = "<strong>" + text + "</strong>"
		}
	}
	return text
}

func tableHTML(doc *docx.Docx, t *docx.Table) string {
	var sb strings.Builder
	sb.WriteString("<table>\n")
	for i, row := range t.TableRows {
		cellTag := "td"
		if i == 0 {
			cellTag = "th"
		}
		sb.WriteString("<tr>")
		for _, cell := range row.TableCells {
			parts := make([]string, 0, len(cell.Paragraphs))
			for _, p := range cell.Paragraphs {
				if inner := paragraphHTML(doc, p); inner != "" {
					parts = append(parts, inner)
				}
			}
			fmt.Fprintf(&sb, "<%s>%s</%s>", cellTag, strings.Join(parts, "<br>"), cellTag)
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
	return sb.String()
}

// headingLevel maps Word heading styles ("Heading2", "heading 2", "Title") to 1..6
func headingLevel(p *docx.Paragraph) int {
	if p.Properties == nil || p.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(p.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 {
		return 0
	}
	return min(level, 6)
}

func isListParagraph(p *docx.Paragraph) bool {
	return p.Properties != nil && p.Properties.NumProperties != nil
}

// wrapHTMLDocument produces a standalone UTF-8 HTML page around body
func wrapHTMLDocument(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body)
}
