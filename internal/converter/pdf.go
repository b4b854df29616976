package converter

import (
	"context"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"
)

// PDFTextConverter extracts text from PDF files using pure Go
type PDFTextConverter struct {
	fs afero.Fs
}

// NewPDFTextConverter creates a pdf to txt converter
func NewPDFTextConverter(fsys afero.Fs) *PDFTextConverter {
	return &PDFTextConverter{fs: fsys}
}

func (c *PDFTextConverter) Name() string { return "ledongthuc/pdf" }

// Available always returns nil - pure Go has no external deps
func (c *PDFTextConverter) Available() error { return nil }

func (c *PDFTextConverter) Convert(_ context.Context, source, dest string) error {
	f, size, err := openSource(c.fs, source)
	if err != nil {
		return err
	}
	defer f.Close()

	reader, err := pdf.NewReader(f, size)
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to open PDF"}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to extract text from PDF"}
	}

	content, err := io.ReadAll(plain)
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to read PDF text"}
	}
	return writeOutput(c.fs, dest, content)
}

const (
	textPDFFontSize  = 10
	textPDFRowHeight = 5
	// textPDFWrap is the number of runes that fit on an A4 line at textPDFFontSize
	textPDFWrap = 95
)

// TextPDFConverter lays out a plain text file as an A4 PDF with maroto
type TextPDFConverter struct {
	fs afero.Fs
}

// NewTextPDFConverter creates a txt to pdf converter
func NewTextPDFConverter(fsys afero.Fs) *TextPDFConverter {
	return &TextPDFConverter{fs: fsys}
}

func (c *TextPDFConverter) Name() string { return "maroto" }

func (c *TextPDFConverter) Available() error { return nil }

func (c *TextPDFConverter) Convert(_ context.Context, source, dest string) error {
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithRightMargin(10).
		WithTopMargin(10).
		WithBottomMargin(10).
		Build()
	m := maroto.New(cfg)

	style := props.Text{Size: textPDFFontSize}
	for _, line := range wrapLines(normalizeNewlines(string(data)), textPDFWrap) {
		m.AddRow(textPDFRowHeight, col.New(12).Add(text.New(line, style)))
	}

	doc, err := m.Generate()
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to generate PDF"}
	}
	return writeOutput(c.fs, dest, doc.GetBytes())
}

// wrapLines splits content into lines no longer than width runes, breaking at spaces
// where possible. Tabs become four spaces.
func wrapLines(content string, width int) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		runes := []rune(strings.ReplaceAll(line, "\t", "    "))
		for len(runes) > width {
			cut := width
			for i := width; i > width/2; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
			out = append(out, strings.TrimRight(string(runes[:cut]), " "))
			runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
		}
		out = append(out, string(runes))
	}
	return out
}
