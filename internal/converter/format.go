package converter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a document format by its canonical extension (without the dot)
type Format string

const (
	FormatDOCX     Format = "docx"
	FormatDOC      Format = "doc"
	FormatPDF      Format = "pdf"
	FormatTXT      Format = "txt"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatRTF      Format = "rtf"
	FormatODT      Format = "odt"
)

// Formats lists every format the dispatcher knows about
var Formats = []Format{
	FormatDOCX, FormatDOC, FormatPDF, FormatTXT,
	FormatHTML, FormatMarkdown, FormatRTF, FormatODT,
}

var formatAliases = map[string]Format{
	"docx":     FormatDOCX,
	"doc":      FormatDOC,
	"pdf":      FormatPDF,
	"txt":      FormatTXT,
	"text":     FormatTXT,
	"html":     FormatHTML,
	"htm":      FormatHTML,
	"md":       FormatMarkdown,
	"markdown": FormatMarkdown,
	"rtf":      FormatRTF,
	"odt":      FormatODT,
}

// Extension returns the canonical file extension including the leading dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Label returns the upper-case name used in status messages
func (f Format) Label() string {
	if f == FormatMarkdown {
		return "Markdown"
	}
	return strings.ToUpper(string(f))
}

// ParseFormat parses a user supplied format name such as "markdown", ".HTM" or "pdf"
func ParseFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	return "", &InvalidParameterError{
		Field:  "format",
		Value:  name,
		Reason: "unknown document format",
	}
}

// FormatOf infers the format of a file from its extension
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", &InvalidParameterError{
			Field:  "path",
			Value:  path,
			Reason: "file has no extension",
		}
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", fmt.Errorf("infer format of %s: %w", path, err)
	}
	return f, nil
}
