package mcp

import (
	"github.com/kfreiman/docbridge/internal/converter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerInstructions contains the MCP server instructions for clients
const ServerInstructions = `DocBridge Server - document format conversion

Converts documents between Word (docx, doc), PDF, plain text, HTML, Markdown, RTF and
ODT. Every conversion tries an ordered list of strategies (in-process libraries and
external tools such as LibreOffice) and stops at the first one that really produced the
output file.

## Conversion tools

All conversion tools take the same parameters:
- input_path: Path of the document to convert (required)
- output_path: Destination path (optional). Defaults to the input name with the target
  extension, next to the input. The target extension is appended when missing.

Example: {"input_path": "/docs/report.docx", "output_path": "/out/report.pdf"}

The result is a status text:
- "Document successfully converted to PDF via <strategy>: <absolute path>"
- "Document <path> does not exist"
- "Failed to convert document to PDF using all available methods." followed by the
  recorded error of every attempted strategy and installation hints

Word tools (source is .docx): convert_to_pdf, convert_to_txt, convert_to_html,
convert_to_markdown, convert_to_rtf, convert_to_odt, convert_to_doc.

Other pairs: convert_html_to_markdown, convert_markdown_to_html, convert_html_to_pdf,
convert_markdown_to_pdf, convert_html_to_txt, convert_pdf_to_txt, convert_rtf_to_docx,
convert_odt_to_docx, convert_doc_to_docx, convert_txt_to_docx, convert_markdown_to_docx,
convert_html_to_docx, convert_txt_to_pdf, convert_rtf_to_pdf, convert_odt_to_pdf,
convert_doc_to_pdf.

## Diagnostics

### list_converters
Reports, for every supported pair, which strategies can run on this host.
Parameters:
- from: Optional source format filter (e.g. "docx")
- to: Optional target format filter (e.g. "pdf")

### cleanup_scratch
Removes intermediate files older than a TTL from the scratch directory.
Parameters:
- ttl: Time to live (e.g., "1h" or 2 for hours). Uses the configured TTL if omitted.
`

// ConversionTool binds an MCP tool name to a format pair
type ConversionTool struct {
	Name        string
	From        converter.Format
	To          converter.Format
	Description string
}

// ConversionTools is the catalogue of conversion tools exposed by the server
var ConversionTools = []ConversionTool{
	{"convert_to_pdf", converter.FormatDOCX, converter.FormatPDF, "Convert a Word document (.docx) to PDF."},
	{"convert_to_txt", converter.FormatDOCX, converter.FormatTXT, "Extract the text of a Word document (.docx) into a plain text file."},
	{"convert_to_html", converter.FormatDOCX, converter.FormatHTML, "Convert a Word document (.docx) to an HTML page."},
	{"convert_to_markdown", converter.FormatDOCX, converter.FormatMarkdown, "Convert a Word document (.docx) to Markdown."},
	{"convert_to_rtf", converter.FormatDOCX, converter.FormatRTF, "Convert a Word document (.docx) to RTF. Requires LibreOffice."},
	{"convert_to_odt", converter.FormatDOCX, converter.FormatODT, "Convert a Word document (.docx) to OpenDocument Text. Requires LibreOffice."},
	{"convert_to_doc", converter.FormatDOCX, converter.FormatDOC, "Convert a Word document (.docx) to the legacy Word 97-2003 format. Requires LibreOffice."},

	{"convert_html_to_markdown", converter.FormatHTML, converter.FormatMarkdown, "Convert an HTML file to Markdown."},
	{"convert_markdown_to_html", converter.FormatMarkdown, converter.FormatHTML, "Render a Markdown file as a standalone HTML page."},
	{"convert_html_to_pdf", converter.FormatHTML, converter.FormatPDF, "Convert an HTML file to PDF with LibreOffice or headless Chromium."},
	{"convert_markdown_to_pdf", converter.FormatMarkdown, converter.FormatPDF, "Convert a Markdown file to PDF by way of HTML."},
	{"convert_html_to_txt", converter.FormatHTML, converter.FormatTXT, "Extract the readable text of an HTML file."},
	{"convert_pdf_to_txt", converter.FormatPDF, converter.FormatTXT, "Extract the text of a PDF file."},

	{"convert_rtf_to_docx", converter.FormatRTF, converter.FormatDOCX, "Convert an RTF file to a Word document. Requires LibreOffice."},
	{"convert_odt_to_docx", converter.FormatODT, converter.FormatDOCX, "Convert an OpenDocument Text file to a Word document. Requires LibreOffice."},
	{"convert_doc_to_docx", converter.FormatDOC, converter.FormatDOCX, "Convert a legacy Word 97-2003 document to .docx. Without LibreOffice only the text is recovered."},
	{"convert_txt_to_docx", converter.FormatTXT, converter.FormatDOCX, "Convert a plain text file to a Word document, one paragraph per line."},
	{"convert_markdown_to_docx", converter.FormatMarkdown, converter.FormatDOCX, "Convert a Markdown file to a Word document."},
	{"convert_html_to_docx", converter.FormatHTML, converter.FormatDOCX, "Convert an HTML file to a Word document."},
	{"convert_txt_to_pdf", converter.FormatTXT, converter.FormatPDF, "Convert a plain text file to PDF."},
	{"convert_rtf_to_pdf", converter.FormatRTF, converter.FormatPDF, "Convert an RTF file to PDF. Requires LibreOffice."},
	{"convert_odt_to_pdf", converter.FormatODT, converter.FormatPDF, "Convert an OpenDocument Text file to PDF. Requires LibreOffice."},
	{"convert_doc_to_pdf", converter.FormatDOC, converter.FormatPDF, "Convert a legacy Word 97-2003 document to PDF. Requires LibreOffice."},
}

// convertInputSchema is shared by every conversion tool
var convertInputSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"input_path": map[string]interface{}{
			"type":        "string",
			"description": "Path of the document to convert",
		},
		"output_path": map[string]interface{}{
			"type":        "string",
			"description": "Destination path. Defaults to the input name with the target extension; the extension is appended when missing.",
		},
	},
	"required": []string{"input_path"},
}

// Definition returns the MCP tool declaration
func (c ConversionTool) Definition() *mcp.Tool {
	return &mcp.Tool{
		Name:        c.Name,
		Description: c.Description,
		InputSchema: convertInputSchema,
		Annotations: &mcp.ToolAnnotations{
			IdempotentHint: true,
			OpenWorldHint:  boolPtr(false),
		},
	}
}

// ToolDefinitions contains the MCP tool definitions of the non-conversion tools
var ToolDefinitions = map[string]*mcp.Tool{
	"list_converters": {
		Name:        "list_converters",
		Description: "Report which conversion strategies (libraries and external tools) are usable on this host for every supported format pair.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"from": map[string]interface{}{
					"type":        "string",
					"description": "Only list pairs converting from this format (docx, doc, pdf, txt, html, md, rtf, odt)",
				},
				"to": map[string]interface{}{
					"type":        "string",
					"description": "Only list pairs converting to this format",
				},
			},
			"required": []string{},
		},
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	},
	"cleanup_scratch": {
		Name:        "cleanup_scratch",
		Description: "Remove intermediate conversion files older than the specified TTL from the scratch directory.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"ttl": map[string]interface{}{
					"type":        "string",
					"description": "Time to live (e.g., '30m', '2h', or hours as number). Uses the configured TTL if not specified.",
				},
			},
			"required": []string{},
		},
	},
}

func boolPtr(b bool) *bool {
	return &b
}
