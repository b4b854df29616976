package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/kfreiman/docbridge/internal/converter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConverter records dispatched requests and answers with a fixed outcome
type fakeConverter struct {
	mu       sync.Mutex
	requests []converter.Request
	outcome  converter.Outcome
	pairs    []converter.Pair
	statuses map[converter.Pair][]converter.StrategyStatus
}

func (f *fakeConverter) Dispatch(_ context.Context, req converter.Request) converter.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	outcome := f.outcome
	outcome.Target = req.To
	return outcome
}

func (f *fakeConverter) Pairs() []converter.Pair {
	return f.pairs
}

func (f *fakeConverter) Inspect(pair converter.Pair) []converter.StrategyStatus {
	return f.statuses[pair]
}

func callRequest(t *testing.T, args map[string]interface{}) *mcp.CallToolRequest {
	t.Helper()
	argsBytes, err := json.Marshal(args)
	require.NoError(t, err)
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: argsBytes},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func findConversionTool(t *testing.T, name string) ConversionTool {
	t.Helper()
	for _, tool := range ConversionTools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("conversion tool %s not registered", name)
	return ConversionTool{}
}

func TestConvertTool_Call(t *testing.T) {
	t.Run("passes pair and paths to the dispatcher", func(t *testing.T) {
		conv := &fakeConverter{outcome: converter.Outcome{Path: "/out/report.pdf", Via: "docx2pdf"}}
		tool := NewConvertTool(findConversionTool(t, "convert_to_pdf"), conv)

		result, err := tool.Call(context.Background(), callRequest(t, map[string]interface{}{
			"input_path":  "/docs/report.docx",
			"output_path": "/out/report",
		}))
		require.NoError(t, err)

		assert.False(t, result.IsError)
		assert.Equal(t, "Document successfully converted to PDF via docx2pdf: /out/report.pdf", resultText(t, result))
		require.Len(t, conv.requests, 1)
		assert.Equal(t, converter.Request{
			Source: "/docs/report.docx",
			Output: "/out/report",
			From:   converter.FormatDOCX,
			To:     converter.FormatPDF,
		}, conv.requests[0])
	})

	t.Run("accepts filename arguments", func(t *testing.T) {
		conv := &fakeConverter{outcome: converter.Outcome{Path: "/docs/memo.txt", Via: "go-docx"}}
		tool := NewConvertTool(findConversionTool(t, "convert_to_txt"), conv)

		_, err := tool.Call(context.Background(), callRequest(t, map[string]interface{}{
			"filename":        "/docs/memo.docx",
			"output_filename": "/docs/memo.txt",
		}))
		require.NoError(t, err)

		require.Len(t, conv.requests, 1)
		assert.Equal(t, "/docs/memo.docx", conv.requests[0].Source)
		assert.Equal(t, "/docs/memo.txt", conv.requests[0].Output)
	})

	t.Run("word tools complete a missing docx extension", func(t *testing.T) {
		tests := []struct {
			input string
			want  string
		}{
			{input: "report", want: "report.docx"},
			{input: "/docs/report", want: "/docs/report.docx"},
			{input: "/docs/report.docx", want: "/docs/report.docx"},
			{input: "/docs/REPORT.DOCX", want: "/docs/REPORT.DOCX"},
			{input: "/docs/v1.2", want: "/docs/v1.2.docx"},
		}
		for _, tt := range tests {
			conv := &fakeConverter{outcome: converter.Outcome{Path: "/out.pdf", Via: "docx2pdf"}}
			tool := NewConvertTool(findConversionTool(t, "convert_to_pdf"), conv)

			_, err := tool.Call(context.Background(), callRequest(t, map[string]interface{}{
				"filename": tt.input,
			}))
			require.NoError(t, err)
			require.Len(t, conv.requests, 1)
			assert.Equal(t, tt.want, conv.requests[0].Source, tt.input)
		}
	})

	t.Run("non-word tools keep the input as given", func(t *testing.T) {
		conv := &fakeConverter{outcome: converter.Outcome{Path: "/page.md", Via: "html-to-markdown"}}
		tool := NewConvertTool(findConversionTool(t, "convert_html_to_markdown"), conv)

		_, err := tool.Call(context.Background(), callRequest(t, map[string]interface{}{
			"input_path": "/page",
		}))
		require.NoError(t, err)
		assert.Equal(t, "/page", conv.requests[0].Source)
	})

	t.Run("input_path wins over filename", func(t *testing.T) {
		conv := &fakeConverter{outcome: converter.Outcome{Path: "/a.md", Via: "html-to-markdown"}}
		tool := NewConvertTool(findConversionTool(t, "convert_html_to_markdown"), conv)

		_, err := tool.Call(context.Background(), callRequest(t, map[string]interface{}{
			"input_path": "/a.html",
			"filename":   "/b.html",
		}))
		require.NoError(t, err)
		assert.Equal(t, "/a.html", conv.requests[0].Source)
	})

	t.Run("failure becomes an error result", func(t *testing.T) {
		conv := &fakeConverter{outcome: converter.Outcome{Err: &converter.SourceNotFoundError{Path: "/missing.docx"}}}
		tool := NewConvertTool(findConversionTool(t, "convert_to_pdf"), conv)

		result, err := tool.Call(context.Background(), callRequest(t, map[string]interface{}{
			"input_path": "/missing.docx",
		}))
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.Equal(t, "Document /missing.docx does not exist", resultText(t, result))
	})

	t.Run("invalid JSON arguments", func(t *testing.T) {
		conv := &fakeConverter{}
		tool := NewConvertTool(findConversionTool(t, "convert_to_pdf"), conv)

		result, err := tool.Call(context.Background(), &mcp.CallToolRequest{
			Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(`{"input_path":`)},
		})
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "invalid JSON format")
		assert.Empty(t, conv.requests)
	})
}

func TestDecodeArguments(t *testing.T) {
	var args convertArgs

	require.NoError(t, decodeArguments(nil, &args))
	require.NoError(t, decodeArguments(&mcp.CallToolRequest{}, &args))
	require.NoError(t, decodeArguments(&mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{}}, &args))
	assert.Equal(t, convertArgs{}, args)

	err := decodeArguments(&mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(`[1,2]`)},
	}, &args)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "arguments", validationErr.Field)
}

func TestConversionTools_Catalogue(t *testing.T) {
	names := make(map[string]bool)
	pairs := make(map[converter.Pair]bool)
	for _, tool := range ConversionTools {
		assert.False(t, names[tool.Name], "duplicate tool name %s", tool.Name)
		names[tool.Name] = true

		pair := converter.Pair{From: tool.From, To: tool.To}
		assert.False(t, pairs[pair], "duplicate pair %s", pair)
		pairs[pair] = true

		def := tool.Definition()
		assert.Equal(t, tool.Name, def.Name)
		assert.NotEmpty(t, def.Description)
		require.NotNil(t, def.Annotations)
		assert.True(t, def.Annotations.IdempotentHint)
	}
	assert.Len(t, ConversionTools, 23)
	assert.True(t, names["convert_to_pdf"])
	assert.True(t, names["convert_doc_to_docx"])
}
