package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/kfreiman/docbridge/internal/converter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Converter is the part of the dispatcher the tools depend on
type Converter interface {
	Dispatch(ctx context.Context, req converter.Request) converter.Outcome
	Pairs() []converter.Pair
	Inspect(pair converter.Pair) []converter.StrategyStatus
}

// ConvertTool runs one format pair through the dispatcher
type ConvertTool struct {
	def       ConversionTool
	converter Converter
	logger    *slog.Logger
}

// NewConvertTool creates the handler of a conversion tool
func NewConvertTool(def ConversionTool, conv Converter) *ConvertTool {
	return &ConvertTool{
		def:       def,
		converter: conv,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger for the tool
func (t *ConvertTool) WithLogger(logger *slog.Logger) *ConvertTool {
	t.logger = logger
	return t
}

// convertArgs accepts input_path/output_path, and filename/output_filename as used by
// older Word tool clients
type convertArgs struct {
	InputPath      string `json:"input_path"`
	OutputPath     string `json:"output_path"`
	Filename       string `json:"filename"`
	OutputFilename string `json:"output_filename"`
}

func (a convertArgs) input() string {
	if a.InputPath != "" {
		return a.InputPath
	}
	return a.Filename
}

func (a convertArgs) output() string {
	if a.OutputPath != "" {
		return a.OutputPath
	}
	return a.OutputFilename
}

// Call implements the MCP tool interface. Conversion failures are returned as tool
// results with IsError set, never as Go errors.
func (t *ConvertTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args convertArgs
	if err := decodeArguments(request, &args); err != nil {
		t.logger.WarnContext(ctx, "invalid tool arguments",
			"tool", t.def.Name,
			"error", err,
		)
		return errorResult(err), nil
	}

	source := args.input()
	if t.def.From == converter.FormatDOCX {
		source = withDocxExtension(source)
	}

	start := time.Now()
	outcome := t.converter.Dispatch(ctx, converter.Request{
		Source: source,
		Output: args.output(),
		From:   t.def.From,
		To:     t.def.To,
	})

	if !outcome.OK() {
		t.logger.InfoContext(ctx, "conversion tool failed",
			"tool", t.def.Name,
			"input", source,
			"error", outcome.Err,
			"duration", time.Since(start),
		)
		return errorResult(outcome.Err), nil
	}

	t.logger.InfoContext(ctx, "conversion tool completed",
		"tool", t.def.Name,
		"input", source,
		"output", outcome.Path,
		"via", outcome.Via,
		"duration", time.Since(start),
	)
	return textResult(outcome.String()), nil
}

// withDocxExtension lets Word tools take a document name without its extension
func withDocxExtension(source string) string {
	if strings.TrimSpace(source) == "" || strings.EqualFold(filepath.Ext(source), converter.FormatDOCX.Extension()) {
		return source
	}
	return source + converter.FormatDOCX.Extension()
}

// decodeArguments unmarshals the raw tool arguments. A call without arguments decodes
// into the zero value.
func decodeArguments(request *mcp.CallToolRequest, v any) error {
	if request == nil || request.Params == nil || len(request.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(request.Params.Arguments, v); err != nil {
		return &ValidationError{
			Field:  "arguments",
			Reason: fmt.Sprintf("invalid JSON format: %v", err),
		}
	}
	return nil
}
