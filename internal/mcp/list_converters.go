package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kfreiman/docbridge/internal/converter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PairReport is the availability of one format pair
type PairReport struct {
	Pair       string                     `json:"pair"`
	Tool       string                     `json:"tool,omitempty"`
	Available  bool                       `json:"available"`
	Strategies []converter.StrategyStatus `json:"strategies"`
}

// ListConvertersTool reports which strategies can run on this host
type ListConvertersTool struct {
	converter Converter
	logger    *slog.Logger
}

// NewListConvertersTool creates a new list converters tool
func NewListConvertersTool(conv Converter) *ListConvertersTool {
	return &ListConvertersTool{
		converter: conv,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger for the tool
func (t *ListConvertersTool) WithLogger(logger *slog.Logger) *ListConvertersTool {
	t.logger = logger
	return t
}

// Call implements the MCP tool interface
func (t *ListConvertersTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeArguments(request, &args); err != nil {
		return errorResult(err), nil
	}

	var from, to converter.Format
	var err error
	if args.From != "" {
		if from, err = converter.ParseFormat(args.From); err != nil {
			return errorResult(err), nil
		}
	}
	if args.To != "" {
		if to, err = converter.ParseFormat(args.To); err != nil {
			return errorResult(err), nil
		}
	}

	reports := BuildPairReports(t.converter, from, to)
	t.logger.DebugContext(ctx, "converter availability reported",
		"from", from,
		"to", to,
		"pairs", len(reports),
	)

	if len(reports) == 0 {
		return textResult("No supported conversions match the given formats."), nil
	}
	return textResult(FormatPairReports(reports)), nil
}

// BuildPairReports inspects every supported pair matching the optional filters
func BuildPairReports(conv Converter, from, to converter.Format) []PairReport {
	toolNames := make(map[converter.Pair]string, len(ConversionTools))
	for _, tool := range ConversionTools {
		toolNames[converter.Pair{From: tool.From, To: tool.To}] = tool.Name
	}

	var reports []PairReport
	for _, pair := range conv.Pairs() {
		if (from != "" && pair.From != from) || (to != "" && pair.To != to) {
			continue
		}
		report := PairReport{
			Pair:       pair.String(),
			Tool:       toolNames[pair],
			Strategies: conv.Inspect(pair),
		}
		for _, s := range report.Strategies {
			if s.Available {
				report.Available = true
				break
			}
		}
		reports = append(reports, report)
	}
	return reports
}

// FormatPairReports renders reports as the text shown to clients and on the command line
func FormatPairReports(reports []PairReport) string {
	var sb strings.Builder
	sb.WriteString("Available conversions:\n")
	for _, r := range reports {
		status := "available"
		if !r.Available {
			status = "unavailable"
		}
		name := r.Pair
		if r.Tool != "" {
			name = fmt.Sprintf("%s (%s)", r.Tool, r.Pair)
		}
		fmt.Fprintf(&sb, "\n%s: %s\n", name, status)
		for _, s := range r.Strategies {
			mark := "-"
			if s.Available {
				mark = "+"
			}
			fmt.Fprintf(&sb, "  %s %s [%s]", mark, s.Name, s.Kind)
			if s.Detail != "" {
				fmt.Fprintf(&sb, " %s", s.Detail)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
