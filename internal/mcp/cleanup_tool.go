package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kfreiman/docbridge/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CleanupScratchTool handles scratch directory cleanup
type CleanupScratchTool struct {
	scratch *storage.ScratchManager
	logger  *slog.Logger
}

// NewCleanupScratchTool creates a new cleanup scratch tool
func NewCleanupScratchTool(scratch *storage.ScratchManager) *CleanupScratchTool {
	return &CleanupScratchTool{
		scratch: scratch,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the tool
func (t *CleanupScratchTool) WithLogger(logger *slog.Logger) *CleanupScratchTool {
	t.logger = logger
	return t
}

// Call implements the MCP tool interface
func (t *CleanupScratchTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TTL string `json:"ttl"` // duration string (e.g. "2h") or hours as number
	}
	if err := decodeArguments(request, &args); err != nil {
		return errorResult(err), nil
	}

	ttl, err := parseTTL(args.TTL)
	if err != nil {
		t.logger.WarnContext(ctx, "invalid TTL format",
			"error", err,
			"ttl_input", args.TTL,
			"operation", "cleanup_scratch",
		)
		return errorResult(err), nil
	}

	before, err := t.scratch.Stats()
	if err != nil {
		return errorResult(err), nil
	}

	removed, err := t.scratch.Cleanup(ttl)
	if err != nil {
		t.logger.ErrorContext(ctx, "cleanup operation failed",
			"error", err,
			"ttl", ttl,
			"operation", "cleanup_scratch",
		)
		return errorResult(err), nil
	}

	after, _ := t.scratch.Stats()

	ttlDisplay := fmt.Sprintf("default (%s)", t.scratch.DefaultTTL())
	if ttl > 0 {
		ttlDisplay = ttl.String()
	}

	t.logger.InfoContext(ctx, "scratch cleanup completed via tool",
		"ttl", ttlDisplay,
		"removed", removed,
		"files_before", before.Files,
		"files_after", after.Files,
	)

	return textResult(fmt.Sprintf(`Scratch cleanup completed!

TTL used: %s
Entries removed: %d

Scratch directory: %s
- Files before: %d, after: %d
- Bytes before: %d, after: %d`,
		ttlDisplay, removed, t.scratch.Path(),
		before.Files, after.Files, before.Bytes, after.Bytes)), nil
}

// parseTTL accepts a Go duration ("90m") or a whole number of hours ("2"). Empty means
// the configured default.
func parseTTL(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}
	if ttl, err := time.ParseDuration(input); err == nil {
		if ttl < 0 {
			return 0, &ValidationError{Field: "ttl", Value: input, Reason: "must not be negative"}
		}
		return ttl, nil
	}
	hours, err := strconv.Atoi(input)
	if err != nil || hours < 0 {
		return 0, &ValidationError{
			Field:  "ttl",
			Value:  input,
			Reason: "use a duration string (e.g. '2h') or hours as number",
		}
	}
	return time.Duration(hours) * time.Hour, nil
}
