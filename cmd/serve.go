package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kfreiman/docbridge/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"mcp-server"},
	Short:   "Start the MCP server",
	Long: `Start the MCP server on the transport selected by MCP_TRANSPORT
(stdio, streamable-http or sse). HTTP transports listen on MCP_HOST:PORT.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := mcp.LoadConfig()
		if err != nil {
			return fmt.Errorf("load MCP config: %w", err)
		}

		logger, err := loadLogger(cfg.Debug)
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "mcp server starting",
			"transport", cfg.Transport,
			"addr", cfg.Addr(),
			"scratch_path", cfg.ScratchPath,
			"scratch_ttl", cfg.ScratchTTL,
			"tool_timeout", cfg.ToolTimeout,
		)

		srv, err := mcp.NewServer(cfg, logger)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create MCP server",
				"error", err,
			)
			return err
		}
		defer func() {
			if err := srv.Close(); err != nil {
				logger.WarnContext(context.Background(), "failed to release converters", "error", err)
			}
		}()

		if err := srv.Run(ctx); err != nil {
			logger.ErrorContext(ctx, "MCP server stopped with error",
				"error", err,
			)
			return err
		}
		logger.InfoContext(ctx, "mcp server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
