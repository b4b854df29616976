package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kfreiman/docbridge/internal/converter"
	"github.com/kfreiman/docbridge/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server identity reported to MCP clients
const (
	ServerName    = "docbridge"
	ServerVersion = "1.0.0"
)

const shutdownTimeout = 10 * time.Second

// Server encapsulates the MCP server with all its dependencies
type Server struct {
	mcpServer  *mcp.Server
	scratch    *storage.ScratchManager
	dispatcher *converter.Dispatcher
	logger     *slog.Logger
	config     Config
}

// NewServer creates a new MCP server with the given configuration
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	return newServer(cfg, logger, converter.Config{})
}

// newServer lets tests replace parts of the dispatcher configuration
func newServer(cfg Config, logger *slog.Logger, convCfg converter.Config) (*Server, error) {
	scratch, err := storage.NewScratchManager(storage.ScratchConfig{
		BasePath:   cfg.ScratchPath,
		DefaultTTL: cfg.ScratchTTL,
		Logger:     logger,
	})
	if err != nil {
		logger.ErrorContext(context.Background(), "failed to initialize scratch manager",
			"error", err,
		)
		return nil, fmt.Errorf("scratch init: %w", err)
	}

	convCfg.Scratch = scratch
	convCfg.ToolTimeout = cfg.ToolTimeout
	convCfg.Logger = logger

	s := &Server{
		scratch:    scratch,
		dispatcher: converter.NewDispatcher(convCfg),
		logger:     logger,
		config:     cfg,
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Instructions: ServerInstructions,
		Logger:       logger,
	})

	s.registerTools()

	return s, nil
}

// registerTools registers the conversion tools and the diagnostic tools
func (s *Server) registerTools() {
	for _, def := range ConversionTools {
		tool := NewConvertTool(def, s.dispatcher).WithLogger(s.logger)
		s.mcpServer.AddTool(def.Definition(), tool.Call)
	}

	listTool := NewListConvertersTool(s.dispatcher).WithLogger(s.logger)
	s.mcpServer.AddTool(ToolDefinitions["list_converters"], listTool.Call)

	cleanupTool := NewCleanupScratchTool(s.scratch).WithLogger(s.logger)
	s.mcpServer.AddTool(ToolDefinitions["cleanup_scratch"], cleanupTool.Call)
}

// Run serves the configured transport until ctx is cancelled or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	s.scratch.StartCleanupRoutine(ctx, s.config.ScratchTTL, s.config.ScratchTTL)

	switch s.config.Transport {
	case TransportStreamableHTTP, TransportSSE:
		return s.listenAndServe(ctx)
	default:
		s.logger.InfoContext(ctx, "starting MCP server", "transport", TransportStdio)
		err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// Handler returns the HTTP routes of the configured HTTP transport
func (s *Server) Handler() http.Handler {
	getServer := func(*http.Request) *mcp.Server { return s.mcpServer }

	mux := http.NewServeMux()
	if s.config.Transport == TransportSSE {
		mux.Handle(s.config.SSEPath, mcp.NewSSEHandler(getServer, nil))
	} else {
		mux.Handle(s.config.Path, mcp.NewStreamableHTTPHandler(getServer, &mcp.StreamableHTTPOptions{
			JSONResponse: true,
			Logger:       s.logger,
		}))
	}
	mux.HandleFunc("/health/live", s.livenessHandler)
	mux.HandleFunc("/health/ready", s.readinessHandler)
	mux.HandleFunc("/", s.indexHandler)
	return mux
}

func (s *Server) listenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.InfoContext(ctx, "starting MCP server",
		"transport", s.config.Transport,
		"addr", httpServer.Addr,
		"endpoint", s.endpoint(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "shutting down MCP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the resources held by the converters
func (s *Server) Close() error {
	return s.dispatcher.Close()
}

func (s *Server) endpoint() string {
	if s.config.Transport == TransportSSE {
		return s.config.SSEPath
	}
	return s.config.Path
}

func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	LivenessHandlerWithLogger(w, r, s.logger)
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ReadinessHandlerWithLogger(w, r, s.scratch, s.logger)
}

// indexHandler returns the server information page
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "DocBridge MCP Server\n\n")
	fmt.Fprintf(w, "Endpoints:\n")
	if s.config.Transport == TransportSSE {
		fmt.Fprintf(w, "  GET  %-13s - SSE transport\n", s.config.SSEPath)
	} else {
		fmt.Fprintf(w, "  POST %-13s - Streamable HTTP transport\n", s.config.Path)
	}
	fmt.Fprintf(w, "  GET  /health/live  - Liveness probe\n")
	fmt.Fprintf(w, "  GET  /health/ready - Readiness probe\n")
	fmt.Fprintf(w, "  GET  /             - This help message\n\n")
	fmt.Fprintf(w, "Tools: %d conversion tools, list_converters, cleanup_scratch\n", len(ConversionTools))
	fmt.Fprintf(w, "Server: %s %s\n", ServerName, ServerVersion)
}
