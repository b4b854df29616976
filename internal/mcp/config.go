package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Transport names accepted in MCP_TRANSPORT
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
	TransportSSE            = "sse"
)

// Config holds the configuration for the MCP server
type Config struct {
	Transport   string        `env:"MCP_TRANSPORT" env-default:"stdio" env-description:"MCP transport: stdio, streamable-http or sse"`
	Host        string        `env:"MCP_HOST" env-default:"0.0.0.0" env-description:"Listen address for HTTP transports"`
	Port        int           `env:"PORT,MCP_PORT" env-default:"8080" env-description:"Listen port for HTTP transports"`
	Path        string        `env:"MCP_PATH" env-default:"/mcp" env-description:"Endpoint of the streamable HTTP transport"`
	SSEPath     string        `env:"MCP_SSE_PATH" env-default:"/sse" env-description:"Endpoint of the SSE transport"`
	Debug       bool          `env:"MCP_DEBUG" env-default:"false" env-description:"Enable debug logging"`
	ScratchPath string        `env:"SCRATCH_PATH" env-description:"Directory for intermediate files (default: OS temp dir/docbridge)"`
	ScratchTTL  time.Duration `env:"SCRATCH_TTL" env-default:"1h" env-description:"Age after which scratch files are removed"`
	ToolTimeout time.Duration `env:"TOOL_TIMEOUT" env-default:"60s" env-description:"Timeout for a single external converter run"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg.normalize(), nil
}

// DefaultConfig returns the configuration used when no environment is set
func DefaultConfig() Config {
	return Config{
		Transport:   TransportStdio,
		Host:        "0.0.0.0",
		Port:        8080,
		Path:        "/mcp",
		SSEPath:     "/sse",
		ScratchTTL:  time.Hour,
		ToolTimeout: 60 * time.Second,
	}.normalize()
}

// normalize fills derived defaults. An unknown transport falls back to stdio.
func (c Config) normalize() Config {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if !ValidTransport(c.Transport) {
		c.Transport = TransportStdio
	}
	if c.ScratchPath == "" {
		c.ScratchPath = filepath.Join(os.TempDir(), "docbridge")
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
	if !strings.HasPrefix(c.SSEPath, "/") {
		c.SSEPath = "/" + c.SSEPath
	}
	return c
}

// ValidTransport reports whether name is a supported transport
func ValidTransport(name string) bool {
	switch name {
	case TransportStdio, TransportStreamableHTTP, TransportSSE:
		return true
	}
	return false
}

// Addr returns the listen address for HTTP transports
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WithTransport sets the transport
func (c Config) WithTransport(transport string) Config {
	c.Transport = transport
	return c
}

// WithHost sets the listen host
func (c Config) WithHost(host string) Config {
	c.Host = host
	return c
}

// WithPort sets the server port
func (c Config) WithPort(port int) Config {
	c.Port = port
	return c
}

// WithScratchPath sets the scratch directory
func (c Config) WithScratchPath(path string) Config {
	c.ScratchPath = path
	return c
}

// WithScratchTTL sets the scratch file TTL
func (c Config) WithScratchTTL(ttl time.Duration) Config {
	c.ScratchTTL = ttl
	return c
}

// WithToolTimeout sets the external tool timeout
func (c Config) WithToolTimeout(timeout time.Duration) Config {
	c.ToolTimeout = timeout
	return c
}

// WithDebug enables or disables debug logging
func (c Config) WithDebug(debug bool) Config {
	c.Debug = debug
	return c
}
