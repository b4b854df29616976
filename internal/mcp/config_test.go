package mcp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"MCP_TRANSPORT", "MCP_HOST", "PORT", "MCP_PORT", "MCP_PATH", "MCP_SSE_PATH",
		"MCP_DEBUG", "SCRATCH_PATH", "SCRATCH_TTL", "TOOL_TIMEOUT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/mcp", cfg.Path)
	assert.Equal(t, "/sse", cfg.SSEPath)
	assert.False(t, cfg.Debug)
	assert.Equal(t, filepath.Join(os.TempDir(), "docbridge"), cfg.ScratchPath)
	assert.Equal(t, time.Hour, cfg.ScratchTTL)
	assert.Equal(t, 60*time.Second, cfg.ToolTimeout)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "Streamable-HTTP")
	t.Setenv("MCP_PORT", "9000")
	t.Setenv("PORT", "9100")
	t.Setenv("MCP_PATH", "rpc")
	t.Setenv("MCP_DEBUG", "true")
	t.Setenv("SCRATCH_PATH", "/var/tmp/convert")
	t.Setenv("SCRATCH_TTL", "30m")
	t.Setenv("TOOL_TIMEOUT", "2m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, TransportStreamableHTTP, cfg.Transport)
	assert.Equal(t, 9100, cfg.Port, "PORT takes precedence over MCP_PORT")
	assert.Equal(t, "/rpc", cfg.Path)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/var/tmp/convert", cfg.ScratchPath)
	assert.Equal(t, 30*time.Minute, cfg.ScratchTTL)
	assert.Equal(t, 2*time.Minute, cfg.ToolTimeout)
	assert.Equal(t, "0.0.0.0:9100", cfg.Addr())
}

func TestLoadConfig_UnknownTransportFallsBackToStdio(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "websocket")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, TransportStdio, cfg.Transport)
}

func TestConfig_Builders(t *testing.T) {
	cfg := DefaultConfig().
		WithTransport(TransportSSE).
		WithHost("127.0.0.1").
		WithPort(3000).
		WithScratchPath("/scratch").
		WithScratchTTL(5 * time.Minute).
		WithToolTimeout(time.Second).
		WithDebug(true)

	assert.Equal(t, TransportSSE, cfg.Transport)
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
	assert.Equal(t, "/scratch", cfg.ScratchPath)
	assert.Equal(t, 5*time.Minute, cfg.ScratchTTL)
	assert.Equal(t, time.Second, cfg.ToolTimeout)
	assert.True(t, cfg.Debug)
}

func TestValidTransport(t *testing.T) {
	assert.True(t, ValidTransport("stdio"))
	assert.True(t, ValidTransport("streamable-http"))
	assert.True(t, ValidTransport("sse"))
	assert.False(t, ValidTransport("STDIO"))
	assert.False(t, ValidTransport(""))
}
