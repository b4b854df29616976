package mcp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker bool

func (s stubChecker) IsAccessible() bool { return bool(s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLivenessHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/health/live", nil)
	w := httptest.NewRecorder()

	LivenessHandlerWithLogger(w, req, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, ServiceName, response.Service)
	assert.Equal(t, ServerVersion, response.Version)
	assert.NotEmpty(t, response.Timestamp)
}

func TestReadinessHandler(t *testing.T) {
	t.Run("scratch accessible", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health/ready", nil)
		w := httptest.NewRecorder()

		ReadinessHandlerWithLogger(w, req, stubChecker(true), discardLogger())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
		assert.Contains(t, w.Body.String(), `"scratch":"accessible"`)
	})

	t.Run("scratch inaccessible", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health/ready", nil)
		w := httptest.NewRecorder()

		ReadinessHandlerWithLogger(w, req, stubChecker(false), discardLogger())

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
		assert.Contains(t, w.Body.String(), `"scratch":"inaccessible"`)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("no checker", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health/ready", nil)
		w := httptest.NewRecorder()

		ReadinessHandlerWithLogger(w, req, nil, discardLogger())

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
