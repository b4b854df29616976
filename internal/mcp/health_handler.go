package mcp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ServiceName identifies the server in health responses
const ServiceName = "docbridge-mcp"

// HealthResponse represents the JSON response for health endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ScratchChecker reports whether the scratch directory can be used
type ScratchChecker interface {
	IsAccessible() bool
}

// LivenessHandlerWithLogger always answers 200 OK while the process serves requests
func LivenessHandlerWithLogger(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	logger.DebugContext(r.Context(), "liveness check requested")

	writeHealth(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   ServerVersion,
	})
}

// ReadinessHandlerWithLogger returns 200 OK when the scratch directory is accessible,
// 503 otherwise
func ReadinessHandlerWithLogger(w http.ResponseWriter, r *http.Request, scratch ScratchChecker, logger *slog.Logger) {
	ctx := r.Context()
	logger.DebugContext(ctx, "readiness check requested")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   ServerVersion,
		Checks:    map[string]string{"scratch": "accessible"},
	}

	if scratch == nil || !scratch.IsAccessible() {
		response.Status = "unhealthy"
		response.Checks["scratch"] = "inaccessible"
		logger.ErrorContext(ctx, "readiness check failed", "status", "unhealthy", "scratch", "inaccessible")
		writeHealth(w, http.StatusServiceUnavailable, response)
		return
	}

	writeHealth(w, http.StatusOK, response)
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
