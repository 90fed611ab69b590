package handlers

import (
	"log/slog"
	"net/http"
)

// HealthHandler responde al health check.
type HealthHandler struct {
	logger  *slog.Logger
	version string
}

// NewHealthHandler crea el handler de health check.
func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		version: version,
	}
}

// HealthResponse es el cuerpo del health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health maneja GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, HealthResponse{
		Status:  "ok",
		Version: h.version,
	}, http.StatusOK)
}
