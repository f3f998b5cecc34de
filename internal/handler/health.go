package handler

import (
	"context"
	"log/slog"
	"net/http"

	"docconv/internal/httputil"
)

// Prober reports the converter's version
type Prober interface {
	Probe(ctx context.Context) (string, error)
}

// HealthHandler reports whether the converter binary can be started
type HealthHandler struct {
	prober Prober
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(prober Prober, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		prober: prober,
		logger: logger,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Converter string `json:"converter"`
}

// HealthCheck probes the converter. The service is degraded, not down, when
// the probe fails: uploads are still accepted and fail individually.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	version, err := h.prober.Probe(r.Context())
	if err != nil {
		h.logger.Warn("converter probe failed", "error", err)
		httputil.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "degraded",
			Converter: "unavailable",
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Converter: version,
	})
}
