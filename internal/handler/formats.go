package handler

import (
	"log/slog"
	"net/http"

	"docconv/internal/config"
	"docconv/internal/formats"
	"docconv/internal/httputil"
)

// FormatsHandler lists the formats the convert endpoint accepts
type FormatsHandler struct {
	formats []formats.Format
	logger  *slog.Logger
}

// NewFormatsHandler creates a new formats handler
func NewFormatsHandler(cfg *config.Config, registry *formats.Registry, logger *slog.Logger) *FormatsHandler {
	return &FormatsHandler{
		formats: registry.Allowed(cfg.AllowedFormats),
		logger:  logger,
	}
}

// ListFormats returns the allowed formats in configuration order
func (h *FormatsHandler) ListFormats(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"formats": h.formats,
	})
}
