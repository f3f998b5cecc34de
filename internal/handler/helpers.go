package handler

import (
	"errors"
	"net/http"

	"docconv/internal/domain"
	"docconv/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, r, http.StatusBadRequest, domain.PublicMessage(err))
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, r, http.StatusUnauthorized, domain.PublicMessage(err))
	case errors.Is(err, domain.ErrUnsupportedFormat):
		httputil.RespondError(w, r, http.StatusUnprocessableEntity, domain.PublicMessage(err))
	case errors.Is(err, domain.ErrTimeout):
		httputil.RespondError(w, r, http.StatusGatewayTimeout, domain.PublicMessage(err))
	case errors.Is(err, domain.ErrConversionFailed):
		httputil.RespondError(w, r, http.StatusInternalServerError, domain.PublicMessage(err))
	default:
		httputil.RespondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
