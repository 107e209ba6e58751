package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"steptree/internal/domain"
	"steptree/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var fetchErr *domain.FetchError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &fetchErr):
		// Upstream failure; the previous tree is still being served
		httputil.RespondErrorWithExtras(w, fetchErr.StatusCode(), fetchErr.Error(), map[string]interface{}{
			"source":    fetchErr.Source,
			"operation": fetchErr.Operation,
		})
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
