package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"secretsanta/internal/delivery/http/helpers"
	"secretsanta/internal/domain"
)

// pathID reads a UUID path value. It writes a 400 and returns false when missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return "", false
	}
	return id.String(), true
}

// drawStatus is the HTTP status for a draw failure kind.
func drawStatus(kind *domain.DrawErrorKind) int {
	switch kind {
	case domain.ErrInsufficientParticipants, domain.ErrInfeasibleConstraints, domain.ErrInvalidGraph:
		return http.StatusUnprocessableEntity
	case domain.ErrAlreadyDrawn:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps a service error to the response envelope. Server errors are logged and
// their text is not sent to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFoundMsg string) {
	var de *domain.DrawError
	var kind *domain.DrawErrorKind
	switch {
	case errors.As(err, &de):
		status := drawStatus(de.Kind)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		helpers.WriteJSONErrorDetails(w, status, de.Kind.Code, de.Message, de.Details)
	case errors.As(err, &kind):
		status := drawStatus(kind)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		helpers.WriteJSONError(w, status, kind.Code, kind.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateExclusion),
		errors.Is(err, domain.ErrProtectedExclusion),
		errors.Is(err, domain.ErrNotDrawn):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
