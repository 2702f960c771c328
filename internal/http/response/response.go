// Package response writes the standard JSON envelopes of the task-storage
// API and maps domain errors onto HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hallgrim/dayplan/internal/api"
	"github.com/hallgrim/dayplan/internal/domain"
)

// OK sends a 200 response with JSON data.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// Created sends a 201 response with JSON data.
func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// BadRequest sends a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, api.CodeInvalidRequest, message, http.StatusBadRequest)
}

// Error sends a generic error envelope.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, statusCode, api.ErrorResponse{
		Error: api.ErrorDetail{Code: code, Message: message},
	})
}

// FromDomainError maps domain errors to HTTP responses. Unknown errors are
// logged server-side and returned as a generic 500.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPatternType),
		errors.Is(err, domain.ErrPatternIncomplete),
		errors.Is(err, domain.ErrInvalidWeekday),
		errors.Is(err, domain.ErrInvalidMonthDay),
		errors.Is(err, domain.ErrInvalidOrdinal),
		errors.Is(err, domain.ErrInvalidYearlyDate),
		errors.Is(err, domain.ErrInvalidTimeOfDay),
		errors.Is(err, domain.ErrInvalidTimeZone),
		errors.Is(err, domain.ErrEndBeforeStart),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, domain.ErrInvalidID):
		Error(w, api.CodeValidationError, err.Error(), http.StatusBadRequest)

	case errors.Is(err, domain.ErrListNotFound):
		Error(w, api.CodeListNotFound, "list not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrItemNotFound):
		Error(w, api.CodeItemNotFound, "item not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotFound):
		Error(w, api.CodeItemNotFound, "resource not found", http.StatusNotFound)

	case errors.Is(err, domain.ErrVersionConflict):
		Error(w, api.CodeConflict, err.Error(), http.StatusConflict)

	default:
		slog.ErrorContext(r.Context(), "internal server error", "error", err)
		Error(w, api.CodeInternalError, "an internal error occurred", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
