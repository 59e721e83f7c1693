package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// exposeErrors controls whether the underlying error text of 5xx responses is
// rendered to clients.
var exposeErrors atomic.Bool

// ExposeErrorDetails toggles rendering of internal error details in responses.
// It is enabled only in development.
func ExposeErrorDetails(enabled bool) {
	exposeErrors.Store(enabled)
}

// MessageResponse is the body of responses that carry no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message   string            `json:"message"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg} with the given status code.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteError maps err to a status code and writes an ErrorResponse.
// Validation errors carry per-field messages. Server-side failures are logged
// with the request-scoped logger when one is present, else with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContextOr(r.Context(), fallback)
	resp := ErrorResponse{RequestID: logger.CorrelationIDFromContext(r.Context())}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		resp.Code = "VALIDATION_ERROR"
		resp.Message = "request validation failed: " + valErr.Error()
		resp.Fields = valErr.Fields()
		WriteJSON(w, http.StatusBadRequest, resp)
		return
	}

	status := apperrors.HTTPStatus(err)
	resp.Code = apperrors.Code(err)

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		resp.Message = appErr.Message
	case status == http.StatusInternalServerError:
		resp.Message = "an internal error occurred"
	default:
		resp.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		attrs := []any{
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
		}
		if status == http.StatusServiceUnavailable {
			l.WarnContext(r.Context(), "dependency unavailable", attrs...)
		} else {
			l.ErrorContext(r.Context(), "internal error", attrs...)
		}
		if exposeErrors.Load() {
			resp.Error = err.Error()
		}
	}

	WriteJSON(w, status, resp)
}

// ParseUUID validates that param is a UUID. If it is not, it writes a 400
// response with code INVALID_PARAMETER and returns false so the caller can
// return early.
func ParseUUID(w http.ResponseWriter, name, param string) (string, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "invalid " + name + ": " + param,
		})
		return "", false
	}
	return id.String(), true
}
