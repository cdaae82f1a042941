package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"meetingscheduler/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
// Conflict checks additionally report their domain.ConflictReason as the code.
const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeForbidden         = "forbidden"
	ErrCodeNotFound          = "not_found"
	ErrCodeConflict          = "conflict"
	ErrCodeQuotaExceeded     = "quota_exceeded"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeRateLimited       = "rate_limited"
	ErrCodeInternalError     = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// StatusForError maps a service error to its HTTP status and error code.
func StatusForError(err error) (int, string) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		if conflict.Reason == domain.ConflictInvalidDuration {
			return http.StatusBadRequest, string(conflict.Reason)
		}
		if conflict.Reason == domain.ConflictTicketNotVerified {
			return http.StatusForbidden, string(conflict.Reason)
		}
		return http.StatusConflict, string(conflict.Reason)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, domain.ErrTicketNotVerified):
		return http.StatusForbidden, string(domain.ConflictTicketNotVerified)
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusForbidden, ErrCodeQuotaExceeded
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, ErrCodeInvalidTransition
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, ErrCodeRateLimited
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// WriteServiceError writes err using StatusForError. Internal errors are logged and their
// message is not exposed to the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, code, "internal server error")
		return
	}
	WriteJSONError(w, status, code, err.Error())
}
