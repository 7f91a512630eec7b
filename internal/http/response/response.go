package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/heliohq/claims-portal/pkg/logger"
)

// Every response body is the same envelope: status is "success" or "fail",
// data carries the payload, message carries human-readable text, length the
// record count on list responses.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Length  *int   `json:"length,omitempty"`
}

// AppError is an operational failure with a designated HTTP status.
// Anything else that reaches the error responder is treated as unexpected
// and rendered as a generic 500.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func WriteSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, Envelope{Status: "success", Data: data})
}

// WriteList includes the record count alongside the data.
func WriteList(w http.ResponseWriter, statusCode int, data any, length int) {
	writeJSON(w, statusCode, Envelope{Status: "success", Data: data, Length: &length})
}

func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Envelope{Status: "success", Message: message})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error funnels every handler failure through one responder. Operational
// errors keep their status and message; unexpected ones are logged and
// hidden behind a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, Envelope{Status: "fail", Message: appErr.Message})
		return
	}

	logger.ErrorContext(r.Context(), "Unexpected error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	writeJSON(w, http.StatusInternalServerError, Envelope{
		Status:  "fail",
		Message: "Something went wrong",
	})
}

// NotFoundHandler resolves unmatched routes, naming the missing path.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Envelope{
		Status:  "fail",
		Message: "Can't find " + r.URL.Path + " on this server",
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
