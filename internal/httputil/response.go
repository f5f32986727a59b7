package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondUnauthorized sends a 401 with a Bearer challenge.
func RespondUnauthorized(w http.ResponseWriter, message string, code string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	RespondErrorWithCode(w, message, code, http.StatusUnauthorized)
}

// RespondInternalError sends the generic 500 body. The cause belongs in the log, not the response.
func RespondInternalError(w http.ResponseWriter) {
	RespondErrorWithCode(w, "internal server error", CodeInternalError, http.StatusInternalServerError)
}
