// Package response provides helpers for sending consistent JSON responses
// and standardized error bodies.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the structured error body returned by the API. Details
// is optional and carries per-field validation messages or error context.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code. A nil data
// sends only the status code, which is how 204 No Content is produced.
// Encoding errors are logged, not returned; the status line is already on
// the wire by then.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError sends a structured error response with the given status
// code. The message should describe the failure; details may be an error
// string, additional context, or nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
