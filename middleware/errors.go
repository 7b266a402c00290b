// ABOUTME: JSON error response helper for middleware
// ABOUTME: Ensures middleware error responses match the console's error envelope

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/calvora/ops-console/backend/models"
)

// writeJSONError writes an error response in the console's envelope, the
// same shape handlers.writeServiceError produces, so clients see one
// error format whether a request is rejected in middleware or a handler.
func writeJSONError(w http.ResponseWriter, message string, kind models.ErrorKind, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: message,
		Kind:  kind,
		Code:  code,
	})
}
