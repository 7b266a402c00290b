// ABOUTME: Closed error taxonomy for the resource-access layer
// ABOUTME: APIError carries a display-safe message plus kind, status, and diagnostic details

package models

import "fmt"

// ErrorKind classifies a failed upstream call.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindNotFound          ErrorKind = "not_found"
	KindDuplicateEntry    ErrorKind = "duplicate_entry"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
	KindServerError       ErrorKind = "server_error"
	KindNetworkError      ErrorKind = "network_error"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindUnknown           ErrorKind = "unknown"
)

// APIError is created fully populated at the classification boundary and
// never partially filled. Message is safe to show to console users; Details
// is diagnostic only and not stable across versions.
type APIError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Status  int       `json:"status"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (status %d): %s: %s", e.Kind, e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
}

// ErrorResponse is the JSON error body returned by the console API.
type ErrorResponse struct {
	Error   string    `json:"error"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Details string    `json:"details,omitempty"`
	Code    int       `json:"code"`
}
