// ABOUTME: Maps upstream HTTP failures onto the closed error taxonomy
// ABOUTME: A 401 clears stored tokens and notifies observers before the error returns

package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calvora/ops-console/backend/models"
)

// upstreamErrorBody is the JSON error envelope the resource API returns.
type upstreamErrorBody struct {
	Errors []struct {
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// codeKinds maps upstream error codes to taxonomy kinds and display-safe
// messages. Codes outside this table classify as unknown.
var codeKinds = map[string]struct {
	kind    models.ErrorKind
	message string
}{
	"VALIDATION_ERROR": {models.KindValidation, "The submitted data failed validation"},
	"NOT_FOUND":        {models.KindNotFound, "The requested record does not exist"},
	"DUPLICATE_ENTRY":  {models.KindDuplicateEntry, "A record with these values already exists"},
	"FORBIDDEN":        {models.KindForbidden, "You do not have permission to perform this action"},
	"DATABASE_ERROR":   {models.KindServerError, "The server could not complete the request"},
	"INTERNAL_ERROR":   {models.KindServerError, "The server could not complete the request"},
}

// Classifier turns raw upstream responses and transport failures into
// APIError values, applying the 401 token-invalidation side effect.
type Classifier struct {
	tokens   *TokenStore
	notifier *AuthFailureNotifier
}

// NewClassifier creates a classifier bound to the given token store and
// notifier.
func NewClassifier(tokens *TokenStore, notifier *AuthFailureNotifier) *Classifier {
	return &Classifier{tokens: tokens, notifier: notifier}
}

// Network classifies a transport-level failure where no HTTP response was
// received. Status is 0 because no status line ever arrived.
func (c *Classifier) Network(endpoint string, err error) *models.APIError {
	return &models.APIError{
		Kind:    models.KindNetworkError,
		Message: "Could not reach the server",
		Status:  0,
		Details: fmt.Sprintf("%s: %v", endpoint, err),
	}
}

// Malformed classifies a response whose body could not be interpreted.
// The message names the endpoint so the failing upstream URL survives
// into logs and error displays.
func (c *Classifier) Malformed(endpoint string, status int, detail string) *models.APIError {
	return &models.APIError{
		Kind:    models.KindMalformedResponse,
		Message: fmt.Sprintf("The server returned an unexpected response from %s", endpoint),
		Status:  status,
		Details: detail,
	}
}

// Classify maps a non-2xx upstream response to an APIError. On a 401 it
// clears the stored token pair and notifies auth-failure observers before
// returning, so the session is already torn down when the caller sees the
// error.
func (c *Classifier) Classify(endpoint string, status int, contentType string, body []byte) *models.APIError {
	if looksLikeHTML(contentType, body) {
		return c.Malformed(endpoint, status, "HTML response where JSON was expected")
	}

	var parsed upstreamErrorBody
	if len(body) > 0 && isJSONContentType(contentType) {
		if err := json.Unmarshal(body, &parsed); err != nil {
			return c.Malformed(endpoint, status, fmt.Sprintf("invalid JSON error body: %v", err))
		}
	}

	if status == http.StatusUnauthorized {
		slog.Warn("Upstream rejected credentials, clearing token state")
		c.tokens.Clear()
		c.notifier.Notify(AuthFailure{Status: status, Message: firstDetail(parsed)})
		return &models.APIError{
			Kind:    models.KindUnauthorized,
			Message: "Your session has expired, please sign in again",
			Status:  status,
			Details: firstDetail(parsed),
		}
	}

	if len(parsed.Errors) > 0 {
		code := strings.ToUpper(parsed.Errors[0].Code)
		if entry, ok := codeKinds[code]; ok {
			return &models.APIError{
				Kind:    entry.kind,
				Message: entry.message,
				Status:  status,
				Details: firstDetail(parsed),
			}
		}
	}

	return &models.APIError{
		Kind:    models.KindUnknown,
		Message: "The request failed",
		Status:  status,
		Details: firstDetail(parsed),
	}
}

func firstDetail(body upstreamErrorBody) string {
	if len(body.Errors) == 0 {
		return ""
	}
	first := body.Errors[0]
	if first.Detail != "" {
		return first.Detail
	}
	return first.Title
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}
