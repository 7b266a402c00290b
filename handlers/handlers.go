// ABOUTME: HTTP handler plumbing for the ops console API
// ABOUTME: Holds shared dependencies and JSON response helpers

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/calvora/ops-console/backend/cache"
	"github.com/calvora/ops-console/backend/config"
	"github.com/calvora/ops-console/backend/models"
	"github.com/calvora/ops-console/backend/services"
)

type Handler struct {
	cfg       *config.Config
	cache     *cache.Cache
	resources *services.ResourceService
	auth      *services.AuthService
	sessions  *services.SessionService
}

// NewHandler wires the handler to its services. Auth and session services
// may be nil in tests that only exercise data endpoints.
func NewHandler(cfg *config.Config, c *cache.Cache, resources *services.ResourceService, auth *services.AuthService, sessions *services.SessionService) *Handler {
	return &Handler{
		cfg:       cfg,
		cache:     c,
		resources: resources,
		auth:      auth,
		sessions:  sessions,
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError writes a plain error response in the API's JSON format.
func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeServiceError maps a service error to an HTTP response. Classified
// errors keep their kind and display-safe message; anything else becomes
// an opaque 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*models.APIError); ok {
		code := apiErrorStatus(apiErr)
		h.writeJSON(w, code, models.ErrorResponse{
			Error:   apiErr.Message,
			Kind:    apiErr.Kind,
			Details: apiErr.Details,
			Code:    code,
		})
		return
	}
	slog.Error("Unclassified service error", "error", err)
	h.writeError(w, "Internal server error", http.StatusInternalServerError)
}

// apiErrorStatus picks the console-facing status for a classified error.
// Upstream statuses pass through when they are real HTTP codes; transport
// and parse failures surface as 502.
func apiErrorStatus(err *models.APIError) int {
	if err.Status >= 400 && err.Status < 600 {
		return err.Status
	}
	switch err.Kind {
	case models.KindNetworkError, models.KindMalformedResponse:
		return http.StatusBadGateway
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
