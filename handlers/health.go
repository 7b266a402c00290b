// ABOUTME: Health endpoint for the ops console API
// ABOUTME: Reports upstream configuration and auth state

package handlers

import "net/http"

// Health returns API health status including upstream configuration.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":       "ok",
		"upstream_api": "not_configured",
	}

	if h.cfg != nil && h.cfg.APIBaseURL != "" {
		resp["upstream_api"] = "configured"
	}
	if h.auth != nil {
		_, signedIn := h.auth.Identity()
		resp["authenticated"] = signedIn
	}

	h.writeJSON(w, http.StatusOK, resp)
}
