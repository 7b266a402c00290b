// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Auth (BFF session endpoints)
		{Method: http.MethodPost, Path: "/api/v1/auth/login", Handler: h.Login},
		{Method: http.MethodPost, Path: "/api/v1/auth/logout", Handler: h.Logout},
		{Method: http.MethodGet, Path: "/api/v1/auth/me", Handler: h.Me},

		// Generic resource data
		{Method: http.MethodGet, Path: "/api/v1/data/{resource}", Handler: h.ListResources},
		{Method: http.MethodPost, Path: "/api/v1/data/{resource}", Handler: h.CreateResource},
		{Method: http.MethodGet, Path: "/api/v1/data/{resource}/{id}", Handler: h.GetResource},
		{Method: http.MethodPatch, Path: "/api/v1/data/{resource}/{id}", Handler: h.UpdateResource},
		{Method: http.MethodDelete, Path: "/api/v1/data/{resource}/{id}", Handler: h.DeleteResource},

		// Best-effort batches
		{Method: http.MethodPost, Path: "/api/v1/data/{resource}/batch-update", Handler: h.BatchUpdateResources},
		{Method: http.MethodPost, Path: "/api/v1/data/{resource}/batch-delete", Handler: h.BatchDeleteResources},
	}
}
