// ABOUTME: Generic data endpoints exposing the upstream resource verbs
// ABOUTME: One set of routes serves every resource the console manages

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/calvora/ops-console/backend/models"
	"github.com/calvora/ops-console/backend/services"
)

// ListResources serves GET /api/v1/data/{resource}. Plain calls list a
// page; ?ids= fetches a batch by id; ?target=&targetId= lists records
// referencing another record. Nested resource names arrive with an
// escaped slash in the path segment.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resource := r.PathValue("resource")
	if err := services.ValidateResource(resource); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	query := r.URL.Query()

	if rawIDs := query.Get("ids"); rawIDs != "" {
		ids := splitIDs(rawIDs)
		for _, id := range ids {
			if err := services.ValidateRecordID(id); err != nil {
				h.writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		records, err := h.resources.GetMany(r.Context(), resource, ids)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"data": records})
		return
	}

	params, err := listParamsFromQuery(query)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if target := query.Get("target"); target != "" {
		targetID := query.Get("targetId")
		if err := services.ValidateRecordID(targetID); err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err := h.resources.GetManyReference(r.Context(), resource, target, targetID, params)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.resources.List(r.Context(), resource, params)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GetResource serves GET /api/v1/data/{resource}/{id}.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	resource, id, ok := h.resourceAndID(w, r)
	if !ok {
		return
	}

	var include []string
	if raw := r.URL.Query().Get("include"); raw != "" {
		include = strings.Split(raw, ",")
	}

	record, err := h.resources.GetOne(r.Context(), resource, id, include)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": record})
}

// CreateResource serves POST /api/v1/data/{resource}. The body is the
// attribute map for the new record.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	resource := r.PathValue("resource")
	if err := services.ValidateResource(resource); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var attributes map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attributes); err != nil {
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	record, err := h.resources.Create(r.Context(), resource, attributes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"data": record})
}

// UpdateResource serves PATCH /api/v1/data/{resource}/{id}.
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	resource, id, ok := h.resourceAndID(w, r)
	if !ok {
		return
	}

	var attributes map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attributes); err != nil {
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	record, err := h.resources.Update(r.Context(), resource, id, attributes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": record})
}

// DeleteResource serves DELETE /api/v1/data/{resource}/{id}.
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	resource, id, ok := h.resourceAndID(w, r)
	if !ok {
		return
	}

	if err := h.resources.Delete(r.Context(), resource, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"id": id}})
}

// batchUpdateRequest is the body for POST {resource}/batch-update.
type batchUpdateRequest struct {
	IDs        []string       `json:"ids"`
	Attributes map[string]any `json:"attributes"`
}

// BatchUpdateResources applies one attribute patch to many records. The
// response lists the ids that were updated; failed records are skipped.
func (h *Handler) BatchUpdateResources(w http.ResponseWriter, r *http.Request) {
	resource := r.PathValue("resource")
	if err := services.ValidateResource(resource); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req batchUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		h.writeError(w, "ids is required", http.StatusBadRequest)
		return
	}

	result, err := h.resources.UpdateMany(r.Context(), resource, req.IDs, req.Attributes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// batchDeleteRequest is the body for POST {resource}/batch-delete.
type batchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchDeleteResources removes many records, best-effort.
func (h *Handler) BatchDeleteResources(w http.ResponseWriter, r *http.Request) {
	resource := r.PathValue("resource")
	if err := services.ValidateResource(resource); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		h.writeError(w, "ids is required", http.StatusBadRequest)
		return
	}

	result, err := h.resources.DeleteMany(r.Context(), resource, req.IDs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// resourceAndID extracts and validates the path values shared by the
// single-record endpoints.
func (h *Handler) resourceAndID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	resource := r.PathValue("resource")
	if err := services.ValidateResource(resource); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	id := r.PathValue("id")
	if err := services.ValidateRecordID(id); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	return resource, id, true
}

// listParamsFromQuery parses the console's list query surface: page,
// perPage, sort, order, include (comma list), and filter as URL-encoded
// JSON.
func listParamsFromQuery(query map[string][]string) (models.ListParams, error) {
	params := models.ListParams{}

	get := func(key string) string {
		if vals := query[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	if raw := get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, errInvalidParam("page")
		}
		params.Pagination.Page = page
	}
	if raw := get("perPage"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return params, errInvalidParam("perPage")
		}
		params.Pagination.PerPage = perPage
	}

	params.Sort.Field = get("sort")
	if order := get("order"); order != "" {
		upper := strings.ToUpper(order)
		if upper != "ASC" && upper != "DESC" {
			return params, errInvalidParam("order")
		}
		params.Sort.Order = upper
	}

	if raw := get("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params.Filter); err != nil {
			return params, errInvalidParam("filter")
		}
	}

	if raw := get("include"); raw != "" {
		params.Include = strings.Split(raw, ",")
	}

	return params, nil
}

type paramError string

func (e paramError) Error() string { return "invalid " + string(e) + " parameter" }

func errInvalidParam(name string) error { return paramError(name) }

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
