// ABOUTME: CRUD verbs for the upstream resource API in console form
// ABOUTME: Reads are coalesced, batches are best-effort, writes pre-write nested relations

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/calvora/ops-console/backend/models"
)

// defaultTotalField is the meta key holding a list's total record count.
const defaultTotalField = "total"

// ListResult is a page of normalized records plus the collection total.
type ListResult struct {
	Data  []models.NormalizedRecord `json:"data"`
	Total int                       `json:"total"`
}

// BatchResult reports which records of a best-effort batch succeeded.
type BatchResult struct {
	Data []string `json:"data"`
}

// ResourceService exposes the console's data verbs against the upstream
// resource API. Resource names map to URL paths as-is, so nested names
// like "privates/users" address nested endpoints.
type ResourceService struct {
	requester  *Requester
	coalescer  *RequestCoalescer
	totalField string
}

// NewResourceService creates the service. An empty totalField falls back
// to "total".
func NewResourceService(requester *Requester, coalescer *RequestCoalescer, totalField string) *ResourceService {
	if totalField == "" {
		totalField = defaultTotalField
	}
	return &ResourceService{
		requester:  requester,
		coalescer:  coalescer,
		totalField: totalField,
	}
}

// List fetches a page of records. Identical lists issued within the
// coalescing window share one upstream call.
func (s *ResourceService) List(ctx context.Context, resource string, params models.ListParams) (*ListResult, error) {
	key := CoalesceKey("list", resource, params)
	resp, err := s.coalescer.Do(key, func() (*Response, error) {
		return s.requester.Do(ctx, resource, RequestOptions{
			Method: http.MethodGet,
			Query:  listQuery(params),
		})
	})
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to parse list response for %s: %w", resource, err)
	}

	return &ListResult{
		Data:  NormalizeMany(doc),
		Total: s.docTotal(doc),
	}, nil
}

// GetOne fetches a single record by id, coalesced like List.
func (s *ResourceService) GetOne(ctx context.Context, resource, id string, include []string) (models.NormalizedRecord, error) {
	key := CoalesceKey("getOne", resource, map[string]any{"id": id, "include": include})
	resp, err := s.coalescer.Do(key, func() (*Response, error) {
		query := url.Values{}
		if len(include) > 0 {
			query.Set("include", strings.Join(include, ","))
		}
		return s.requester.Do(ctx, resource+"/"+id, RequestOptions{
			Method: http.MethodGet,
			Query:  query,
		})
	})
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to parse record %s/%s: %w", resource, id, err)
	}
	return NormalizeOne(doc), nil
}

// GetMany fetches a set of records by id. Failures are skipped with a
// warning; the result holds whatever succeeded, in request order.
func (s *ResourceService) GetMany(ctx context.Context, resource string, ids []string) ([]models.NormalizedRecord, error) {
	records := make([]models.NormalizedRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.GetOne(ctx, resource, id, nil)
		if err != nil {
			slog.Warn("Skipping unfetchable record in batch read",
				"resource", resource, "id", id, "error", err)
			continue
		}
		if record != nil {
			records = append(records, record)
		}
	}
	return records, nil
}

// GetManyReference lists records related to a target record, merging the
// reference into the caller's filter.
func (s *ResourceService) GetManyReference(ctx context.Context, resource, target, targetID string, params models.ListParams) (*ListResult, error) {
	merged := make(map[string]any, len(params.Filter)+1)
	for k, v := range params.Filter {
		merged[k] = v
	}
	merged[target] = targetID
	params.Filter = merged
	return s.List(ctx, resource, params)
}

// Create writes a new record. Nested relationship objects are written
// first against their own endpoints and replaced by references.
func (s *ResourceService) Create(ctx context.Context, resource string, attributes map[string]any) (models.NormalizedRecord, error) {
	prepared, err := s.writeRelationships(ctx, attributes)
	if err != nil {
		return nil, err
	}

	resp, err := s.requester.Do(ctx, resource, RequestOptions{
		Method: http.MethodPost,
		Body:   resourcePayload(resource, "", prepared),
	})
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to parse create response for %s: %w", resource, err)
	}
	return NormalizeOne(doc), nil
}

// Update patches an existing record, pre-writing nested relationship
// objects the same way Create does.
func (s *ResourceService) Update(ctx context.Context, resource, id string, attributes map[string]any) (models.NormalizedRecord, error) {
	prepared, err := s.writeRelationships(ctx, attributes)
	if err != nil {
		return nil, err
	}

	resp, err := s.requester.Do(ctx, resource+"/"+id, RequestOptions{
		Method: http.MethodPatch,
		Body:   resourcePayload(resource, id, prepared),
	})
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to parse update response for %s/%s: %w", resource, id, err)
	}
	return NormalizeOne(doc), nil
}

// UpdateMany applies the same attribute patch to each id, best-effort.
// The result lists the ids that were updated.
func (s *ResourceService) UpdateMany(ctx context.Context, resource string, ids []string, attributes map[string]any) (*BatchResult, error) {
	succeeded := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := s.Update(ctx, resource, id, attributes); err != nil {
			slog.Warn("Skipping failed record in batch update",
				"resource", resource, "id", id, "error", err)
			continue
		}
		succeeded = append(succeeded, id)
	}
	return &BatchResult{Data: succeeded}, nil
}

// Delete removes a record.
func (s *ResourceService) Delete(ctx context.Context, resource, id string) error {
	_, err := s.requester.Do(ctx, resource+"/"+id, RequestOptions{
		Method: http.MethodDelete,
	})
	return err
}

// DeleteMany removes a set of records, best-effort, returning the ids
// that were deleted.
func (s *ResourceService) DeleteMany(ctx context.Context, resource string, ids []string) (*BatchResult, error) {
	succeeded := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := s.Delete(ctx, resource, id); err != nil {
			slog.Warn("Skipping failed record in batch delete",
				"resource", resource, "id", id, "error", err)
			continue
		}
		succeeded = append(succeeded, id)
	}
	return &BatchResult{Data: succeeded}, nil
}

// writeRelationships walks the attribute map for nested relationship
// objects (maps carrying a "type" key) and writes each against its own
// pluralized endpoint, substituting a {data: {id, type}} reference. The
// pre-writes are not transactional with the parent write.
func (s *ResourceService) writeRelationships(ctx context.Context, attributes map[string]any) (map[string]any, error) {
	prepared := make(map[string]any, len(attributes))
	for key, value := range attributes {
		nested, ok := value.(map[string]any)
		if !ok {
			prepared[key] = value
			continue
		}
		nestedType, ok := nested["type"].(string)
		if !ok || nestedType == "" {
			prepared[key] = value
			continue
		}

		endpoint := Pluralize(nestedType)
		nestedAttrs := make(map[string]any, len(nested))
		for k, v := range nested {
			if k == "id" || k == "type" {
				continue
			}
			nestedAttrs[k] = v
		}

		var written models.NormalizedRecord
		var err error
		if nestedID, _ := nested["id"].(string); nestedID != "" {
			written, err = s.Update(ctx, endpoint, nestedID, nestedAttrs)
		} else {
			written, err = s.Create(ctx, endpoint, nestedAttrs)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write nested %s relationship %q: %w", nestedType, key, err)
		}

		prepared[key] = map[string]any{
			"data": map[string]any{
				"id":   written.ID(),
				"type": nestedType,
			},
		}
	}
	return prepared, nil
}

// resourcePayload wraps attributes in the document envelope the upstream
// API expects for writes.
func resourcePayload(resource, id string, attributes map[string]any) map[string]any {
	data := map[string]any{
		"type":       resourceType(resource),
		"attributes": attributes,
	}
	if id != "" {
		data["id"] = id
	}
	return map[string]any{"data": data}
}

// resourceType derives the wire type from a possibly nested resource
// name: the last path segment, singularized.
func resourceType(resource string) string {
	segments := strings.Split(resource, "/")
	return Singularize(segments[len(segments)-1])
}

// listQuery renders list params into the upstream's query conventions:
// page[number], page[size], filter[field], sort with a leading minus for
// descending, and a comma-joined include.
func listQuery(params models.ListParams) url.Values {
	query := url.Values{}
	if params.Pagination.Page > 0 {
		query.Set("page[number]", strconv.Itoa(params.Pagination.Page))
	}
	if params.Pagination.PerPage > 0 {
		query.Set("page[size]", strconv.Itoa(params.Pagination.PerPage))
	}
	if params.Sort.Field != "" {
		field := params.Sort.Field
		if strings.EqualFold(params.Sort.Order, "DESC") {
			field = "-" + field
		}
		query.Set("sort", field)
	}
	for key, value := range params.Filter {
		query.Set("filter["+key+"]", filterValue(value))
	}
	if len(params.Include) > 0 {
		query.Set("include", strings.Join(params.Include, ","))
	}
	return query
}

// filterValue renders a filter value for the query string. Scalars pass
// through; composites serialize as JSON.
func filterValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// docTotal reads the collection total from document meta, falling back to
// the primary data length when absent.
func (s *ResourceService) docTotal(doc *models.ResourceDocument) int {
	if doc.Meta != nil {
		if raw, ok := doc.Meta[s.totalField]; ok {
			switch v := raw.(type) {
			case float64:
				return int(v)
			case int:
				return v
			case string:
				if n, err := strconv.Atoi(v); err == nil {
					return n
				}
			}
		}
	}
	return len(doc.Data.Items)
}

// Pluralize maps a resource type to its collection endpoint name.
func Pluralize(word string) string {
	switch {
	case word == "":
		return word
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"), strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"
	case strings.HasSuffix(word, "y") && !hasVowelBeforeY(word):
		return word[:len(word)-1] + "ies"
	default:
		return word + "s"
	}
}

// Singularize is the inverse of Pluralize for the suffixes it produces.
func Singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ses"), strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "zes"), strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && len(word) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}

func hasVowelBeforeY(word string) bool {
	if len(word) < 2 {
		return false
	}
	return strings.ContainsRune("aeiou", rune(word[len(word)-2]))
}
