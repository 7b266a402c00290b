// ABOUTME: Query parameter contracts for list-style resource operations
// ABOUTME: Mirrors the console UI's pagination, sort, filter, and include inputs

package models

// Pagination selects a page of results. Page is 1-based.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// Sort orders results by a single field. Order is "ASC" or "DESC".
type Sort struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// ListParams carries the verb-specific parameters for list and reference
// reads.
type ListParams struct {
	Pagination Pagination     `json:"pagination"`
	Sort       Sort           `json:"sort"`
	Filter     map[string]any `json:"filter,omitempty"`
	Include    []string       `json:"include,omitempty"`
}
