// ABOUTME: JSON:API wire types for documents, resources, and relationships
// ABOUTME: Custom unmarshaling handles single-vs-array primary data and null relationship refs

package models

import (
	"bytes"
	"encoding/json"
)

// ResourceDocument is the {data, included, meta} envelope returned by the
// resource API.
type ResourceDocument struct {
	Data     PrimaryData      `json:"data"`
	Included []ResourceObject `json:"included,omitempty"`
	Meta     map[string]any   `json:"meta,omitempty"`
}

// PrimaryData holds the document's primary data. The wire format allows a
// single resource object, an array of them, or null.
type PrimaryData struct {
	Items  []ResourceObject
	Single bool
}

func (p *PrimaryData) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		p.Items = nil
		p.Single = false
		return nil
	}

	if trimmed[0] == '[' {
		p.Single = false
		return json.Unmarshal(trimmed, &p.Items)
	}

	var obj ResourceObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	p.Items = []ResourceObject{obj}
	p.Single = true
	return nil
}

func (p PrimaryData) MarshalJSON() ([]byte, error) {
	if p.Single {
		if len(p.Items) == 0 {
			return []byte("null"), nil
		}
		return json.Marshal(p.Items[0])
	}
	if p.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Items)
}

// ResourceObject is a single resource in a document.
type ResourceObject struct {
	ID            string                     `json:"id"`
	Type          string                     `json:"type"`
	Attributes    map[string]any             `json:"attributes,omitempty"`
	Relationships map[string]RelationshipRef `json:"relationships,omitempty"`
}

// ResourceIdentifier is a {type, id} reference to another resource.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RelationshipRef wraps the data member of a relationship entry.
type RelationshipRef struct {
	Data RelationshipData `json:"data"`
}

// RelationshipData is a single identifier, an array of identifiers, or an
// explicit null. IsArray distinguishes an empty array from null.
type RelationshipData struct {
	One     *ResourceIdentifier
	Many    []ResourceIdentifier
	IsArray bool
}

func (r *RelationshipData) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.One = nil
		r.Many = nil
		r.IsArray = false
		return nil
	}

	if trimmed[0] == '[' {
		r.IsArray = true
		return json.Unmarshal(trimmed, &r.Many)
	}

	var ident ResourceIdentifier
	if err := json.Unmarshal(trimmed, &ident); err != nil {
		return err
	}
	r.One = &ident
	return nil
}

func (r RelationshipData) MarshalJSON() ([]byte, error) {
	if r.IsArray {
		if r.Many == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.Many)
	}
	if r.One == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.One)
}

// NormalizedRecord is a flattened resource: id, type, every attribute key,
// resolved single relationships promoted to the top level, and a
// "relationships" sub-map mirroring the resolved values.
type NormalizedRecord map[string]any

// ID returns the record's id, or empty string if absent.
func (r NormalizedRecord) ID() string {
	id, _ := r["id"].(string)
	return id
}

// TypeName returns the record's resource type, or empty string if absent.
func (r NormalizedRecord) TypeName() string {
	t, _ := r["type"].(string)
	return t
}
