// ABOUTME: Flattens JSON:API documents into plain records for the console UI
// ABOUTME: Single relations resolve against included and promote to the top level

package services

import (
	"github.com/calvora/ops-console/backend/models"
)

// NormalizeOne flattens a single-resource document. A null primary datum
// returns nil.
func NormalizeOne(doc *models.ResourceDocument) models.NormalizedRecord {
	if doc == nil || len(doc.Data.Items) == 0 {
		return nil
	}
	lookup := buildLookup(doc)
	return flattenResource(doc.Data.Items[0], lookup)
}

// NormalizeMany flattens every primary resource in a document, preserving
// order. An empty or null data member yields an empty slice.
func NormalizeMany(doc *models.ResourceDocument) []models.NormalizedRecord {
	if doc == nil {
		return []models.NormalizedRecord{}
	}
	lookup := buildLookup(doc)
	records := make([]models.NormalizedRecord, 0, len(doc.Data.Items))
	for _, item := range doc.Data.Items {
		records = append(records, flattenResource(item, lookup))
	}
	return records
}

// buildLookup indexes every resource in the document, primary and
// included, by (type, id).
func buildLookup(doc *models.ResourceDocument) map[string]models.ResourceObject {
	lookup := make(map[string]models.ResourceObject, len(doc.Data.Items)+len(doc.Included))
	for _, item := range doc.Data.Items {
		lookup[lookupKey(item.Type, item.ID)] = item
	}
	for _, item := range doc.Included {
		lookup[lookupKey(item.Type, item.ID)] = item
	}
	return lookup
}

func lookupKey(resourceType, id string) string {
	return resourceType + "\x00" + id
}

// relationDepth bounds relationship resolution: a primary record's
// relations resolve, and those related objects resolve their own
// relations in turn. The bound makes cyclic references terminate.
const relationDepth = 2

// flattenResource builds one normalized record: attributes first, id and
// type last so a colliding attribute can never mask the real identity.
func flattenResource(obj models.ResourceObject, lookup map[string]models.ResourceObject) models.NormalizedRecord {
	return flatten(obj, lookup, relationDepth)
}

// flatten resolves a resource's relationships against the lookup until
// depth runs out; objects at depth zero keep id, type, and attributes
// only.
func flatten(obj models.ResourceObject, lookup map[string]models.ResourceObject, depth int) models.NormalizedRecord {
	record := make(models.NormalizedRecord, len(obj.Attributes)+len(obj.Relationships)+3)
	for key, value := range obj.Attributes {
		record[key] = value
	}
	record["id"] = obj.ID
	record["type"] = obj.Type

	if depth == 0 || len(obj.Relationships) == 0 {
		return record
	}

	resolved := make(map[string]any, len(obj.Relationships))
	for name, rel := range obj.Relationships {
		if rel.Data.IsArray {
			// To-many relations stay under the relationships sub-map
			// only; promoting them would shadow list-valued attributes.
			items := make([]models.NormalizedRecord, 0, len(rel.Data.Many))
			for _, ident := range rel.Data.Many {
				if target, ok := lookup[lookupKey(ident.Type, ident.ID)]; ok {
					items = append(items, flatten(target, lookup, depth-1))
				}
			}
			resolved[name] = items
			continue
		}

		var value any
		if rel.Data.One != nil {
			if target, ok := lookup[lookupKey(rel.Data.One.Type, rel.Data.One.ID)]; ok {
				value = flatten(target, lookup, depth-1)
			}
		}
		resolved[name] = value
		if _, taken := record[name]; !taken {
			record[name] = value
		}
	}
	record["relationships"] = resolved
	return record
}
