// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relation infers foreign-key relationships between normalized
// entities from the <entity>Id field-naming convention and merges them
// with explicitly declared relationships.
package relation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// nameIndex resolves candidate entity names case-insensitively without a
// linear scan per lookup. Entities are recorded in declaration order so
// ambiguity resolution is an explicit, input-order-preserving contract:
// an exact case-insensitive match wins, then the singular form of a
// plural index entry; the earliest-declared entity breaks remaining ties.
type nameIndex struct {
	byName map[string]string // lower-cased name → canonical name
}

func buildIndex(entities []types.Entity) nameIndex {
	idx := nameIndex{byName: make(map[string]string, len(entities))}
	for _, e := range entities {
		key := strings.ToLower(e.Name)
		if _, exists := idx.byName[key]; !exists {
			idx.byName[key] = e.Name
		}
	}
	return idx
}

// resolve maps a stripped field prefix ("customer" from customerId) to a
// canonical entity name, or "" when no entity matches.
func (idx nameIndex) resolve(candidate string) string {
	key := strings.ToLower(candidate)
	if name, ok := idx.byName[key]; ok {
		return name
	}
	// Tolerate plural entity declarations: customerId → Customers.
	if name, ok := idx.byName[key+"s"]; ok {
		return name
	}
	if strings.HasSuffix(key, "y") {
		if name, ok := idx.byName[key[:len(key)-1]+"ies"]; ok {
			return name
		}
	}
	return ""
}

// Infer derives many-to-one relationships from fields named <entity>Id.
// For each such field on each entity, a case-insensitive index lookup of
// the stripped prefix yields the referenced entity; a hit emits a
// relationship from the owning field to the referenced entity's id field
// with cardinality * → 1. The relationship inherits the owning entity's
// source so provenance survives into the merged graph. The rule is local
// and per-field; no global conflict resolution is attempted.
func Infer(entities []types.Entity) []types.Relationship {
	idx := buildIndex(entities)
	var rels []types.Relationship

	for _, e := range entities {
		for _, f := range e.Fields {
			prefix, ok := foreignKeyPrefix(f.Name)
			if !ok {
				continue
			}
			target := idx.resolve(prefix)
			if target == "" || target == e.Name {
				continue
			}
			rels = append(rels, types.Relationship{
				ID:   uuid.NewString(),
				Name: fmt.Sprintf("%s.%s -> %s.id", e.Name, f.Name, target),
				Type: types.RelationManyToOne,
				From: types.RelationshipEndpoint{
					Entity:      e.Name,
					Field:       f.Name,
					Cardinality: "*",
				},
				To: types.RelationshipEndpoint{
					Entity:      target,
					Field:       "id",
					Cardinality: "1",
				},
				Source: e.Source,
			})
		}
	}

	return rels
}

// foreignKeyPrefix returns the entity-name prefix of a foreign-key style
// field name. Both the "customerId" and acronym-preserving "customerID"
// spellings count; a field named exactly "id" is the primary key, not a
// reference.
func foreignKeyPrefix(fieldName string) (string, bool) {
	if fieldName == "id" || len(fieldName) <= 2 {
		return "", false
	}
	if !strings.HasSuffix(fieldName, "Id") && !strings.HasSuffix(fieldName, "ID") {
		return "", false
	}
	return fieldName[:len(fieldName)-2], true
}

// Merge combines declared relationships with inferred ones, dropping
// inferred duplicates of a declared from/to pair. Declared relationships
// come first; order within each group is preserved.
func Merge(declared, inferred []types.Relationship) []types.Relationship {
	seen := make(map[string]bool, len(declared))
	for _, r := range declared {
		seen[pairKey(r)] = true
	}

	out := make([]types.Relationship, 0, len(declared)+len(inferred))
	out = append(out, declared...)
	for _, r := range inferred {
		if seen[pairKey(r)] {
			continue
		}
		seen[pairKey(r)] = true
		out = append(out, r)
	}
	return out
}

func pairKey(r types.Relationship) string {
	return strings.ToLower(r.From.Entity + "." + r.From.Field + ">" + r.To.Entity + "." + r.To.Field)
}

// Validate reports relationships whose endpoints name entities missing
// from the current set. The finding is a warning, not a failure, because
// relationships may be produced before all entities exist.
func Validate(entities []types.Entity, rels []types.Relationship) []types.ValidationWarning {
	known := make(map[string]bool, len(entities))
	for _, e := range entities {
		known[strings.ToLower(e.Name)] = true
	}

	var warnings []types.ValidationWarning
	for _, r := range rels {
		for _, end := range []types.RelationshipEndpoint{r.From, r.To} {
			if end.Entity == "" || known[strings.ToLower(end.Entity)] {
				continue
			}
			warnings = append(warnings, types.ValidationWarning{
				Code:    "unknown-entity",
				Message: fmt.Sprintf("relationship %s references unknown entity %q", r.Name, end.Entity),
				Subject: r.ID,
			})
		}
	}
	return warnings
}
