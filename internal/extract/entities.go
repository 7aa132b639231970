// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/normalize"
	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/relation"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Implementations return the model's raw response text for one document;
// decoding and normalization happen on this side of the boundary because
// the response shape is untrusted.
type AIBackend interface {
	ExtractEntities(ctx context.Context, prd *types.StructuredPRD) (string, error)
}

// AIEntity is one loosely typed entity record from the model. Every
// member may be absent or mistyped; normalization substitutes defaults.
type AIEntity struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         string    `json:"type"`
	Fields       []AIField `json:"fields"`
	IsAuditable  *bool     `json:"is_auditable"`
	IsSoftDelete *bool     `json:"is_soft_delete"`
	Confidence   float64   `json:"confidence"`
}

// AIField is one loosely typed field record from the model.
type AIField struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Required   bool     `json:"required"`
	PrimaryKey bool     `json:"primary_key"`
	Unique     bool     `json:"unique"`
	EnumValues []string `json:"enum_values"`
	Confidence float64  `json:"confidence"`
}

// AIRelationship is one loosely typed relationship record from the model.
type AIRelationship struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	FromEntity string `json:"from_entity"`
	FromField  string `json:"from_field"`
	ToEntity   string `json:"to_entity"`
	ToField    string `json:"to_field"`
}

// AISuggestion is a model-proposed improvement. The model sometimes
// returns bare strings instead of objects; both decode.
type AISuggestion struct {
	Category   string  `json:"category"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

// UnmarshalJSON accepts either a JSON object or a bare string.
func (s *AISuggestion) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Category = "schema"
		s.Message = str
		s.Confidence = 0.5
		return nil
	}
	type plain AISuggestion
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = AISuggestion(p)
	return nil
}

// AIResponse is the expected shape of the model's entity extraction
// output.
type AIResponse struct {
	Entities      []AIEntity       `json:"entities"`
	Relationships []AIRelationship `json:"relationships"`
	Suggestions   []AISuggestion   `json:"suggestions"`
}

// DecodeAIResponse is a total function from any response text to an
// AIResponse. A response that fails to parse as the expected shape
// becomes a single low-confidence parse-failure suggestion rather than
// an error; the caller decides whether to retry or fall back to manual
// entry.
func DecodeAIResponse(text string) AIResponse {
	var resp AIResponse
	if err := json.Unmarshal([]byte(text), &resp); err == nil {
		return resp
	}

	// Models wrap JSON in prose or fences often enough to warrant one
	// recovery pass over the outermost object.
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err == nil {
			return resp
		}
	}

	return AIResponse{
		Suggestions: []AISuggestion{{
			Category:   "parse-failure",
			Message:    fmt.Sprintf("model response did not parse as an entity extraction object (%d bytes); manual entry may be needed", len(text)),
			Confidence: 0.1,
		}},
	}
}

// GraphInput gathers entity candidates from the three possible sources.
type GraphInput struct {
	// Declared holds PRD-declared entity definitions.
	Declared []types.DeclaredEntity

	// Screens supplies field mappings for screen-derived entities.
	Screens []types.Screen

	// AI holds a decoded model response, or nil when the AI path is off.
	AI *AIResponse
}

// Graph normalizes all candidate entities, merges them with PRD-declared
// entities taking precedence, infers foreign-key relationships, and
// validates referential consistency. The inputs are not mutated.
func Graph(in GraphInput) *types.EntityGraph {
	g := &types.EntityGraph{}

	var declared []types.Entity
	for _, d := range in.Declared {
		declared = append(declared, normalize.Entity(normalize.FromDeclared(d)))
	}

	var fromScreens []types.Entity
	for _, raw := range normalize.FromScreens(in.Screens) {
		fromScreens = append(fromScreens, normalize.Entity(raw))
	}

	var fromAI []types.Entity
	var declaredRels []types.Relationship
	if in.AI != nil {
		for _, ae := range in.AI.Entities {
			if strings.TrimSpace(ae.Name) == "" {
				continue
			}
			fromAI = append(fromAI, normalize.Entity(rawFromAI(ae)))
		}
		declaredRels = relationshipsFromAI(in.AI.Relationships)
		for _, s := range in.AI.Suggestions {
			g.Suggestions = append(g.Suggestions, types.Suggestion{
				Category:   defaultString(s.Category, "schema"),
				Message:    s.Message,
				Confidence: s.Confidence,
			})
		}
	}

	g.Entities = normalize.Merge(normalize.Merge(declared, fromScreens), fromAI)

	inferred := relation.Infer(g.Entities)
	g.Relationships = relation.Merge(declaredRels, inferred)
	g.Warnings = relation.Validate(g.Entities, g.Relationships)

	return g
}

// rawFromAI lowers a loose model entity into the normalizer's input
// shape with the ai-extracted source marker.
func rawFromAI(ae AIEntity) normalize.RawEntity {
	raw := normalize.RawEntity{
		Name:         ae.Name,
		Description:  ae.Description,
		Type:         ae.Type,
		IsAuditable:  ae.IsAuditable,
		IsSoftDelete: ae.IsSoftDelete,
		Source:       types.SourceAIExtracted,
		Confidence:   ae.Confidence,
	}
	for _, af := range ae.Fields {
		if strings.TrimSpace(af.Name) == "" {
			continue
		}
		raw.Fields = append(raw.Fields, normalize.RawField{
			Name:       af.Name,
			Type:       af.Type,
			Required:   af.Required,
			PrimaryKey: af.PrimaryKey,
			Unique:     af.Unique,
			EnumValues: af.EnumValues,
			Confidence: af.Confidence,
		})
	}
	return raw
}

// relationshipsFromAI converts loose model relationships to canonical
// ones, dropping records without both endpoints.
func relationshipsFromAI(rels []AIRelationship) []types.Relationship {
	var out []types.Relationship
	for _, r := range rels {
		from := normalize.ToPascalCase(r.FromEntity)
		to := normalize.ToPascalCase(r.ToEntity)
		if from == "" || to == "" {
			continue
		}
		rt := normalizeRelationType(r.Type)
		rel := types.Relationship{
			ID:   stableRelationshipID(from, r.FromField, to, r.ToField),
			Name: defaultString(r.Name, fmt.Sprintf("%s -> %s", from, to)),
			Type: rt,
			From: types.RelationshipEndpoint{
				Entity:      from,
				Field:       normalize.ToCamelCase(defaultString(r.FromField, "id")),
				Cardinality: fromCardinality(rt),
			},
			To: types.RelationshipEndpoint{
				Entity:      to,
				Field:       normalize.ToCamelCase(defaultString(r.ToField, "id")),
				Cardinality: toCardinality(rt),
			},
			Source: types.SourceAIExtracted,
		}
		out = append(out, rel)
	}
	return out
}

// normalizeRelationType maps loose relationship tokens onto the closed
// set, defaulting to many-to-one.
func normalizeRelationType(raw string) types.RelationType {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")) {
	case "one-to-one", "1:1", "1-1":
		return types.RelationOneToOne
	case "one-to-many", "1:n", "1:m", "1-n":
		return types.RelationOneToMany
	case "many-to-many", "n:m", "m:n", "n-m":
		return types.RelationManyToMany
	default:
		return types.RelationManyToOne
	}
}

func fromCardinality(rt types.RelationType) string {
	if rt == types.RelationOneToOne || rt == types.RelationOneToMany {
		return "1"
	}
	return "*"
}

func toCardinality(rt types.RelationType) string {
	if rt == types.RelationOneToOne || rt == types.RelationManyToOne {
		return "1"
	}
	return "*"
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// EntityGraph runs the model-assisted extraction for one document and
// builds the merged graph. The backend call retries with exponential
// backoff; a response that cannot be parsed still yields a graph (with a
// parse-failure suggestion), so the only errors are transport-level.
func EntityGraph(ctx context.Context, backend AIBackend, prd *types.StructuredPRD, maxRetries int) (*types.EntityGraph, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	text, err := callWithRetry(ctx, backend, prd, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("extracting entities: %w", err)
	}

	resp := DecodeAIResponse(text)
	screens := collectScreens(prd)

	return Graph(GraphInput{
		Declared: prd.DataRequirements.Entities,
		Screens:  screens,
		AI:       &resp,
	}), nil
}

// callWithRetry calls the AI backend with exponential backoff.
func callWithRetry(ctx context.Context, backend AIBackend, prd *types.StructuredPRD, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.ExtractEntities(ctx, prd)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// collectScreens flattens the screens owned by all requirements.
func collectScreens(prd *types.StructuredPRD) []types.Screen {
	var screens []types.Screen
	for _, fr := range prd.FunctionalRequirements {
		screens = append(screens, fr.Screens...)
	}
	return screens
}

// stableRelationshipID derives a deterministic ID for a declared
// relationship from its endpoints, so re-extraction of unchanged input
// yields the same ID.
func stableRelationshipID(fromEntity, fromField, toEntity, toField string) string {
	return strings.ToLower(fmt.Sprintf("rel-%s-%s-%s-%s",
		defaultString(fromEntity, "x"), defaultString(fromField, "id"),
		defaultString(toEntity, "x"), defaultString(toField, "id")))
}
