// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DataType is the closed set of canonical field types. Free-text type
// tokens from any source normalize into this set, defaulting to
// TypeString for unrecognized input.
type DataType string

const (
	TypeString   DataType = "string"
	TypeText     DataType = "text"
	TypeInteger  DataType = "integer"
	TypeDecimal  DataType = "decimal"
	TypeBoolean  DataType = "boolean"
	TypeDate     DataType = "date"
	TypeDateTime DataType = "datetime"
	TypeUUID     DataType = "uuid"
	TypeJSON     DataType = "json"
	TypeEnum     DataType = "enum"
)

// EntityType categorizes an entity's role in the data model.
type EntityType string

const (
	EntityMaster      EntityType = "master"
	EntityTransaction EntityType = "transaction"
	EntityReference   EntityType = "reference"
	EntityLookup      EntityType = "lookup"
	EntityJunction    EntityType = "junction"
)

// SourceType records where an entity, field, or relationship came from.
type SourceType string

const (
	SourceManual        SourceType = "manual"
	SourceAIExtracted   SourceType = "ai-extracted"
	SourcePRDExplicit   SourceType = "prd-explicit"
	SourceScreenMapping SourceType = "screen-mapping"
)

// FieldConstraints holds the structural constraints on a field.
type FieldConstraints struct {
	PrimaryKey bool `json:"primary_key" yaml:"primary_key"`
	Unique     bool `json:"unique" yaml:"unique"`
	Nullable   bool `json:"nullable" yaml:"nullable"`
	Indexed    bool `json:"indexed" yaml:"indexed"`

	// MinLength and MaxLength bound string fields; zero means unbounded.
	MinLength int `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength int `json:"max_length,omitempty" yaml:"max_length,omitempty"`

	// Min and Max bound numeric fields; nil means unbounded.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Field is one normalized entity field. Name is camelCase and ColumnName
// is the matching snake_case form.
type Field struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	ColumnName  string           `json:"column_name" yaml:"column_name"`
	DataType    DataType         `json:"data_type" yaml:"data_type"`
	Constraints FieldConstraints `json:"constraints" yaml:"constraints"`

	// EnumValues lists the allowed values when DataType is enum.
	EnumValues []string `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`

	// Source records the extraction origin of this field.
	Source SourceType `json:"source" yaml:"source"`

	// Confidence is the extraction certainty in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Entity is one normalized entity. Invariants: exactly one field has
// Constraints.PrimaryKey set; field names are unique within the entity;
// when IsAuditable the four audit fields are present by name; when
// IsSoftDelete the two soft-delete fields are present by name.
type Entity struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	TableName string     `json:"table_name" yaml:"table_name"`
	Type      EntityType `json:"type" yaml:"type"`
	Fields    []Field    `json:"fields" yaml:"fields"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	IsAuditable  bool `json:"is_auditable" yaml:"is_auditable"`
	IsSoftDelete bool `json:"is_soft_delete" yaml:"is_soft_delete"`

	// Source records the extraction origin of this entity.
	Source SourceType `json:"source" yaml:"source"`

	// Confidence is the extraction certainty in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// RelationType categorizes a relationship between two entities.
type RelationType string

const (
	RelationOneToOne   RelationType = "one-to-one"
	RelationOneToMany  RelationType = "one-to-many"
	RelationManyToOne  RelationType = "many-to-one"
	RelationManyToMany RelationType = "many-to-many"
)

// RelationshipEndpoint names one side of a relationship.
type RelationshipEndpoint struct {
	// Entity is the entity name (PascalCase).
	Entity string `json:"entity" yaml:"entity"`

	// Field is the participating field name (camelCase).
	Field string `json:"field" yaml:"field"`

	// Cardinality is "1" or "*".
	Cardinality string `json:"cardinality" yaml:"cardinality"`
}

// Relationship links two entities. From and To reference entity names in
// the current entity set; a reference to an unknown entity is reported as
// a validation warning rather than rejected, because relationships may be
// produced before all entities exist.
type Relationship struct {
	ID     string               `json:"id" yaml:"id"`
	Name   string               `json:"name" yaml:"name"`
	Type   RelationType         `json:"type" yaml:"type"`
	From   RelationshipEndpoint `json:"from" yaml:"from"`
	To     RelationshipEndpoint `json:"to" yaml:"to"`
	Source SourceType           `json:"source" yaml:"source"`
}

// Suggestion is a free-form note surfaced to the caller, used both for
// model-proposed improvements and for reporting a response that failed to
// parse as the expected shape.
type Suggestion struct {
	// Category groups the suggestion (e.g. "schema", "parse-failure").
	Category string `json:"category" yaml:"category"`

	// Message is the human-readable suggestion text.
	Message string `json:"message" yaml:"message"`

	// Confidence is low for synthesized failure records.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// ValidationWarning is a non-fatal consistency finding, such as a
// relationship referencing an entity that is not in the current set.
type ValidationWarning struct {
	// Code identifies the warning class (e.g. "unknown-entity").
	Code string `json:"code" yaml:"code"`

	// Message describes the finding.
	Message string `json:"message" yaml:"message"`

	// Subject is the ID or name of the object the warning concerns.
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// EntityGraph is the complete normalized data model for one extraction
// pass: entities, relationships, model suggestions, and any referential
// warnings found while merging.
type EntityGraph struct {
	Entities      []Entity            `json:"entities" yaml:"entities"`
	Relationships []Relationship      `json:"relationships" yaml:"relationships"`
	Suggestions   []Suggestion        `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Warnings      []ValidationWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
