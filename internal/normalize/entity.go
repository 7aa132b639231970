// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/google/uuid"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// RawField is a loosely typed field record before normalization. Any
// source may leave any member zero; normalization substitutes defaults.
type RawField struct {
	Name       string
	Type       string
	Required   bool
	PrimaryKey bool
	Unique     bool
	EnumValues []string
	Confidence float64
}

// RawEntity is a loosely typed entity record before normalization.
// IsAuditable and IsSoftDelete are tri-state: nil means "not explicitly
// set" and enables the default field injection.
type RawEntity struct {
	Name         string
	Description  string
	Type         string
	Fields       []RawField
	IsAuditable  *bool
	IsSoftDelete *bool
	Source       types.SourceType
	Confidence   float64
}

// auditFields are appended to every auditable entity, skipping any that
// already exist by name.
var auditFields = []struct {
	name string
	dt   types.DataType
}{
	{"createdAt", types.TypeDateTime},
	{"createdBy", types.TypeString},
	{"updatedAt", types.TypeDateTime},
	{"updatedBy", types.TypeString},
}

// softDeleteFields are appended to every soft-deletable entity under the
// same skip-if-present rule.
var softDeleteFields = []struct {
	name string
	dt   types.DataType
}{
	{"deletedAt", types.TypeDateTime},
	{"deletedBy", types.TypeString},
}

// entityTypeKeywords drives entity-type inference from the entity name
// when no explicit type is given. First matching row wins.
var entityTypeKeywords = []struct {
	keywords []string
	etype    types.EntityType
}{
	{[]string{"order", "invoice", "payment", "transaction", "booking", "shipment", "receipt", "request", "entry", "movement"}, types.EntityTransaction},
	{[]string{"status", "type", "category", "priority", "stage"}, types.EntityLookup},
	{[]string{"currency", "country", "region", "unit", "uom", "rate", "setting", "config"}, types.EntityReference},
}

// Entity converts one raw record into a canonical Entity: PascalCase
// name, snake_case table name, normalized fields, an injected primary
// key when none is declared, and audit/soft-delete fields unless they
// were explicitly disabled.
func Entity(raw RawEntity) types.Entity {
	name := ToPascalCase(raw.Name)

	e := types.Entity{
		ID:           uuid.NewString(),
		Name:         name,
		TableName:    ToSnakeCase(raw.Name),
		Description:  strings.TrimSpace(raw.Description),
		IsAuditable:  raw.IsAuditable == nil || *raw.IsAuditable,
		IsSoftDelete: raw.IsSoftDelete == nil || *raw.IsSoftDelete,
		Source:       raw.Source,
		Confidence:   clampConfidence(raw.Confidence),
	}
	if e.Source == "" {
		e.Source = types.SourceManual
	}

	e.Type = normalizeEntityType(raw.Type, name)

	seen := make(map[string]bool)
	for _, rf := range raw.Fields {
		f := field(rf, e.Source)
		if f.Name == "" || seen[strings.ToLower(f.Name)] {
			continue
		}
		seen[strings.ToLower(f.Name)] = true
		e.Fields = append(e.Fields, f)
	}

	e.Fields = ensurePrimaryKey(e.Fields, e.Source, &seen)

	if e.IsAuditable {
		for _, af := range auditFields {
			e.Fields = appendIfAbsent(e.Fields, seen, af.name, af.dt, e.Source)
		}
	}
	if e.IsSoftDelete {
		for _, sf := range softDeleteFields {
			e.Fields = appendIfAbsent(e.Fields, seen, sf.name, sf.dt, e.Source)
		}
	}

	return e
}

// field normalizes one raw field record.
func field(rf RawField, src types.SourceType) types.Field {
	name := ToCamelCase(rf.Name)
	f := types.Field{
		ID:         uuid.NewString(),
		Name:       name,
		ColumnName: ToSnakeCase(rf.Name),
		DataType:   NormalizeDataType(rf.Type),
		Constraints: types.FieldConstraints{
			PrimaryKey: rf.PrimaryKey,
			Unique:     rf.Unique,
			Nullable:   !rf.Required && !rf.PrimaryKey,
		},
		EnumValues: rf.EnumValues,
		Source:     src,
		Confidence: clampConfidence(rf.Confidence),
	}
	if len(rf.EnumValues) > 0 {
		f.DataType = types.TypeEnum
	}
	return f
}

// ensurePrimaryKey injects a uuid "id" field at the front when no field
// is marked primary. When several fields claim the primary key, the first
// wins and the rest are demoted to unique, preserving the exactly-one-PK
// invariant.
func ensurePrimaryKey(fields []types.Field, src types.SourceType, seen *map[string]bool) []types.Field {
	foundPK := false
	for i := range fields {
		if !fields[i].Constraints.PrimaryKey {
			continue
		}
		if foundPK {
			fields[i].Constraints.PrimaryKey = false
			fields[i].Constraints.Unique = true
			continue
		}
		foundPK = true
	}
	if foundPK {
		return fields
	}

	pk := types.Field{
		ID:         uuid.NewString(),
		Name:       "id",
		ColumnName: "id",
		DataType:   types.TypeUUID,
		Constraints: types.FieldConstraints{
			PrimaryKey: true,
		},
		Source:     src,
		Confidence: 1.0,
	}
	(*seen)["id"] = true
	return append([]types.Field{pk}, fields...)
}

// appendIfAbsent appends a generated field unless one with the same name
// (case-insensitive) already exists.
func appendIfAbsent(fields []types.Field, seen map[string]bool, name string, dt types.DataType, src types.SourceType) []types.Field {
	key := strings.ToLower(name)
	if seen[key] {
		return fields
	}
	seen[key] = true
	return append(fields, types.Field{
		ID:         uuid.NewString(),
		Name:       name,
		ColumnName: ToSnakeCase(name),
		DataType:   dt,
		Constraints: types.FieldConstraints{
			Nullable: true,
		},
		Source:     src,
		Confidence: 1.0,
	})
}

// normalizeEntityType maps an explicit type token to the EntityType set,
// falling back to keyword inference on the entity name.
func normalizeEntityType(explicit, name string) types.EntityType {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "master":
		return types.EntityMaster
	case "transaction", "transactional":
		return types.EntityTransaction
	case "reference":
		return types.EntityReference
	case "lookup":
		return types.EntityLookup
	case "junction", "join":
		return types.EntityJunction
	}

	lower := strings.ToLower(name)
	for _, row := range entityTypeKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.etype
			}
		}
	}
	return types.EntityMaster
}

// FromDeclared converts a PRD-declared entity definition, whose fields
// use the loose "name:type" string form, into a raw record.
func FromDeclared(d types.DeclaredEntity) RawEntity {
	raw := RawEntity{
		Name:        d.Name,
		Description: d.Description,
		Source:      types.SourcePRDExplicit,
		Confidence:  1.0,
	}
	for _, spec := range d.Fields {
		name, ftype := splitFieldSpec(spec)
		if name == "" {
			continue
		}
		raw.Fields = append(raw.Fields, RawField{
			Name:       name,
			Type:       ftype,
			Confidence: 1.0,
		})
	}
	return raw
}

// splitFieldSpec breaks a "name:type" declaration into its parts. A
// missing type yields an empty type token, which normalizes to string.
func splitFieldSpec(spec string) (name, ftype string) {
	parts := strings.SplitN(spec, ":", 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		ftype = strings.TrimSpace(parts[1])
	}
	return name, ftype
}

// screenTypeWords are trimmed from screen names when deriving the backing
// entity name ("Order Form" → "Order").
var screenTypeWords = map[string]bool{
	"screen": true, "form": true, "list": true, "view": true,
	"detail": true, "details": true, "page": true, "entry": true,
	"modal": true, "dialog": true, "dashboard": true, "report": true,
}

// FromScreens derives raw entity candidates from screen field mappings.
// Each screen contributes one candidate named after the screen with its
// type words stripped; screens without mappings contribute nothing.
func FromScreens(screens []types.Screen) []RawEntity {
	byName := make(map[string]*RawEntity)
	var order []string

	for _, scr := range screens {
		if len(scr.FieldMappings) == 0 {
			continue
		}
		name := screenEntityName(scr.Name)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		raw, ok := byName[key]
		if !ok {
			raw = &RawEntity{
				Name:       name,
				Source:     types.SourceScreenMapping,
				Confidence: 0.6,
			}
			byName[key] = raw
			order = append(order, key)
		}

		for _, fm := range scr.FieldMappings {
			fieldName := fm.EntityField
			if fieldName == "" {
				fieldName = fm.FieldName
			}
			raw.Fields = append(raw.Fields, RawField{
				Name:       fieldName,
				Type:       inputTypeToDataType(fm.InputType),
				Required:   fm.Required,
				Confidence: 0.6,
			})
		}
	}

	out := make([]RawEntity, 0, len(order))
	for _, key := range order {
		out = append(out, *byName[key])
	}
	return out
}

// screenEntityName strips screen-type words from a screen name and
// normalizes the remainder to PascalCase.
func screenEntityName(screenName string) string {
	var kept []string
	for _, w := range splitWords(screenName) {
		if screenTypeWords[strings.ToLower(w)] {
			continue
		}
		kept = append(kept, w)
	}
	return ToPascalCase(strings.Join(kept, " "))
}

// inputTypeToDataType maps a screen widget type back to a storage type
// token for normalization.
func inputTypeToDataType(it types.InputType) string {
	switch it {
	case types.InputNumber:
		return "decimal"
	case types.InputDate:
		return "date"
	case types.InputCheckbox:
		return "boolean"
	case types.InputSelect:
		return "enum"
	case types.InputTextarea:
		return "text"
	case types.InputFile:
		return "string"
	default:
		return "string"
	}
}

// Merge unions extra entities into primary. An extra entity whose
// normalized name matches a primary entity contributes only the fields
// the primary does not already have by name; unmatched extras are
// appended whole. Input order is preserved and inputs are not mutated.
func Merge(primary, extra []types.Entity) []types.Entity {
	out := make([]types.Entity, len(primary))
	copy(out, primary)

	index := make(map[string]int, len(out))
	for i, e := range out {
		index[strings.ToLower(e.Name)] = i
	}

	for _, ex := range extra {
		i, ok := index[strings.ToLower(ex.Name)]
		if !ok {
			index[strings.ToLower(ex.Name)] = len(out)
			out = append(out, ex)
			continue
		}

		have := make(map[string]bool, len(out[i].Fields))
		for _, f := range out[i].Fields {
			have[strings.ToLower(f.Name)] = true
		}

		merged := make([]types.Field, len(out[i].Fields))
		copy(merged, out[i].Fields)
		for _, f := range ex.Fields {
			if have[strings.ToLower(f.Name)] {
				continue
			}
			have[strings.ToLower(f.Name)] = true
			merged = append(merged, f)
		}
		out[i].Fields = merged
	}

	return out
}

// clampConfidence forces a confidence value into [0, 1], mapping the
// zero value (absent) to a conservative default.
func clampConfidence(c float64) float64 {
	switch {
	case c <= 0:
		return 0.5
	case c > 1:
		return 1.0
	default:
		return c
	}
}
