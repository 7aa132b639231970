// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the PRD extraction
// pipeline: parsed document structure, functional requirements with their
// owned rules and screens, and the normalized entity graph.
package types

// Section is one heading-delimited region of a parsed document. A level-1
// heading becomes the document title; level-2 headings are top-level
// sections; deeper headings nest one level under the nearest level-2
// ancestor.
type Section struct {
	// Level is the heading depth (1-6).
	Level int `json:"level" yaml:"level"`

	// Title is the heading text with the leading # markers stripped.
	Title string `json:"title" yaml:"title"`

	// Body is the accumulated text between this heading and the next,
	// excluding fenced code blocks.
	Body string `json:"body" yaml:"body"`

	// Children holds level-3+ subsections nested under a level-2 section.
	Children []Section `json:"children,omitempty" yaml:"children,omitempty"`
}

// CodeBlock is a fenced code block captured verbatim during parsing.
type CodeBlock struct {
	// Language is the info string after the opening fence, if any.
	Language string `json:"language" yaml:"language"`

	// Content is the verbatim block body without the fence lines.
	Content string `json:"content" yaml:"content"`

	// Section is the title of the section the block appeared in.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// Table is a pipe-delimited table collected during parsing. Separator rows
// (dashes and colons only) are dropped.
type Table struct {
	// Headers holds the cells of the first row.
	Headers []string `json:"headers" yaml:"headers"`

	// Rows holds the data rows, one cell slice per row.
	Rows [][]string `json:"rows" yaml:"rows"`

	// Section is the title of the section the table appeared in.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// List is a flat run of consecutive bulleted or numbered items.
type List struct {
	// Items holds the item text with markers stripped.
	Items []string `json:"items" yaml:"items"`

	// Ordered reports whether the list used numbered markers.
	Ordered bool `json:"ordered" yaml:"ordered"`

	// Section is the title of the section the list appeared in.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// ParsedDocument is the output of the structural parser: the section tree
// plus the code blocks, tables, and lists lifted out of the body text.
type ParsedDocument struct {
	// Title is the first level-1 heading, or empty if none exists.
	Title string `json:"title" yaml:"title"`

	Sections   []Section   `json:"sections" yaml:"sections"`
	CodeBlocks []CodeBlock `json:"code_blocks,omitempty" yaml:"code_blocks,omitempty"`
	Tables     []Table     `json:"tables,omitempty" yaml:"tables,omitempty"`
	Lists      []List      `json:"lists,omitempty" yaml:"lists,omitempty"`
}

// Priority is the MoSCoW priority of a functional requirement.
type Priority string

const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
	PriorityCould  Priority = "could"
	PriorityWont   Priority = "wont"
)

// RuleType categorizes a business rule.
type RuleType string

const (
	RuleValidation  RuleType = "validation"
	RuleCalculation RuleType = "calculation"
	RuleConstraint  RuleType = "constraint"
	RuleWorkflow    RuleType = "workflow"
)

// BusinessRule is a rule extracted from the document, owned by exactly one
// FunctionalRequirement.
type BusinessRule struct {
	// ID is the identifier as it appears in the document, either
	// BR-NNN-X or VR-NNN.
	ID string `json:"id" yaml:"id"`

	// Name is the rule title taken from the matched line.
	Name string `json:"name" yaml:"name"`

	// Type is the inferred rule category.
	Type RuleType `json:"type" yaml:"type"`

	// Description is the first non-empty prose line following the match.
	Description string `json:"description" yaml:"description"`

	// Formula is an inline backtick expression or "formula:" value, if any.
	Formula string `json:"formula,omitempty" yaml:"formula,omitempty"`

	// ErrorMessage is an inline "error:" or "message:" value, if any.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// RelatedFR is the owning requirement ID once linked.
	RelatedFR string `json:"related_fr,omitempty" yaml:"related_fr,omitempty"`
}

// ScreenType categorizes a screen.
type ScreenType string

const (
	ScreenList      ScreenType = "list"
	ScreenForm      ScreenType = "form"
	ScreenDetail    ScreenType = "detail"
	ScreenModal     ScreenType = "modal"
	ScreenDashboard ScreenType = "dashboard"
	ScreenReport    ScreenType = "report"
)

// InputType categorizes a screen field widget.
type InputType string

const (
	InputText     InputType = "text"
	InputNumber   InputType = "number"
	InputDate     InputType = "date"
	InputSelect   InputType = "select"
	InputCheckbox InputType = "checkbox"
	InputTextarea InputType = "textarea"
	InputFile     InputType = "file"
)

// FieldMapping maps one screen field to an entity field, extracted from a
// pipe table whose header row contains "Field".
type FieldMapping struct {
	// FieldName is the display label from the table row.
	FieldName string `json:"field_name" yaml:"field_name"`

	// EntityField is the camelCase target field name.
	EntityField string `json:"entity_field" yaml:"entity_field"`

	// InputType is inferred from the row's type column.
	InputType InputType `json:"input_type" yaml:"input_type"`

	// Required reports whether the row marked the field mandatory.
	Required bool `json:"required" yaml:"required"`
}

// ActionType categorizes a screen action.
type ActionType string

const (
	ActionSubmit   ActionType = "submit"
	ActionCancel   ActionType = "cancel"
	ActionNavigate ActionType = "navigate"
	ActionDownload ActionType = "download"
	ActionPrint    ActionType = "print"
)

// ScreenAction is one user action available on a screen.
type ScreenAction struct {
	// Label is the action text from the bulleted list.
	Label string `json:"label" yaml:"label"`

	// Type is inferred from keywords in the label.
	Type ActionType `json:"type" yaml:"type"`
}

// Screen is a UI surface extracted from the document, owned by exactly one
// FunctionalRequirement.
type Screen struct {
	// ID is the SCR-NNN identifier, or a generated one for fallback
	// heading-derived screens.
	ID string `json:"id" yaml:"id"`

	// Name is the screen title.
	Name string `json:"name" yaml:"name"`

	// Type is the inferred screen category.
	Type ScreenType `json:"type" yaml:"type"`

	// Route is a slug path derived from the name.
	Route string `json:"route" yaml:"route"`

	// FieldMappings lists entity-field bindings from the screen's table.
	FieldMappings []FieldMapping `json:"field_mappings,omitempty" yaml:"field_mappings,omitempty"`

	// Actions lists the screen's actions, with defaults injected by type
	// when the document declares none.
	Actions []ScreenAction `json:"actions,omitempty" yaml:"actions,omitempty"`

	// RelatedFR is the owning requirement ID once linked.
	RelatedFR string `json:"related_fr,omitempty" yaml:"related_fr,omitempty"`
}

// FunctionalRequirement is one FR-NNN requirement with its owned rules and
// screens attached. IDs are unique within one extraction pass; every
// extracted rule and screen belongs to exactly one requirement.
type FunctionalRequirement struct {
	// ID matches FR-\d{3}.
	ID string `json:"id" yaml:"id"`

	// Title is the text following the identifier on its first appearance.
	Title string `json:"title" yaml:"title"`

	// Description is the body of the requirement's local section.
	Description string `json:"description" yaml:"description"`

	// Priority is inferred from MoSCoW keywords in the local section.
	Priority Priority `json:"priority" yaml:"priority"`

	// BusinessRules holds the rules linked to this requirement.
	BusinessRules []BusinessRule `json:"business_rules,omitempty" yaml:"business_rules,omitempty"`

	// Screens holds the screens linked to this requirement.
	Screens []Screen `json:"screens,omitempty" yaml:"screens,omitempty"`

	// InvolvedEntities lists entity names mentioned in the requirement.
	InvolvedEntities []string `json:"involved_entities,omitempty" yaml:"involved_entities,omitempty"`

	// AcceptanceCriteria holds criteria lines from an "acceptance
	// criteria" block or Given/When/Then lines in the local section.
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`

	// IsWorkflow reports whether any owned rule is a workflow rule.
	IsWorkflow bool `json:"is_workflow" yaml:"is_workflow"`
}

// EnumDef is an enumeration declared in the document's data section.
type EnumDef struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// DeclaredEntity is a PRD-declared entity definition before normalization.
// Fields use the loose "name:type" string form.
type DeclaredEntity struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// DataRequirements groups the document's declared data model.
type DataRequirements struct {
	Entities []DeclaredEntity `json:"entities,omitempty" yaml:"entities,omitempty"`
	Enums    []EnumDef        `json:"enums,omitempty" yaml:"enums,omitempty"`
}

// StructuredPRD is the complete requirements extraction for one document.
// It is never nil for non-empty input: when no identifiers exist a single
// synthetic FR-001 anchors the output.
type StructuredPRD struct {
	// Title is the document title from the first level-1 heading.
	Title string `json:"title" yaml:"title"`

	// FunctionalRequirements lists requirements in document order.
	FunctionalRequirements []FunctionalRequirement `json:"functional_requirements" yaml:"functional_requirements"`

	// DataRequirements holds PRD-declared entities and enums.
	DataRequirements DataRequirements `json:"data_requirements" yaml:"data_requirements"`

	// RawContent preserves the input text for traceability.
	RawContent string `json:"raw_content,omitempty" yaml:"raw_content,omitempty"`
}
