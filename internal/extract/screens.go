// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/normalize"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// screenContextWindow bounds how many lines after a screen identifier are
// scanned for its field-mapping table and actions list.
const screenContextWindow = 40

// actionsLabelRe marks the start of a screen's actions list.
var actionsLabelRe = regexp.MustCompile(`(?i)\bactions?\s*:?\s*$`)

// requiredMarkRe recognizes a "required" cell in a field table row.
var requiredMarkRe = regexp.MustCompile(`(?i)^(yes|y|true|required|\*|✓|x)$`)

// extractScreens scans lines for SCR identifiers. Each first occurrence
// yields one candidate screen with its type inferred from the title,
// field mappings pulled from the first trailing pipe table whose header
// mentions "Field", and actions from a bulleted list under an "Actions"
// label. Screens without declared actions get defaults by type.
func extractScreens(lines []string) []types.Screen {
	var screens []types.Screen
	seen := make(map[string]bool)

	for i, line := range lines {
		for _, m := range scrIDRe.FindAllStringSubmatch(line, -1) {
			id := m[0]
			if seen[id] {
				continue
			}
			seen[id] = true
			screens = append(screens, buildScreen(lines, i, id))
		}
	}

	return screens
}

// buildScreen assembles one screen from its match line and trailing
// context.
func buildScreen(lines []string, matchLine int, id string) types.Screen {
	title := titleAfterID(lines[matchLine], id)
	if title == "" {
		title = id
	}

	scr := types.Screen{
		ID:        id,
		Name:      title,
		Type:      inferScreenType(title),
		Route:     "/" + normalize.Slugify(title),
		RelatedFR: referencedFR(lines, matchLine),
	}

	end := matchLine + 1 + screenContextWindow
	if end > len(lines) {
		end = len(lines)
	}
	ctx := lines[matchLine+1 : end]

	scr.FieldMappings = extractFieldMappings(ctx)
	scr.Actions = extractActions(ctx)
	if len(scr.Actions) == 0 {
		scr.Actions = defaultActions(scr.Type)
	}

	return scr
}

// extractFieldMappings finds the first pipe table in the context whose
// header row contains "Field" and converts each data row into a mapping.
// Column meaning is positional: field label, entity field, type, then an
// optional required marker.
func extractFieldMappings(ctx []string) []types.FieldMapping {
	var mappings []types.FieldMapping
	inTable := false

	for _, line := range ctx {
		trimmed := strings.TrimSpace(line)
		isRow := strings.Contains(line, "|")

		if !inTable {
			if isRow && strings.Contains(strings.ToLower(line), "field") {
				inTable = true
			}
			continue
		}

		if !isRow {
			break
		}
		if tableSeparator(trimmed) {
			continue
		}

		cells := splitCells(trimmed)
		if len(cells) == 0 || cells[0] == "" {
			continue
		}

		fm := types.FieldMapping{FieldName: cells[0]}
		if len(cells) > 1 && cells[1] != "" {
			fm.EntityField = normalize.ToCamelCase(cells[1])
		} else {
			fm.EntityField = normalize.ToCamelCase(cells[0])
		}
		if len(cells) > 2 {
			fm.InputType = normalize.NormalizeInputType(cells[2])
		} else {
			fm.InputType = types.InputText
		}
		if len(cells) > 3 {
			fm.Required = requiredMarkRe.MatchString(cells[3])
		}
		mappings = append(mappings, fm)
	}

	return mappings
}

// extractActions collects bulleted items following an "Actions" label.
func extractActions(ctx []string) []types.ScreenAction {
	var actions []types.ScreenAction
	inList := false

	for _, line := range ctx {
		trimmed := strings.TrimSpace(line)

		if !inList {
			if actionsLabelRe.MatchString(trimmed) {
				inList = true
			}
			continue
		}

		m := listItemRe.FindStringSubmatch(line)
		if m == nil {
			if trimmed == "" {
				continue
			}
			break
		}
		label := strings.TrimSpace(m[1])
		actions = append(actions, types.ScreenAction{
			Label: label,
			Type:  inferActionType(label),
		})
	}

	return actions
}

// fallbackScreens synthesizes screens from level-3 headings with
// screen-like titles when the document declares no SCR identifiers.
// Generated IDs continue the SCR sequence from 001.
func fallbackScreens(doc *types.ParsedDocument) []types.Screen {
	var screens []types.Screen
	n := 0

	for _, sec := range doc.Sections {
		for _, child := range sec.Children {
			if !isScreenHeading(child.Title) {
				continue
			}
			n++
			stype := inferScreenType(child.Title)
			screens = append(screens, types.Screen{
				ID:      fmt.Sprintf("SCR-%03d", n),
				Name:    child.Title,
				Type:    stype,
				Route:   "/" + normalize.Slugify(child.Title),
				Actions: defaultActions(stype),
			})
		}
	}

	return screens
}

// tableSeparator reports whether a trimmed line is a separator-only
// table row.
func tableSeparator(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// splitCells breaks a pipe row into trimmed cells.
func splitCells(trimmed string) []string {
	trimmed = strings.Trim(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}
