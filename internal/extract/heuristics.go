// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers identifier-tagged requirements, rules, and
// screens from raw PRD text and links them into a StructuredPRD. Each
// classifier is a pure function over a table-driven keyword list so it
// can be replaced without touching callers. Extraction never fails on
// malformed input; it degrades to sparse structures.
package extract

import (
	"regexp"
	"strings"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// Identifier patterns. Matching runs over raw text rather than the
// section tree so identifiers inside tables and inline prose still count.
var (
	frIDRe   = regexp.MustCompile(`\bFR-(\d{3})\b`)
	ruleIDRe = regexp.MustCompile(`\b(BR-(\d{3})-[A-Z]|VR-(\d{3}))\b`)
	scrIDRe  = regexp.MustCompile(`\bSCR-(\d{3})\b`)

	// backtickRe captures an inline code span used as a formula.
	backtickRe = regexp.MustCompile("`([^`]+)`")

	// labelRes extract trailing-context labels like "formula: x" and
	// "error: msg". Case-insensitive, value runs to end of line.
	formulaLabelRe = regexp.MustCompile(`(?i)\bformula\s*:\s*(.+)`)
	errorLabelRe   = regexp.MustCompile(`(?i)\b(?:error|message)\s*:\s*(.+)`)

	// gherkinRe matches Given/When/Then acceptance-criteria lines.
	gherkinRe = regexp.MustCompile(`(?i)^\s*(?:[-*]\s*)?(given|when|then|and)\b`)
)

// priorityKeywords maps MoSCoW signal words to priorities. Rows are
// checked in order; the first hit wins.
var priorityKeywords = []struct {
	words    []string
	priority types.Priority
}{
	{[]string{"must", "required", "mandatory", "shall"}, types.PriorityMust},
	{[]string{"should", "recommended"}, types.PriorityShould},
	{[]string{"may", "could", "optional"}, types.PriorityCould},
	{[]string{"won't", "wont", "out of scope"}, types.PriorityWont},
}

// inferPriority scans a requirement's local section for MoSCoW keywords.
// The default is should.
func inferPriority(sectionText string) types.Priority {
	lower := strings.ToLower(sectionText)
	for _, row := range priorityKeywords {
		for _, w := range row.words {
			if containsWord(lower, w) {
				return row.priority
			}
		}
	}
	return types.PriorityShould
}

// ruleTypeKeywords maps signal words in a rule's title and description to
// rule types. Rows are checked in order; the first hit wins.
var ruleTypeKeywords = []struct {
	words []string
	rtype types.RuleType
}{
	{[]string{"calculat", "formula", "compute", "derive", "sum of", "total of"}, types.RuleCalculation},
	{[]string{"workflow", "approval", "approve", "state", "transition", "escalat"}, types.RuleWorkflow},
	{[]string{"constraint", "restrict", "limit", "maximum", "minimum", "cannot exceed"}, types.RuleConstraint},
}

// inferRuleType classifies a rule from its title and description text.
// The default is validation.
func inferRuleType(text string) types.RuleType {
	lower := strings.ToLower(text)
	for _, row := range ruleTypeKeywords {
		for _, w := range row.words {
			if strings.Contains(lower, w) {
				return row.rtype
			}
		}
	}
	return types.RuleValidation
}

// screenTypeKeywords maps title words to screen types. Rows are checked
// in order; the first hit wins.
var screenTypeKeywords = []struct {
	words []string
	stype types.ScreenType
}{
	{[]string{"list", "table", "grid"}, types.ScreenList},
	{[]string{"detail", "view", "confirmation"}, types.ScreenDetail},
	{[]string{"modal", "dialog", "popup"}, types.ScreenModal},
	{[]string{"dashboard", "overview"}, types.ScreenDashboard},
	{[]string{"report"}, types.ScreenReport},
}

// inferScreenType classifies a screen from its title. The default is
// form.
func inferScreenType(title string) types.ScreenType {
	lower := strings.ToLower(title)
	for _, row := range screenTypeKeywords {
		for _, w := range row.words {
			if strings.Contains(lower, w) {
				return row.stype
			}
		}
	}
	return types.ScreenForm
}

// screenHeadingWords flag a level-3 heading as screen-like for the
// fallback pass when no SCR identifiers exist in the document.
var screenHeadingWords = []string{
	"screen", "list", "form", "view", "entry", "detail", "dashboard", "modal",
}

// isScreenHeading reports whether a heading title names a screen.
func isScreenHeading(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range screenHeadingWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// actionTypeKeywords maps action-label words to action types. Rows are
// checked in order; the first hit wins.
var actionTypeKeywords = []struct {
	words []string
	atype types.ActionType
}{
	{[]string{"cancel", "back", "close"}, types.ActionCancel},
	{[]string{"navigate", "go to", "open", "link"}, types.ActionNavigate},
	{[]string{"download", "export"}, types.ActionDownload},
	{[]string{"print"}, types.ActionPrint},
}

// inferActionType classifies a screen action from its label. The default
// is submit.
func inferActionType(label string) types.ActionType {
	lower := strings.ToLower(label)
	for _, row := range actionTypeKeywords {
		for _, w := range row.words {
			if strings.Contains(lower, w) {
				return row.atype
			}
		}
	}
	return types.ActionSubmit
}

// defaultActions injects screen-type defaults when the document declares
// no actions for a screen.
func defaultActions(stype types.ScreenType) []types.ScreenAction {
	switch stype {
	case types.ScreenForm:
		return []types.ScreenAction{
			{Label: "Save", Type: types.ActionSubmit},
			{Label: "Cancel", Type: types.ActionCancel},
		}
	case types.ScreenList:
		return []types.ScreenAction{
			{Label: "Add New", Type: types.ActionNavigate},
			{Label: "View", Type: types.ActionNavigate},
		}
	default:
		return nil
	}
}

// containsWord reports whether text contains w as a whole word (or whole
// phrase for multi-word entries). Both arguments must be lower-cased.
func containsWord(text, w string) bool {
	if strings.ContainsAny(w, " '") {
		return strings.Contains(text, w)
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
