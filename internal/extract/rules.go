// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// ruleContextWindow bounds how many lines after a rule identifier are
// scanned for formula and error-message labels.
const ruleContextWindow = 6

// extractRules scans lines for BR-NNN-X and VR-NNN identifiers. Each
// first occurrence yields one candidate rule with a best-effort
// description, formula, and error message pulled from the surrounding
// lines.
func extractRules(lines []string) []types.BusinessRule {
	var rules []types.BusinessRule
	seen := make(map[string]bool)

	for i, line := range lines {
		for _, m := range ruleIDRe.FindAllStringSubmatch(line, -1) {
			id := m[1]
			if seen[id] {
				continue
			}
			seen[id] = true
			rules = append(rules, buildRule(lines, i, id))
		}
	}

	return rules
}

// buildRule assembles one rule from its match line and trailing context.
func buildRule(lines []string, matchLine int, id string) types.BusinessRule {
	title := titleAfterID(lines[matchLine], id)

	rule := types.BusinessRule{
		ID:          id,
		Name:        stripInlineCode(title),
		Description: nextProseLine(lines, matchLine+1),
		RelatedFR:   referencedFR(lines, matchLine),
	}

	// A backtick span in the matched title is the formula; otherwise a
	// "formula:" label in the trailing context supplies it.
	if m := backtickRe.FindStringSubmatch(title); m != nil {
		rule.Formula = strings.TrimSpace(m[1])
	}

	end := matchLine + 1 + ruleContextWindow
	if end > len(lines) {
		end = len(lines)
	}
	for _, ctx := range lines[matchLine:end] {
		if rule.Formula == "" {
			if m := formulaLabelRe.FindStringSubmatch(ctx); m != nil {
				rule.Formula = stripInlineCode(strings.TrimSpace(m[1]))
			}
		}
		if rule.ErrorMessage == "" {
			if m := errorLabelRe.FindStringSubmatch(ctx); m != nil {
				rule.ErrorMessage = strings.Trim(strings.TrimSpace(m[1]), `"“”`)
			}
		}
	}

	rule.Type = inferRuleType(title + " " + rule.Description)

	if rule.Name == "" {
		rule.Name = rule.ID
	}

	return rule
}

// nextProseLine returns the first following line that is not empty, not a
// heading, and not a list item. It is the rule's description.
func nextProseLine(lines []string, from int) string {
	for _, line := range lines[min(from, len(lines)):] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if listItemRe.MatchString(line) {
			continue
		}
		// Another identifier line starts the next candidate, not a
		// description.
		if ruleIDRe.MatchString(trimmed) || scrIDRe.MatchString(trimmed) || frIDRe.MatchString(trimmed) {
			return ""
		}
		return trimmed
	}
	return ""
}

// referencedFR looks for an explicit FR back-reference on the match line
// or its immediate trailing context.
func referencedFR(lines []string, matchLine int) string {
	end := matchLine + 1 + ruleContextWindow
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[matchLine:end] {
		if m := frIDRe.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

// stripInlineCode removes backtick delimiters, keeping their content.
func stripInlineCode(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "`", ""))
}
