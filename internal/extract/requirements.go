// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// frCandidate is a requirement identifier found in the raw text, before
// rules and screens are linked to it.
type frCandidate struct {
	id    string
	num   string // the three-digit part, for number correlation
	title string

	// line is the first occurrence, sectionEnd the exclusive end of the
	// requirement's local section (the next requirement's first line).
	line       int
	sectionEnd int
}

// acceptanceLabelRe marks the start of an acceptance-criteria block.
var acceptanceLabelRe = regexp.MustCompile(`(?i)acceptance\s+criteria`)

// listItemRe matches a bulleted or numbered list line for criteria
// collection.
var listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)

// extractRequirements scans lines for FR identifiers, deduplicated in
// order of first appearance, and computes each requirement's local
// section boundaries.
func extractRequirements(lines []string) []frCandidate {
	var cands []frCandidate
	seen := make(map[string]bool)

	for i, line := range lines {
		for _, m := range frIDRe.FindAllStringSubmatch(line, -1) {
			id := m[0]
			if seen[id] {
				continue
			}
			seen[id] = true
			cands = append(cands, frCandidate{
				id:    id,
				num:   m[1],
				title: titleAfterID(line, id),
				line:  i,
			})
		}
	}

	for i := range cands {
		if i+1 < len(cands) {
			cands[i].sectionEnd = cands[i+1].line
		} else {
			cands[i].sectionEnd = len(lines)
		}
	}

	return cands
}

// titleAfterID extracts a best-effort title from the text following an
// identifier on its line: separators are trimmed and markdown emphasis
// and heading markers stripped.
func titleAfterID(line, id string) string {
	idx := strings.Index(line, id)
	if idx < 0 {
		return ""
	}
	rest := line[idx+len(id):]
	rest = strings.TrimLeft(rest, " \t:–—-")
	rest = strings.Trim(rest, "*_# \t")
	// An identifier referenced mid-sentence has no title on its line.
	if len(rest) > 120 {
		return ""
	}
	return strings.TrimSpace(rest)
}

// localSection joins a candidate's lines for keyword scanning.
func localSection(lines []string, c frCandidate) string {
	return strings.Join(lines[c.line:c.sectionEnd], "\n")
}

// extractAcceptanceCriteria collects criteria from an "acceptance
// criteria" labeled block (its following list items) and from any
// Given/When/Then-style lines in the requirement's local section.
func extractAcceptanceCriteria(lines []string, c frCandidate) []string {
	var criteria []string
	seen := make(map[string]bool)

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		criteria = append(criteria, s)
	}

	inBlock := false
	for _, line := range lines[c.line:c.sectionEnd] {
		trimmed := strings.TrimSpace(line)

		if acceptanceLabelRe.MatchString(trimmed) {
			inBlock = true
			continue
		}

		if inBlock {
			if m := listItemRe.FindStringSubmatch(line); m != nil {
				add(m[1])
				continue
			}
			if trimmed != "" {
				// First non-list content closes the labeled block.
				inBlock = false
			}
		}

		if gherkinRe.MatchString(line) {
			if m := listItemRe.FindStringSubmatch(line); m != nil {
				add(m[1])
			} else {
				add(trimmed)
			}
		}
	}

	return criteria
}

// findInvolvedEntities reports which of the known entity names appear in
// the requirement's local section, preserving the known-name order.
func findInvolvedEntities(sectionText string, knownEntities []string) []string {
	lower := strings.ToLower(sectionText)
	var involved []string
	for _, name := range knownEntities {
		if name == "" {
			continue
		}
		if containsWord(lower, strings.ToLower(name)) {
			involved = append(involved, name)
		}
	}
	return involved
}

// syntheticFRID formats the identifier for a synthesized requirement.
func syntheticFRID(n int) string {
	return fmt.Sprintf("FR-%03d", n)
}
