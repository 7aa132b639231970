// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// linkRequirements assigns every extracted rule and screen to exactly one
// functional requirement. Assignment is by identifier-number correlation
// (BR-012-A → FR-012) first, then by explicit back-reference near the
// rule or screen. Anything still unassigned is an orphan and attaches to
// the first requirement in document order, so no extracted item is
// dropped. With no requirements at all, a single synthetic FR-001 is
// created to hold whatever was found.
func linkRequirements(lines []string, cands []frCandidate, rules []types.BusinessRule, screens []types.Screen, knownEntities []string) []types.FunctionalRequirement {
	frs := make([]types.FunctionalRequirement, 0, len(cands))
	byNum := make(map[string]int, len(cands))
	byID := make(map[string]int, len(cands))

	for i, c := range cands {
		sectionText := localSection(lines, c)
		title := c.title
		if title == "" {
			title = c.id
		}
		frs = append(frs, types.FunctionalRequirement{
			ID:                 c.id,
			Title:              title,
			Description:        requirementDescription(lines, c),
			Priority:           inferPriority(sectionText),
			AcceptanceCriteria: extractAcceptanceCriteria(lines, c),
			InvolvedEntities:   findInvolvedEntities(sectionText, knownEntities),
		})
		byNum[c.num] = i
		byID[c.id] = i
	}

	if len(frs) == 0 {
		frs = append(frs, types.FunctionalRequirement{
			ID:       syntheticFRID(1),
			Title:    "General Requirements",
			Priority: types.PriorityShould,
		})
		byID[frs[0].ID] = 0
	}

	for _, rule := range rules {
		i := ownerIndex(byNum, byID, ruleNumber(rule.ID), rule.RelatedFR)
		rule.RelatedFR = frs[i].ID
		frs[i].BusinessRules = append(frs[i].BusinessRules, rule)
		if rule.Type == types.RuleWorkflow {
			frs[i].IsWorkflow = true
		}
	}

	for _, scr := range screens {
		i := ownerIndex(byNum, byID, screenNumber(scr.ID), scr.RelatedFR)
		scr.RelatedFR = frs[i].ID
		frs[i].Screens = append(frs[i].Screens, scr)
	}

	return frs
}

// ownerIndex resolves the owning requirement for a child item: number
// correlation, then explicit reference, then the orphan fallback (index
// zero, the first requirement in document order).
func ownerIndex(byNum, byID map[string]int, num, explicitRef string) int {
	if num != "" {
		if i, ok := byNum[num]; ok {
			return i
		}
	}
	if explicitRef != "" {
		if i, ok := byID[explicitRef]; ok {
			return i
		}
	}
	return 0
}

// ruleNumber extracts the three-digit part of a BR/VR identifier.
func ruleNumber(id string) string {
	if m := ruleIDRe.FindStringSubmatch(id); m != nil {
		if m[2] != "" {
			return m[2] // BR-NNN-X
		}
		return m[3] // VR-NNN
	}
	return ""
}

// screenNumber extracts the three-digit part of an SCR identifier.
func screenNumber(id string) string {
	if m := scrIDRe.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	return ""
}

// requirementDescription takes the prose following the requirement's
// first line, up to the next identifier line or heading, as its
// description.
func requirementDescription(lines []string, c frCandidate) string {
	var desc []string
	for _, line := range lines[min(c.line+1, len(lines)):min(c.sectionEnd, len(lines))] {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			break
		}
		if ruleIDRe.MatchString(trimmed) || scrIDRe.MatchString(trimmed) {
			break
		}
		if trimmed == "" && len(desc) > 0 {
			break
		}
		if trimmed != "" {
			desc = append(desc, trimmed)
		}
	}
	return strings.Join(desc, " ")
}
