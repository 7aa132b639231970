// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/parser"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

const (
	docsDirName      = "docs"
	extractedDirName = "extracted"
)

// PRD runs the full requirements extraction over one document: structural
// parse, identifier pattern extraction over the raw text, and
// cross-linking with orphan resolution. The result is never nil and
// always holds at least one functional requirement.
func PRD(content string) *types.StructuredPRD {
	doc := parser.Parse(content)
	lines := strings.Split(content, "\n")

	cands := extractRequirements(lines)
	rules := extractRules(lines)
	screens := extractScreens(lines)
	if len(screens) == 0 {
		screens = fallbackScreens(doc)
	}

	dataReqs := extractDataRequirements(doc)

	known := make([]string, 0, len(dataReqs.Entities))
	for _, e := range dataReqs.Entities {
		known = append(known, e.Name)
	}

	return &types.StructuredPRD{
		Title:                  doc.Title,
		FunctionalRequirements: linkRequirements(lines, cands, rules, screens, known),
		DataRequirements:       dataReqs,
		RawContent:             content,
	}
}

// dataSectionWords flag a section as a data-model declaration.
var dataSectionWords = []string{"entit", "data model", "data requirement", "domain model"}

// enumSectionWords flag a section as an enum declaration.
var enumSectionWords = []string{"enum", "status value", "code list"}

// extractDataRequirements pulls PRD-declared entity and enum lists from
// sections whose titles mark them as data-model declarations. Entity
// items use the loose "Name: field:type, field:type" form; enum items
// use "Name: a | b | c".
func extractDataRequirements(doc *types.ParsedDocument) types.DataRequirements {
	var dr types.DataRequirements

	for _, list := range doc.Lists {
		sectionTitle := strings.ToLower(list.Section)
		switch {
		case matchesAny(sectionTitle, enumSectionWords):
			for _, item := range list.Items {
				if e, ok := parseEnumItem(item); ok {
					dr.Enums = append(dr.Enums, e)
				}
			}
		case matchesAny(sectionTitle, dataSectionWords):
			for _, item := range list.Items {
				if e, ok := parseEntityItem(item); ok {
					dr.Entities = append(dr.Entities, e)
				}
			}
		}
	}

	return dr
}

func matchesAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// parseEntityItem parses "Customer: name:string, email:string" into a
// declared entity. An item without a field list still declares the
// entity name, but only when it is a single identifier-like word, so
// ordinary prose bullets in a data section are not mistaken for
// entities.
func parseEntityItem(item string) (types.DeclaredEntity, bool) {
	item = stripInlineCode(item)
	name, rest, found := strings.Cut(item, ":")
	name = strings.Trim(strings.TrimSpace(name), "*_")
	if name == "" {
		return types.DeclaredEntity{}, false
	}

	e := types.DeclaredEntity{Name: name}
	if !found {
		if strings.ContainsAny(name, " \t") {
			return types.DeclaredEntity{}, false
		}
		return e, true
	}

	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		e.Fields = append(e.Fields, part)
	}
	return e, true
}

// parseEnumItem parses "OrderStatus: draft | submitted | approved".
func parseEnumItem(item string) (types.EnumDef, bool) {
	item = stripInlineCode(item)
	name, rest, found := strings.Cut(item, ":")
	if !found {
		return types.EnumDef{}, false
	}

	e := types.EnumDef{Name: strings.Trim(strings.TrimSpace(name), "*_")}
	for _, v := range strings.Split(rest, "|") {
		v = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), ","))
		if v != "" {
			e.Values = append(e.Values, v)
		}
	}
	return e, e.Name != "" && len(e.Values) > 0
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// All processes every markdown document in cfg.DocsDir and writes one
// <name>-prd.yaml per document to cfg.OutDir/extracted/. Read and write
// failures are counted and reported; extraction itself cannot fail.
func All(cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	outDir := filepath.Join(cfg.OutDir, extractedDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(cfg.DocsDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading docs directory %s: %w", cfg.DocsDir, err)
	}

	var summary BatchSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		docID := strings.TrimSuffix(entry.Name(), ".md")
		data, err := os.ReadFile(filepath.Join(cfg.DocsDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		prd := PRD(string(data))

		outPath := filepath.Join(outDir, docID+"-prd.yaml")
		if err := writeYAML(outPath, prd); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", docID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d requirements)\n", docID, len(prd.FunctionalRequirements))
		summary.Extracted++
	}

	return summary, nil
}

// writeYAML marshals v to a YAML file.
func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
