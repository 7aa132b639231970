// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"testing"
)

func TestParseTitleAndSections(t *testing.T) {
	content := `# Inventory System

Some introductory text.

## Overview

The system tracks stock levels.

## Requirements

### FR-001: Track Stock

Stock is tracked per warehouse.

### FR-002: Reorder

Reorder when below threshold.
`

	doc := Parse(content)

	if doc.Title != "Inventory System" {
		t.Errorf("Title = %q, want %q", doc.Title, "Inventory System")
	}

	// Preamble plus the two level-2 headings.
	if len(doc.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(doc.Sections))
	}
	if doc.Sections[0].Title != "" || doc.Sections[0].Body != "Some introductory text." {
		t.Errorf("preamble section = %+v", doc.Sections[0])
	}
	if doc.Sections[1].Title != "Overview" {
		t.Errorf("Sections[1].Title = %q, want Overview", doc.Sections[1].Title)
	}

	reqs := doc.Sections[2]
	if reqs.Title != "Requirements" {
		t.Fatalf("Sections[2].Title = %q, want Requirements", reqs.Title)
	}
	if len(reqs.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(reqs.Children))
	}
	if reqs.Children[0].Title != "FR-001: Track Stock" {
		t.Errorf("child title = %q", reqs.Children[0].Title)
	}
	if reqs.Children[1].Body != "Reorder when below threshold." {
		t.Errorf("child body = %q", reqs.Children[1].Body)
	}
}

func TestParseCodeBlock(t *testing.T) {
	content := "## Schema\n\n```sql\nCREATE TABLE item (\n  id TEXT\n);\n```\n"

	doc := Parse(content)

	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("got %d code blocks, want 1", len(doc.CodeBlocks))
	}
	cb := doc.CodeBlocks[0]
	if cb.Language != "sql" {
		t.Errorf("Language = %q, want sql", cb.Language)
	}
	if cb.Section != "Schema" {
		t.Errorf("Section = %q, want Schema", cb.Section)
	}
	want := "CREATE TABLE item (\n  id TEXT\n);"
	if cb.Content != want {
		t.Errorf("Content = %q, want %q", cb.Content, want)
	}
}

func TestParseHeadingInsideCodeBlockIgnored(t *testing.T) {
	content := "## Example\n\n```\n## Not A Heading\n```\n"

	doc := Parse(content)

	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("got %d code blocks, want 1", len(doc.CodeBlocks))
	}
	if doc.CodeBlocks[0].Content != "## Not A Heading" {
		t.Errorf("Content = %q", doc.CodeBlocks[0].Content)
	}
}

func TestParseUnterminatedCodeBlock(t *testing.T) {
	content := "## Example\n\n```go\nfunc main() {}\n"

	doc := Parse(content)

	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("got %d code blocks, want 1", len(doc.CodeBlocks))
	}
	if doc.CodeBlocks[0].Content != "func main() {}" {
		t.Errorf("Content = %q", doc.CodeBlocks[0].Content)
	}
}

func TestParseTable(t *testing.T) {
	content := `## Fields

| Field | Type | Required |
|-------|------|----------|
| Name  | text | yes |
| Price | decimal | no |
`

	doc := Parse(content)

	if len(doc.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.Tables))
	}
	tbl := doc.Tables[0]
	if tbl.Section != "Fields" {
		t.Errorf("Section = %q, want Fields", tbl.Section)
	}
	wantHeaders := []string{"Field", "Type", "Required"}
	if len(tbl.Headers) != 3 {
		t.Fatalf("got %d headers, want 3", len(tbl.Headers))
	}
	for i, h := range wantHeaders {
		if tbl.Headers[i] != h {
			t.Errorf("Headers[%d] = %q, want %q", i, tbl.Headers[i], h)
		}
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}
	if tbl.Rows[1][1] != "decimal" {
		t.Errorf("Rows[1][1] = %q, want decimal", tbl.Rows[1][1])
	}
}

func TestParseLists(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantItems   []string
		wantOrdered bool
	}{
		{
			name:        "bulleted",
			content:     "## Goals\n\n- track stock\n- reorder items\n",
			wantItems:   []string{"track stock", "reorder items"},
			wantOrdered: false,
		},
		{
			name:        "numbered",
			content:     "## Steps\n\n1. open form\n2) submit\n",
			wantItems:   []string{"open form", "submit"},
			wantOrdered: true,
		},
		{
			name:        "blank line keeps list open",
			content:     "## Goals\n\n- first\n\n- second\n",
			wantItems:   []string{"first", "second"},
			wantOrdered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.content)
			if len(doc.Lists) != 1 {
				t.Fatalf("got %d lists, want 1", len(doc.Lists))
			}
			l := doc.Lists[0]
			if l.Ordered != tt.wantOrdered {
				t.Errorf("Ordered = %v, want %v", l.Ordered, tt.wantOrdered)
			}
			if len(l.Items) != len(tt.wantItems) {
				t.Fatalf("got %d items, want %d", len(l.Items), len(tt.wantItems))
			}
			for i, item := range tt.wantItems {
				if l.Items[i] != item {
					t.Errorf("Items[%d] = %q, want %q", i, l.Items[i], item)
				}
			}
		})
	}
}

func TestParseListItemWithPipes(t *testing.T) {
	content := "## Enumerations\n\n- OrderStatus: draft | submitted | approved\n- PaymentStatus: unpaid | paid\n"

	doc := Parse(content)

	if len(doc.Tables) != 0 {
		t.Fatalf("got %d tables, want 0", len(doc.Tables))
	}
	if len(doc.Lists) != 1 {
		t.Fatalf("got %d lists, want 1", len(doc.Lists))
	}
	l := doc.Lists[0]
	if len(l.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(l.Items))
	}
	if l.Items[0] != "OrderStatus: draft | submitted | approved" {
		t.Errorf("Items[0] = %q", l.Items[0])
	}
}

func TestParseBulletEndsOpenTable(t *testing.T) {
	content := "## Mixed\n\n| A | B |\n|---|---|\n| 1 | 2 |\n- Status: open | closed\n"

	doc := Parse(content)

	if len(doc.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.Tables))
	}
	if len(doc.Tables[0].Rows) != 1 {
		t.Errorf("got %d table rows, want 1", len(doc.Tables[0].Rows))
	}
	if len(doc.Lists) != 1 || doc.Lists[0].Items[0] != "Status: open | closed" {
		t.Errorf("lists = %+v", doc.Lists)
	}
}

func TestParseDeepHeadingWithoutParent(t *testing.T) {
	content := "### Orphan Heading\n\nBody text.\n"

	doc := Parse(content)

	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	if doc.Sections[0].Title != "Orphan Heading" {
		t.Errorf("Title = %q", doc.Sections[0].Title)
	}
	if doc.Sections[0].Body != "Body text." {
		t.Errorf("Body = %q", doc.Sections[0].Body)
	}
}

func TestParseEmptyInput(t *testing.T) {
	doc := Parse("")

	if doc.Title != "" {
		t.Errorf("Title = %q, want empty", doc.Title)
	}
	if len(doc.Sections) != 0 {
		t.Errorf("got %d sections, want 0", len(doc.Sections))
	}
}

func TestParseSecondH1HasNoStructuralEffect(t *testing.T) {
	content := "# First Title\n\n# Second Title\n\n## Section\n\nBody.\n"

	doc := Parse(content)

	if doc.Title != "First Title" {
		t.Errorf("Title = %q, want First Title", doc.Title)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Title != "Section" {
		t.Errorf("sections = %+v", doc.Sections)
	}
}
