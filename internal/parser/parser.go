// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parser turns raw markdown-flavoured text into a section tree
// plus the code blocks, tables, and lists found along the way. Parsing is
// a single forward scan over lines with a small state machine; malformed
// input degrades to mis-segmented content, never an error.
package parser

import (
	"regexp"
	"strings"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

var (
	// headingRe matches ATX headings: one to six # characters, a space,
	// and the title text.
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)

	// bulletRe matches bulleted list items.
	bulletRe = regexp.MustCompile(`^\s*[-*+]\s+(.+)$`)

	// numberedRe matches numbered list items like "1." or "2)".
	numberedRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)

	// tableSepRe matches separator-only table rows built from dashes,
	// colons, pipes, and whitespace.
	tableSepRe = regexp.MustCompile(`^[\s|:\-]+$`)
)

const fence = "```"

// scanState tracks what the forward scan is currently inside of.
type scanState int

const (
	stateNormal scanState = iota
	stateInCodeBlock
	stateInTable
)

// Parse scans content line by line and returns the structural view of the
// document. The first level-1 heading becomes the title; level-2 headings
// open top-level sections; level-3+ headings nest one level under the
// current level-2 section.
func Parse(content string) *types.ParsedDocument {
	p := &docBuilder{doc: &types.ParsedDocument{}}

	for _, line := range strings.Split(content, "\n") {
		p.feed(line)
	}
	p.finish()

	return p.doc
}

// docBuilder holds the scan state while a document is assembled.
type docBuilder struct {
	doc   *types.ParsedDocument
	state scanState

	// current open section: top is the active level-2 section, sub the
	// active level-3+ child. Body lines go to sub when set, else top.
	top *types.Section
	sub *types.Section

	// preamble collects body lines seen before the first level-2 heading.
	preamble []string
	bodyBuf  []string

	codeLang  string
	codeLines []string

	tableRows [][]string

	listItems   []string
	listOrdered bool
}

// feed processes one line according to the current state.
func (p *docBuilder) feed(line string) {
	trimmed := strings.TrimSpace(line)

	if p.state == stateInCodeBlock {
		if strings.HasPrefix(trimmed, fence) {
			p.flushCodeBlock()
			p.state = stateNormal
			return
		}
		p.codeLines = append(p.codeLines, line)
		return
	}

	if strings.HasPrefix(trimmed, fence) {
		p.flushTable()
		p.flushList()
		p.codeLang = strings.TrimSpace(strings.TrimPrefix(trimmed, fence))
		p.state = stateInCodeBlock
		return
	}

	if m := headingRe.FindStringSubmatch(trimmed); m != nil {
		p.flushTable()
		p.flushList()
		p.openSection(len(m[1]), m[2])
		return
	}

	// A list marker wins over the pipe check below: items like
	// "- Status: a | b | c" are list entries, not table rows.
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		p.endTable()
		if len(p.listItems) == 0 {
			p.listOrdered = false
		}
		p.listItems = append(p.listItems, strings.TrimSpace(m[1]))
		p.appendBody(line)
		return
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		p.endTable()
		if len(p.listItems) == 0 {
			p.listOrdered = true
		}
		p.listItems = append(p.listItems, strings.TrimSpace(m[1]))
		p.appendBody(line)
		return
	}

	// Remaining pipe lines outside code blocks accumulate as table rows.
	if strings.Contains(line, "|") {
		p.flushList()
		p.state = stateInTable
		if !tableSepRe.MatchString(trimmed) {
			p.tableRows = append(p.tableRows, splitTableRow(trimmed))
		}
		p.appendBody(line)
		return
	}
	p.endTable()
	// A blank line is a weak continuation signal: the list stays open so
	// loosely spaced items still group together. Any other text ends it.
	if trimmed != "" {
		p.flushList()
	}

	p.appendBody(line)
}

// endTable flushes an in-progress table and returns the scan to normal.
func (p *docBuilder) endTable() {
	if p.state == stateInTable {
		p.flushTable()
		p.state = stateNormal
	}
}

// openSection closes the current body accumulation and opens a section at
// the given heading level.
func (p *docBuilder) openSection(level int, title string) {
	if level == 1 {
		// A level-1 heading sets the title only once; later H1s are
		// treated as content boundaries with no structural effect.
		if p.doc.Title == "" {
			p.doc.Title = title
		}
		p.flushBody()
		return
	}

	p.flushBody()

	if level == 2 {
		p.closeTop()
		p.top = &types.Section{Level: level, Title: title}
		p.sub = nil
		return
	}

	// Level 3+: nest one level under the current level-2 section. With no
	// open level-2 parent the heading promotes itself to a top section.
	p.closeSub()
	if p.top == nil {
		p.top = &types.Section{Level: level, Title: title}
		return
	}
	p.sub = &types.Section{Level: level, Title: title}
}

// appendBody adds a line to the innermost open section, or to the
// preamble when no section is open yet.
func (p *docBuilder) appendBody(line string) {
	if p.top == nil {
		p.preamble = append(p.preamble, line)
		return
	}
	p.bodyBuf = append(p.bodyBuf, line)
}

// currentSectionTitle names the innermost open section for attribution of
// code blocks, tables, and lists.
func (p *docBuilder) currentSectionTitle() string {
	if p.sub != nil {
		return p.sub.Title
	}
	if p.top != nil {
		return p.top.Title
	}
	return ""
}

func (p *docBuilder) flushBody() {
	body := strings.TrimSpace(strings.Join(p.bodyBuf, "\n"))
	p.bodyBuf = nil
	if body == "" {
		return
	}
	if p.sub != nil {
		p.sub.Body = joinBody(p.sub.Body, body)
		return
	}
	if p.top != nil {
		p.top.Body = joinBody(p.top.Body, body)
	}
}

func (p *docBuilder) closeSub() {
	p.flushBody()
	if p.sub != nil && p.top != nil {
		p.top.Children = append(p.top.Children, *p.sub)
	}
	p.sub = nil
}

func (p *docBuilder) closeTop() {
	p.closeSub()
	if p.top != nil {
		p.doc.Sections = append(p.doc.Sections, *p.top)
	}
	p.top = nil
}

func (p *docBuilder) flushCodeBlock() {
	p.doc.CodeBlocks = append(p.doc.CodeBlocks, types.CodeBlock{
		Language: p.codeLang,
		Content:  strings.Join(p.codeLines, "\n"),
		Section:  p.currentSectionTitle(),
	})
	p.codeLang = ""
	p.codeLines = nil
}

func (p *docBuilder) flushTable() {
	if len(p.tableRows) == 0 {
		return
	}
	t := types.Table{
		Headers: p.tableRows[0],
		Section: p.currentSectionTitle(),
	}
	if len(p.tableRows) > 1 {
		t.Rows = p.tableRows[1:]
	}
	p.doc.Tables = append(p.doc.Tables, t)
	p.tableRows = nil
}

func (p *docBuilder) flushList() {
	if len(p.listItems) == 0 {
		return
	}
	p.doc.Lists = append(p.doc.Lists, types.List{
		Items:   p.listItems,
		Ordered: p.listOrdered,
		Section: p.currentSectionTitle(),
	})
	p.listItems = nil
}

// finish closes whatever is still open at end of input. An unterminated
// code block is kept as-is rather than reported as an error.
func (p *docBuilder) finish() {
	if p.state == stateInCodeBlock {
		p.flushCodeBlock()
	}
	p.flushTable()
	p.flushList()
	p.closeTop()

	// Preamble text before the first level-2 heading becomes an untitled
	// section so no content is lost.
	pre := strings.TrimSpace(strings.Join(p.preamble, "\n"))
	if pre != "" {
		p.doc.Sections = append([]types.Section{{Level: 2, Body: pre}}, p.doc.Sections...)
	}
}

// splitTableRow breaks a pipe-delimited line into trimmed cells, ignoring
// leading and trailing pipes.
func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		cells = append(cells, strings.TrimSpace(part))
	}
	return cells
}

func joinBody(existing, more string) string {
	if existing == "" {
		return more
	}
	return existing + "\n" + more
}
