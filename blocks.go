// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package commonmark

import (
	"bytes"

	"eventmark.dev/go/commonmark/internal/scanner"
	"eventmark.dev/go/commonmark/internal/tree"
)

// A RootBlock is the result of running the first pass over a chunk of
// CommonMark source: a tree arena rooted at a synthetic document node,
// plus the source bytes and position bookkeeping needed to translate
// spans back into input offsets.
type RootBlock struct {
	// Source holds the bytes of the block read from the original source.
	// Any NUL bytes will have been replaced with the Unicode Replacement
	// Character.
	Source []byte
	// StartLine is the 1-based line number of the first line of the block.
	StartLine int
	// StartOffset is the byte offset from the beginning of the original
	// source that this block starts at.
	StartOffset int64
	// EndOffset is the byte offset from the beginning of the original
	// source that this block ends at.
	EndOffset int64

	tree     *tree.Tree[item]
	links    map[string]linkDefinition
	resolved map[nodeIndex]bool
}

// linkDefinition is a gathered-but-unresolved link reference
// definition, collected during the first pass. See SPEC_FULL.md §5.1:
// nothing in this package consults it, but it is exposed for a
// downstream resolver.
type linkDefinition struct {
	destination string
	title       string
	titleSet    bool
}

// LinkDefinitions returns the link reference definitions collected
// while building b, keyed by their normalized label. The inline
// resolver does not consult this map; it exists for code downstream
// of the event stream that wants to resolve shortcut/collapsed
// reference links itself.
func (b *RootBlock) LinkDefinitions() map[string]struct {
	Destination string
	Title       string
	TitleSet    bool
} {
	out := make(map[string]struct {
		Destination string
		Title       string
		TitleSet    bool
	}, len(b.links))
	for k, v := range b.links {
		out[k] = struct {
			Destination string
			Title       string
			TitleSet    bool
		}{v.destination, v.title, v.titleSet}
	}
	return out
}

// Parse runs the first pass over source, replacing any NUL bytes with
// the Unicode replacement character first (CommonMark forbids NUL in
// its own conformance expectations, and no downstream HTML renderer
// can represent it safely).
func Parse(source []byte) *RootBlock {
	source = bytes.ReplaceAll(source, []byte{0}, []byte("�"))
	b := &RootBlock{
		Source:      source,
		StartLine:   1,
		StartOffset: 0,
		EndOffset:   int64(len(source)),
		tree:        tree.New[item](),
		links:       make(map[string]linkDefinition),
		resolved:    make(map[nodeIndex]bool),
	}
	fp := &firstPass{b: b, source: source}
	fp.run()
	return b
}

// firstPass drives the line-by-line loop described in spec.md §4.1.
// It tracks the currently open containers explicitly as spine, rather
// than relying on the arena's own Cur/spine bookkeeping (which is
// reserved for the inline second pass's depth-first descent, per
// spec.md §3.1); a block builder that addresses containers by their
// own node index is simpler to reason about than one that must keep
// every leaf-block open/close in lockstep with the arena's implicit
// append point.
type firstPass struct {
	b      *RootBlock
	source []byte

	// spine holds the indices of the currently open containers/leaf,
	// outermost first. An empty spine means the cursor is at the top
	// (document) level.
	spine []nodeIndex
}

func (fp *firstPass) run() {
	ix := 0
	for ix < len(fp.source) {
		ix = fp.parseLine(ix)
	}
	fp.closeSpine(len(fp.source))
}

// parseLine processes exactly one line starting at ix and returns the
// offset of the following line (or len(source) at EOF).
func (fp *firstPass) parseLine(ix int) int {
	lineEnd := scanNextLineStart(fp.source, ix)
	p := newLineParser(fp, fp.source, ix, lineEnd)

	matchedDepth := fp.scanContainers(p)

	// A line that fails to match every ancestor's continuation marker
	// (e.g. the "> " of a blockquote) can still lazily continue an
	// open paragraph at the spine's tip, as long as it isn't itself
	// blank and doesn't start a new block: closing the unmatched
	// ancestors is deferred until that's ruled out, mirroring how a
	// pointer-based builder would leave those blocks open rather than
	// eagerly popping them.
	if matchedDepth < len(fp.spine) && fp.tipKind() == paragraphItem && !p.IsRestBlank() && !startsNewBlock(p) {
		if fp.trySetext(p) {
			return lineEnd
		}
		if fp.continueParagraph(p) {
			return lineEnd
		}
	}

	fp.popToDepth(matchedDepth, p.lineStart)
	fp.openNewContainers(p)

	if p.IsRestBlank() {
		fp.markLastLineBlank()
		return lineEnd
	}

	if fp.tipKind() == paragraphItem {
		if fp.trySetext(p) {
			return lineEnd
		}
		if fp.continueParagraph(p) {
			return lineEnd
		}
	}

	for _, start := range blockStarts {
		if start(p) {
			return lineEnd
		}
	}

	fp.startParagraph(p)
	return lineEnd
}

// startsNewBlock reports whether the rest of the line opens a block
// quote, a list item, or a leaf block other than a paragraph.
func startsNewBlock(p *lineParser) bool {
	rest := p.BytesAfterIndent()
	if p.Indent() >= scanner.CodeBlockIndentLimit {
		return false
	}
	for _, cond := range scanner.HTMLBlockConditions {
		if cond.CanInterruptParagraph && cond.StartCondition(rest) {
			return true
		}
	}
	return bytes.HasPrefix(rest, []byte(">")) || scanner.ATXHeadingScan(rest).Level > 0 ||
		scanner.CodeFenceScan(rest).N > 0 || scanner.ThematicBreak(rest) >= 0 ||
		scanner.ListMarkerScan(rest).End >= 0
}

// scanContainers walks the open container spine and attempts to
// consume each container's continuation marker against the line,
// stopping at the first non-match. It returns the depth reached.
func (fp *firstPass) scanContainers(p *lineParser) int {
	for depth, idx := range fp.spine {
		kind := fp.b.tree.Item(idx).kind
		rule := blockRules[kind]
		if rule.match == nil {
			continue
		}
		p.containerIdx = idx
		if !rule.match(p) {
			return depth
		}
	}
	return len(fp.spine)
}

func (fp *firstPass) tipKind() itemKind {
	if len(fp.spine) == 0 {
		return documentItem
	}
	return fp.b.tree.Item(fp.spine[len(fp.spine)-1]).kind
}

func (fp *firstPass) tip() nodeIndex {
	if len(fp.spine) == 0 {
		return nilNode
	}
	return fp.spine[len(fp.spine)-1]
}

// popToDepth closes every open container deeper than depth, setting
// each popped container's end to pos.
func (fp *firstPass) popToDepth(depth, pos int) {
	for len(fp.spine) > depth {
		fp.popOne(pos)
	}
}

func (fp *firstPass) closeSpine(end int) {
	for len(fp.spine) > 0 {
		fp.popOne(end)
	}
}

func (fp *firstPass) popOne(end int) {
	n := len(fp.spine)
	idx := fp.spine[n-1]
	fp.spine = fp.spine[:n-1]
	fp.closeItemAt(idx, end)
}

// closeItemAt closes idx at byte offset end, running any onClose rule
// (tight-list determination, link-reference-definition extraction,
// trailing-blank-line trim).
func (fp *firstPass) closeItemAt(idx nodeIndex, end int) {
	t := fp.b.tree
	it := t.Item(idx)
	it.span.End = end
	t.SetItem(idx, it)
	if rule := blockRules[it.kind]; rule.onClose != nil {
		rule.onClose(fp, idx)
	}
}

func (fp *firstPass) markLastLineBlank() {
	n := fp.tip()
	if n == nilNode {
		return
	}
	it := fp.b.tree.Item(n)
	it.set(flagLastLineBlank)
	fp.b.tree.SetItem(n, it)
}

// openNewContainers opens block-quote and list-item containers
// presented at the start of the (already partially consumed) line.
func (fp *firstPass) openNewContainers(p *lineParser) {
	for blockQuoteStart(p) || fp.listItemStart(p) {
	}
}

func blockQuoteStart(p *lineParser) bool {
	indent := p.Indent()
	if indent >= scanner.CodeBlockIndentLimit {
		return false
	}
	if !bytes.HasPrefix(p.BytesAfterIndent(), []byte(">")) {
		return false
	}
	p.ConsumeIndent(indent)
	p.OpenBlock(blockQuoteItem)
	p.Advance(1)
	if p.Indent() > 0 {
		p.ConsumeIndent(1)
	}
	return true
}

func (fp *firstPass) listItemStart(p *lineParser) bool {
	indent := p.Indent()
	if indent >= scanner.CodeBlockIndentLimit {
		return false
	}
	m := scanner.ListMarkerScan(p.BytesAfterIndent())
	if m.End < 0 || (fp.tipKind() == paragraphItem && m.IsOrdered() && m.N != 1) {
		return false
	}
	if fp.tipKind() == paragraphItem && scanner.IsBlankLine(p.BytesAfterIndent()[m.End:]) {
		return false
	}

	p.ConsumeIndent(indent)
	if fp.tipKind() != listItem_ || fp.tipDelim() != m.Delim {
		p.OpenOrderedListBlock(listItem_, m.Delim, m.IsOrdered(), m.N)
	}
	p.OpenListBlock(listItemItem, m.Delim, m.IsOrdered())
	p.OpenBlock(listMarkerItem)
	p.Advance(m.End)
	p.EndBlock()
	if p.IsRestBlank() {
		p.SetContainerIndent(indent + m.End + 1)
		p.ConsumeLine()
		return true
	}
	padding := p.Indent()
	switch {
	case padding < 1:
		padding = 1
	case padding > 4:
		padding = 1
		p.ConsumeIndent(1)
	default:
		p.ConsumeIndent(padding)
	}
	p.SetContainerIndent(indent + m.End + padding)
	return true
}

func (fp *firstPass) tipDelim() byte {
	n := fp.tip()
	if n == nilNode {
		return 0
	}
	return fp.b.tree.Item(n).char
}

// trySetext checks the line (before any text is collected from it)
// for a setext heading underline and, if found, morphs the open
// paragraph into a setext heading and closes it.
func (fp *firstPass) trySetext(p *lineParser) bool {
	indent := p.Indent()
	if indent >= scanner.CodeBlockIndentLimit {
		return false
	}
	level := scanner.SetextHeadingUnderline(p.BytesAfterIndent())
	if level == 0 {
		return false
	}
	p.ConsumeIndent(indent)
	p.MorphSetext(level)
	p.ConsumeLine()
	p.EndBlock()
	return true
}

func (fp *firstPass) continueParagraph(p *lineParser) bool {
	if !blockRules[paragraphItem].match(p) {
		return false
	}
	p.CollectInline(textItem, len(p.BytesAfterIndent()))
	p.ConsumeLine()
	return true
}

func (fp *firstPass) startParagraph(p *lineParser) {
	p.OpenBlock(paragraphItem)
	p.CollectInline(textItem, len(p.BytesAfterIndent()))
	p.ConsumeLine()
}
