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
	"strings"

	"eventmark.dev/go/commonmark/internal/scanner"
	"eventmark.dev/go/commonmark/internal/tree"
)

// scanNextLineStart returns the offset just past the next line ending
// at or after ix, or len(source) if ix's line is the last one.
func scanNextLineStart(source []byte, ix int) int {
	i := bytes.IndexByte(source[ix:], '\n')
	if i < 0 {
		return len(source)
	}
	return ix + i + 1
}

// lineParser is a cursor on a single line of text, used while
// splitting a document into blocks. Its exported methods are the
// contract between the first pass and the block-start/block-rule
// tables below: in the future, lineParser could be exported to permit
// custom block rules, but it's unclear how often that's needed.
type lineParser struct {
	fp     *firstPass
	source []byte

	lineStart int // byte offset from the start of source to the start of this line
	line      []byte
	i         int // byte position within line
	col       int // 0-based column position within line

	containerIdx nodeIndex // valid only while scanContainers is walking the spine
}

func newLineParser(fp *firstPass, source []byte, lineStart, lineEnd int) *lineParser {
	return &lineParser{
		fp:        fp,
		source:    source,
		lineStart: lineStart,
		line:      source[lineStart:lineEnd],
	}
}

// BytesAfterIndent returns the bytes after any indentation immediately
// following the cursor.
func (p *lineParser) BytesAfterIndent() []byte {
	return bytes.TrimLeft(p.line[p.i:], " \t")
}

// IsRestBlank reports whether the rest of the line is blank.
func (p *lineParser) IsRestBlank() bool {
	return scanner.IsBlankLine(p.line[p.i:])
}

// Advance advances the parser by n bytes.
func (p *lineParser) Advance(n int) {
	if n < 0 {
		panic("negative length")
	}
	newIndex := p.i + n
	if newIndex > len(p.line) {
		panic("index out of bounds")
	}
	p.col += scanner.ColumnWidth(p.col, p.line[p.i:newIndex])
	p.i = newIndex
}

// ConsumeLine advances the cursor past the end of the line.
func (p *lineParser) ConsumeLine() {
	p.Advance(len(p.line) - p.i)
}

// Indent returns the number of columns of whitespace present after
// the cursor's position.
func (p *lineParser) Indent() int {
	if p.i >= len(p.line) {
		return 0
	}
	if p.line[p.i] != ' ' && p.line[p.i] != '\t' {
		return 0
	}
	n := scanner.IndentLength(p.line[p.i:])
	return scanner.ColumnWidth(p.col, p.line[p.i:p.i+n])
}

// ConsumeIndent advances the parser by n columns of whitespace.
func (p *lineParser) ConsumeIndent(n int) {
	for n > 0 && p.i < len(p.line) && (p.line[p.i] == ' ' || p.line[p.i] == '\t') {
		width := scanner.ColumnWidth(p.col, p.line[p.i:p.i+1])
		if width > n {
			break
		}
		n -= width
		p.col += width
		p.i++
	}
}

// ContainerIndent returns the indent value assigned to the container
// currently being matched (valid only while scanContainers walks the
// spine).
func (p *lineParser) ContainerIndent() int {
	return p.fp.b.tree.Item(p.containerIdx).n
}

func (p *lineParser) containerHasChildren() bool {
	return p.fp.b.tree.Child(p.containerIdx) != nilNode
}

func (p *lineParser) containerCodeFence() (char byte, n int) {
	// The block's n holds its indent, so the opening fence is rescanned
	// from the block's start for its length.
	start := p.fp.b.tree.Item(p.containerIdx).span.Start
	f := scanner.CodeFenceScan(p.source[start:scanNextLineStart(p.source, start)])
	return f.Char, f.N
}

func (p *lineParser) containerHTMLCondition() int {
	return p.fp.b.tree.Item(p.containerIdx).n
}

// OpenBlock starts a new block of kind at the current position. It is
// not used for kinds with extra kind-specific setup (lists, fenced
// code, headings, HTML blocks); use the Open* helpers below for those.
func (p *lineParser) OpenBlock(kind itemKind) nodeIndex {
	return p.openBlock(kind, 0, 0, false)
}

func (p *lineParser) OpenListBlock(kind itemKind, delim byte, ordered bool) nodeIndex {
	return p.openBlock(kind, 0, delim, ordered)
}

// OpenOrderedListBlock is OpenListBlock for a ListItem container,
// additionally recording the list's starting ordinal (meaningless for
// anything but an ordered list's first item).
func (p *lineParser) OpenOrderedListBlock(kind itemKind, delim byte, ordered bool, start int) nodeIndex {
	return p.openBlock(kind, start, delim, ordered)
}

func (p *lineParser) OpenFencedCodeBlock(fenceChar byte, numChars int) nodeIndex {
	return p.openBlock(fencedCodeBlockItem, numChars, fenceChar, false)
}

func (p *lineParser) OpenHeadingBlock(kind itemKind, level int) nodeIndex {
	return p.openBlock(kind, level, 0, false)
}

func (p *lineParser) OpenHTMLBlock(conditionIndex int) nodeIndex {
	return p.openBlock(htmlBlockItem, conditionIndex, 0, false)
}

// openBlock closes open containers that cannot hold kind, then appends
// a new node of kind as a child of the (possibly now-shallower) tip
// and pushes it onto fp.spine.
func (p *lineParser) openBlock(kind itemKind, n int, char byte, ordered bool) nodeIndex {
	fp := p.fp
	for {
		tipKind := fp.tipKind()
		rule := blockRules[tipKind]
		if rule.canContain != nil && rule.canContain(kind) {
			break
		}
		if len(fp.spine) == 0 {
			break
		}
		fp.popOne(p.lineStart)
	}

	it := item{kind: kind, span: Span{Start: p.lineStart + p.i, End: -1}, n: n, char: char}
	it.setBool(flagOrdered, ordered)

	parent := fp.tip()
	idx := fp.b.tree.AppendChild(parent, it)
	fp.spine = append(fp.spine, idx)
	return idx
}

// SetContainerIndent sets the just-opened container's indentation.
func (p *lineParser) SetContainerIndent(indent int) {
	tip := p.fp.tip()
	it := p.fp.b.tree.Item(tip)
	it.n = indent
	p.fp.b.tree.SetItem(tip, it)
}

// MorphSetext changes the currently open paragraph into a setext
// heading of the given level.
func (p *lineParser) MorphSetext(level int) {
	tip := p.fp.tip()
	it := p.fp.b.tree.Item(tip)
	it.kind = setextHeadingItem
	it.n = level
	p.fp.b.tree.SetItem(tip, it)
}

// CollectInline adds a new text-shaped inline child to the current
// block, starting at the current position and ending after n bytes.
// If the current position is at an indent, the indent is captured as
// a preceding synthesized-indent child; n does not count those bytes.
func (p *lineParser) CollectInline(kind itemKind, n int) {
	t := p.fp.b.tree
	tip := p.fp.tip()
	if tip == nilNode {
		return
	}
	if indent := p.Indent(); indent > 0 {
		indentStart := p.lineStart + p.i
		skip := scanner.IndentLength(p.line[p.i:])
		p.Advance(skip)
		t.AppendChild(tip, item{kind: indentItem, span: Span{Start: indentStart, End: p.lineStart + p.i}, n: indent})
	}
	if kind == textItem {
		p.appendLineTokens(n)
		return
	}
	start := p.lineStart + p.i
	p.Advance(n)
	t.AppendChild(tip, item{kind: kind, span: Span{Start: start, End: p.lineStart + p.i}})
}

// EndBlock ends the currently open block at the current position.
func (p *lineParser) EndBlock() {
	if len(p.fp.spine) == 0 {
		return
	}
	p.fp.popOne(p.lineStart + p.i)
}

const blockQuotePrefix = ">"

// blockStarts is the ordered table of leaf-block-start recognizers,
// tried in priority order against a line that didn't continue an
// existing paragraph.
var blockStarts = []func(*lineParser) bool{
	// ATX heading.
	func(p *lineParser) bool {
		indent := p.Indent()
		if indent >= scanner.CodeBlockIndentLimit {
			return false
		}
		h := scanner.ATXHeadingScan(p.BytesAfterIndent())
		if h.Level < 1 {
			return false
		}
		p.ConsumeIndent(indent)
		p.OpenHeadingBlock(atxHeadingItem, h.Level)
		p.Advance(h.ContentStart)
		p.CollectInline(textItem, h.ContentEnd-h.ContentStart)
		p.ConsumeLine()
		p.EndBlock()
		return true
	},

	// Fenced code block.
	func(p *lineParser) bool {
		indent := p.Indent()
		if indent >= scanner.CodeBlockIndentLimit {
			return false
		}
		f := scanner.CodeFenceScan(p.BytesAfterIndent())
		if f.N == 0 {
			return false
		}
		p.ConsumeIndent(indent)
		p.OpenFencedCodeBlock(f.Char, f.N)
		p.SetContainerIndent(indent)
		if f.InfoStart >= 0 {
			p.Advance(f.InfoStart)
			p.CollectInline(infoStringItem, f.InfoEnd-f.InfoStart)
		}
		p.ConsumeLine()
		return true
	},

	// HTML block.
	func(p *lineParser) bool {
		indent := p.Indent()
		if indent >= scanner.CodeBlockIndentLimit {
			return false
		}
		line := p.BytesAfterIndent()
		if len(line) == 0 || line[0] != '<' {
			return false
		}
		for i, cond := range scanner.HTMLBlockConditions {
			if cond.StartCondition(line) {
				if !cond.CanInterruptParagraph && p.fp.tipKind() == paragraphItem {
					return false
				}
				p.OpenHTMLBlock(i)
				p.CollectInline(rawHTMLLineItem, len(p.BytesAfterIndent()))
				p.ConsumeLine()
				if i < 5 && cond.EndCondition(line) {
					p.EndBlock()
				}
				return true
			}
		}
		return false
	},

	// Thematic break.
	func(p *lineParser) bool {
		indent := p.Indent()
		if indent >= scanner.CodeBlockIndentLimit {
			return false
		}
		end := scanner.ThematicBreak(p.BytesAfterIndent())
		if end < 0 {
			return false
		}
		p.ConsumeIndent(indent)
		p.OpenBlock(thematicBreakItem)
		p.Advance(end)
		p.ConsumeLine()
		p.EndBlock()
		return true
	},

	// Indented code block.
	func(p *lineParser) bool {
		if p.Indent() < scanner.CodeBlockIndentLimit || p.IsRestBlank() || p.fp.tipKind() == paragraphItem {
			return false
		}
		p.ConsumeIndent(scanner.CodeBlockIndentLimit)
		p.OpenBlock(indentedCodeBlockItem)
		appendCodeLine(p)
		return true
	},
}

// appendCodeLine appends the remainder of the line (after whatever
// indent stripping already happened) as a code-block line, tracking
// lastNonblankChild for the trailing-blank-line trim that happens in
// onClose.
func appendCodeLine(p *lineParser) {
	t := p.fp.b.tree
	tip := p.fp.tip()
	start := p.lineStart + p.i
	p.ConsumeLine()
	end := p.lineStart + len(p.line)
	idx := t.AppendChild(tip, item{kind: textItem, span: Span{Start: start, End: end}})
	if !scanner.IsBlankLine(p.source[start:end]) {
		it := t.Item(tip)
		it.lastNonblankChild = idx
		t.SetItem(tip, it)
	}
}

type blockRule struct {
	match      func(*lineParser) bool
	onClose    func(fp *firstPass, idx nodeIndex)
	canContain func(childKind itemKind) bool
}

var blockRules = map[itemKind]blockRule{
	listItem_: {
		match:      func(*lineParser) bool { return true },
		canContain: func(k itemKind) bool { return k == listItemItem },
		onClose:    onCloseList,
	},
	listItemItem: {
		match: func(p *lineParser) bool {
			switch {
			case p.IsRestBlank():
				if !p.containerHasChildren() {
					return false
				}
				p.ConsumeIndent(p.Indent())
				return true
			case p.Indent() >= p.ContainerIndent():
				p.ConsumeIndent(p.ContainerIndent())
				return true
			default:
				return false
			}
		},
		canContain: func(k itemKind) bool { return k != listItemItem },
	},
	blockQuoteItem: {
		match: func(p *lineParser) bool {
			indent := p.Indent()
			if indent >= scanner.CodeBlockIndentLimit {
				return false
			}
			if !bytes.HasPrefix(p.BytesAfterIndent(), []byte(blockQuotePrefix)) {
				return false
			}
			p.ConsumeIndent(indent)
			p.Advance(1)
			if p.Indent() > 0 {
				p.ConsumeIndent(1)
			}
			return true
		},
		canContain: func(k itemKind) bool { return k != listItemItem },
	},
	fencedCodeBlockItem: {
		match: func(p *lineParser) bool {
			lineIndent := p.Indent()
			if lineIndent < scanner.CodeBlockIndentLimit {
				startChar, startN := p.containerCodeFence()
				f := scanner.CodeFenceScan(p.BytesAfterIndent())
				if f.N > 0 && f.InfoStart < 0 && f.Char == startChar && f.N >= startN {
					p.ConsumeLine()
					return false
				}
			}
			blockIndent := p.ContainerIndent()
			if lineIndent < blockIndent {
				p.ConsumeIndent(lineIndent)
			} else {
				p.ConsumeIndent(blockIndent)
			}
			appendCodeLine(p)
			return true
		},
	},
	indentedCodeBlockItem: {
		match: func(p *lineParser) bool {
			indent := p.Indent()
			if indent < scanner.CodeBlockIndentLimit {
				if !p.IsRestBlank() {
					return false
				}
				p.ConsumeIndent(indent)
			} else {
				p.ConsumeIndent(scanner.CodeBlockIndentLimit)
			}
			appendCodeLine(p)
			return true
		},
		onClose: onCloseIndentedCodeBlock,
	},
	htmlBlockItem: {
		match: func(p *lineParser) bool {
			cond := scanner.HTMLBlockConditions[p.containerHTMLCondition()]
			if p.containerHTMLCondition() < 5 && cond.EndCondition(p.BytesAfterIndent()) {
				if !p.IsRestBlank() {
					p.CollectInline(rawHTMLLineItem, len(p.BytesAfterIndent()))
				}
				p.ConsumeLine()
				return false
			}
			if p.containerHTMLCondition() >= 5 && p.IsRestBlank() {
				return false
			}
			if !p.IsRestBlank() {
				p.CollectInline(rawHTMLLineItem, len(p.BytesAfterIndent()))
			}
			p.ConsumeLine()
			return true
		},
	},
	paragraphItem: {
		match: func(p *lineParser) bool {
			return !p.IsRestBlank()
		},
		onClose: onCloseParagraph,
	},
	setextHeadingItem: {
		onClose: onCloseParagraph,
	},
}

// onCloseList determines tightness: a list is loose if a blank line
// appears between any of its items (or within an item, before its
// last child).
func onCloseList(fp *firstPass, idx nodeIndex) {
	t := fp.b.tree
	endsWithBlankLine := func(n nodeIndex) bool {
		for n != nilNode {
			it := t.Item(n)
			if it.has(flagLastLineBlank) {
				return true
			}
			if it.kind != listItem_ && it.kind != listItemItem {
				return false
			}
			last := nilNode
			for c := t.Child(n); c != nilNode; c = t.Next(c) {
				last = c
			}
			n = last
		}
		return false
	}

	var items []nodeIndex
	for c := t.Child(idx); c != nilNode; c = t.Next(c) {
		items = append(items, c)
	}
	loose := false
outer:
	for i, itemIdx := range items {
		if i < len(items)-1 && endsWithBlankLine(itemIdx) {
			loose = true
			break outer
		}
		var subitems []nodeIndex
		for c := t.Child(itemIdx); c != nilNode; c = t.Next(c) {
			subitems = append(subitems, c)
		}
		for j, sub := range subitems {
			if (i < len(items)-1 || j < len(subitems)-1) && endsWithBlankLine(sub) {
				loose = true
				break outer
			}
		}
	}
	if loose {
		it := t.Item(idx)
		it.set(flagListLoose)
		t.SetItem(idx, it)
		for _, itemIdx := range items {
			iit := t.Item(itemIdx)
			iit.set(flagListLoose)
			t.SetItem(itemIdx, iit)
		}
		return
	}

	for _, itemIdx := range items {
		spliceOutParagraphs(t, itemIdx)
	}
}

// spliceOutParagraphs implements tight-list surgery (spec.md §4.6):
// each Paragraph child of parent is replaced by its own children, so
// the event iterator walks straight from the list item into its
// content without an intervening Paragraph Start/End pair.
func spliceOutParagraphs(t *tree.Tree[item], parent nodeIndex) {
	prev := nilNode
	for c := t.Child(parent); c != nilNode; {
		next := t.Next(c)
		if t.Item(c).kind != paragraphItem {
			prev = c
			c = next
			continue
		}
		first := t.Child(c)
		last := nilNode
		for p := first; p != nilNode; p = t.Next(p) {
			last = p
		}
		if prev == nilNode {
			t.SetChild(parent, first)
		} else {
			t.SetNext(prev, first)
		}
		if last != nilNode {
			t.SetNext(last, next)
			prev = last
		}
		c = next
	}
}

// onCloseIndentedCodeBlock trims trailing blank-line children: "Blank
// lines preceding or following an indented code block are not
// included in it."
func onCloseIndentedCodeBlock(fp *firstPass, idx nodeIndex) {
	t := fp.b.tree
	it := t.Item(idx)
	if it.lastNonblankChild == nilNode {
		t.SetChild(idx, nilNode)
		return
	}
	t.SetNext(it.lastNonblankChild, nilNode)
}

// onCloseParagraph scans the beginning of a just-closed paragraph (or
// setext heading) for link reference definitions and, if found,
// records them in fp.b.links without mutating the paragraph's
// rendered text (resolution is out of scope; see SPEC_FULL.md §5.1).
func onCloseParagraph(fp *firstPass, idx nodeIndex) {
	t := fp.b.tree
	trimTrailingBreak(t, idx)
	it := t.Item(idx)
	text := string(spanSlice(fp.source, it.span))
	for {
		label, dest, rest, ok := scanLinkReferenceDefinition(text)
		if !ok {
			return
		}
		norm := normalizeLinkLabel(label)
		if _, exists := fp.b.links[norm]; !exists {
			fp.b.links[norm] = linkDefinition{destination: dest}
		}
		text = strings.TrimLeft(rest, " \t\r\n")
		if text == "" {
			return
		}
	}
}

// trimTrailingBreak removes a trailing soft/hard break child from idx,
// if present. appendLineTokens appends one after every physical line's
// terminator without knowing whether a further line will follow in the
// same block, so a break item dangling after a block's last line is a
// scanning artifact: CommonMark only has a line break between two
// lines, never after a block's final one.
func trimTrailingBreak(t *tree.Tree[item], idx nodeIndex) {
	child := t.Child(idx)
	if child == nilNode {
		return
	}
	prev := nilNode
	last := child
	for t.Next(last) != nilNode {
		prev = last
		last = t.Next(last)
	}
	switch t.Item(last).kind {
	case softBreakItem, hardBreakItem:
	default:
		return
	}
	if prev == nilNode {
		t.SetChild(idx, nilNode)
	} else {
		t.SetNext(prev, nilNode)
	}
}

// normalizeLinkLabel case-folds and collapses whitespace in a link
// label for use as a map key, per CommonMark's matching rules.
func normalizeLinkLabel(label string) string {
	fields := strings.Fields(label)
	return strings.ToLower(strings.Join(fields, " "))
}
