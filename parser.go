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

// EventKind discriminates the events produced by [Parser.Next].
type EventKind int

const (
	// StartTag marks the beginning of a container; a matching EndTag
	// with an identical Tag always follows once its children have been
	// visited.
	StartTag EventKind = iota
	// EndTag marks the end of a container opened by a StartTag.
	EndTag
	// TextEvent carries a run of literal text.
	TextEvent
	// CodeSpanEvent carries the (already whitespace-normalized) content
	// of an inline code span.
	CodeSpanEvent
	// InlineHTMLEvent carries the raw bytes of a recognized inline HTML
	// construct.
	InlineHTMLEvent
	// HTMLBlockEvent carries the raw bytes of an HTML block's lines.
	HTMLBlockEvent
	// CodeBlockEvent carries the raw bytes of a fenced or indented code
	// block's lines. Tag.Info holds a fenced block's info string; the
	// event does not otherwise say whether the block was fenced or
	// indented.
	CodeBlockEvent
	// SoftBreakEvent marks a line ending within a paragraph-like
	// container that is not a hard break.
	SoftBreakEvent
	// HardBreakEvent marks an explicit hard line break.
	HardBreakEvent
	// ThematicBreakEvent marks a thematic break (`<hr>`).
	ThematicBreakEvent
)

// TagKind identifies the kind of container a StartTag/EndTag pair
// delimits.
type TagKind int

const (
	ParagraphTag TagKind = iota
	HeadingTag
	BlockQuoteTag
	ListTag
	ItemTag
	EmphasisTag
	StrongTag
	LinkTag
	ImageTag
)

// Tag carries the kind-specific data for a StartTag/EndTag event pair.
type Tag struct {
	Kind TagKind

	// Level is the heading level, for HeadingTag.
	Level int

	// Ordered, Tight, and Start describe a ListTag.
	Ordered bool
	Tight   bool
	Start   int

	// Info holds a fenced code block's info string, for CodeBlockEvent.
	Info string

	// Destination and Title describe a LinkTag or ImageTag.
	Destination string
	Title       string
	TitleSet    bool
}

// Event is a single step of the depth-first walk over a [RootBlock]'s
// resolved tree, produced by [Parser.Next]. Which of Tag and Text is
// meaningful depends on Kind: StartTag and EndTag use Tag, the content
// events use Text, and CodeBlockEvent uses Text plus Tag.Info.
type Event struct {
	Kind EventKind
	Tag  Tag
	Text string
}

// frame tracks one level of open containers during the walk: the
// container node itself (NIL for the implicit top-level document) and
// the next child to visit.
type frame struct {
	container nodeIndex
	next      nodeIndex
}

// Parser is a pull-based, depth-first iterator over a [RootBlock]'s
// tree, per spec.md §4.4. It resolves each container's inline content
// lazily, the first time the walk reaches it, rather than all at once
// up front: a caller that only consumes a prefix of the document never
// pays for resolving the rest.
//
// A Parser is not safe for concurrent use, and at most one Parser may
// be actively walking a given RootBlock's tree at a time (resolution
// mutates the tree in place).
type Parser struct {
	b     *RootBlock
	stack []frame
	done  bool
}

// NewParser returns a Parser positioned at the start of b.
func NewParser(b *RootBlock) *Parser {
	return &Parser{
		b:     b,
		stack: []frame{{container: nilNode, next: b.tree.Child(nilNode)}},
	}
}

// Next advances the walk and returns the next event, or reports false
// once the document is exhausted.
func (p *Parser) Next() (Event, bool) {
	if p.done {
		return Event{}, false
	}
	t := p.b.tree
	for len(p.stack) > 0 {
		top := &p.stack[len(p.stack)-1]
		if top.next == nilNode {
			container := top.container
			p.stack = p.stack[:len(p.stack)-1]
			if container == nilNode {
				p.done = true
				return Event{}, false
			}
			if len(p.stack) > 0 {
				p.stack[len(p.stack)-1].next = t.Next(container)
			}
			return Event{Kind: EndTag, Tag: tagFor(t.Item(container))}, true
		}

		n := top.next
		it := t.Item(n)

		if isUnresolvedInlineKind(it.kind) {
			if !p.b.resolved[top.container] {
				// Resolution may replace n (and the link to it), so find
				// the already-emitted sibling before n and re-read its
				// successor afterwards.
				prev := nilNode
				for c := t.Child(top.container); c != n; c = t.Next(c) {
					prev = c
				}
				p.b.resolveInlines(top.container)
				if prev == nilNode {
					top.next = t.Child(top.container)
				} else {
					top.next = t.Next(prev)
				}
				continue
			}
			top.next = t.Next(n)
			return Event{Kind: TextEvent, Text: string(spanSlice(p.b.Source, it.span))}, true
		}

		if it.kind == backslashItem || it.kind == indentItem || it.kind == listMarkerItem {
			top.next = t.Next(n)
			continue
		}

		if isContainerKind(it.kind) {
			top.next = t.Next(n)
			p.stack = append(p.stack, frame{container: n, next: t.Child(n)})
			return Event{Kind: StartTag, Tag: tagFor(it)}, true
		}

		top.next = t.Next(n)
		return leafEvent(p.b, n, it), true
	}
	p.done = true
	return Event{}, false
}

func isUnresolvedInlineKind(k itemKind) bool {
	switch k {
	case maybeEmphasisItem, maybeCodeItem, maybeHTMLItem, maybeLinkOpenItem, maybeLinkCloseItem, maybeImageOpenItem:
		return true
	default:
		return false
	}
}

func isContainerKind(k itemKind) bool {
	switch k {
	case blockQuoteItem, listItem_, listItemItem,
		paragraphItem, atxHeadingItem, setextHeadingItem,
		emphasisItem, strongItem, linkItem, imageItem:
		return true
	default:
		return false
	}
}

// tagFor derives a Tag's public fields from a container item.
func tagFor(it item) Tag {
	switch it.kind {
	case paragraphItem:
		return Tag{Kind: ParagraphTag}
	case atxHeadingItem, setextHeadingItem:
		return Tag{Kind: HeadingTag, Level: it.n}
	case blockQuoteItem:
		return Tag{Kind: BlockQuoteTag}
	case listItem_:
		start := it.n
		if start == 0 {
			start = 1
		}
		return Tag{Kind: ListTag, Ordered: it.has(flagOrdered), Tight: !it.has(flagListLoose), Start: start}
	case listItemItem:
		return Tag{Kind: ItemTag}
	case emphasisItem:
		return Tag{Kind: EmphasisTag}
	case strongItem:
		return Tag{Kind: StrongTag}
	case linkItem:
		return Tag{Kind: LinkTag, Destination: it.text, Title: it.text2, TitleSet: it.text2 != ""}
	case imageItem:
		return Tag{Kind: ImageTag, Destination: it.text, Title: it.text2, TitleSet: it.text2 != ""}
	default:
		return Tag{}
	}
}

// leafEvent renders a leaf node (one with no Start/End pair) into its
// Event, concatenating a code/HTML block's line children into a single
// Text payload.
func leafEvent(b *RootBlock, n nodeIndex, it item) Event {
	switch it.kind {
	case textItem:
		return Event{Kind: TextEvent, Text: string(spanSlice(b.Source, it.span))}
	case softBreakItem:
		return Event{Kind: SoftBreakEvent}
	case hardBreakItem:
		return Event{Kind: HardBreakEvent}
	case codeSpanItem:
		return Event{Kind: CodeSpanEvent, Text: it.text}
	case inlineHTMLItem:
		return Event{Kind: InlineHTMLEvent, Text: string(spanSlice(b.Source, it.span))}
	case thematicBreakItem:
		return Event{Kind: ThematicBreakEvent}
	case fencedCodeBlockItem, indentedCodeBlockItem:
		return Event{Kind: CodeBlockEvent, Text: concatLineChildren(b, n), Tag: Tag{Info: infoStringOf(b, n)}}
	case htmlBlockItem:
		return Event{Kind: HTMLBlockEvent, Text: concatLineChildren(b, n)}
	default:
		return Event{Kind: TextEvent, Text: string(spanSlice(b.Source, it.span))}
	}
}

// concatLineChildren joins a code or HTML block's per-line text
// children back into a single string, skipping the info-string child
// (surfaced separately via infoStringOf). Any indent child is included
// verbatim: HTML block content preserves its own leading whitespace,
// and fenced/indented code block lines never produce indent children
// in the first place (appendCodeLine bypasses CollectInline).
func concatLineChildren(b *RootBlock, container nodeIndex) string {
	t := b.tree
	var out []byte
	for c := t.Child(container); c != nilNode; c = t.Next(c) {
		it := t.Item(c)
		if it.kind == textItem || it.kind == rawHTMLLineItem || it.kind == indentItem {
			out = append(out, spanSlice(b.Source, it.span)...)
		}
	}
	return string(out)
}

// infoStringOf returns a fenced code block's info string, if any.
func infoStringOf(b *RootBlock, container nodeIndex) string {
	t := b.tree
	for c := t.Child(container); c != nilNode; c = t.Next(c) {
		it := t.Item(c)
		if it.kind == infoStringItem {
			return string(spanSlice(b.Source, it.span))
		}
	}
	return ""
}
