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

//go:generate stringer -type=itemKind -output=kind_string.go

package commonmark

import "eventmark.dev/go/commonmark/internal/tree"

// nodeIndex addresses a single item in a [RootBlock]'s tree.
type nodeIndex = tree.Index

const nilNode = tree.NIL

// An item is a single node's payload: a byte-offset span into the
// root block's source plus a kind-specific datum. Both block and
// inline nodes live in the same arena and share this struct, the way
// the first pass produces them before any container/leaf split is
// meaningful to callers.
//
// Exactly one of the kind-specific datum groups below is meaningful
// for a given kind; see the field comments.
type item struct {
	kind itemKind
	span Span

	// n is a kind-specific datum.
	// ATXHeadingItem/SetextHeadingItem: heading level.
	// FencedCodeBlockItem: indentation of the opening fence.
	// HTMLBlockItem: index into htmlBlockConditions that started the block.
	// MaybeEmphasisItem: run length of the delimiter run.
	// MaybeCodeItem: backtick run length.
	// ListItem: starting ordinal for an ordered list.
	// ListItemItem: indent required to continue.
	n int

	// char is a kind-specific datum.
	// ListItem/ListItemItem: marker delimiter byte.
	// FencedCodeBlockItem: fence character.
	// MaybeEmphasisItem: '*' or '_'.
	char byte

	// flags holds small kind-specific booleans, packed to keep item
	// small: bit 0 = listLoose, bit 1 = canOpen, bit 2 = canClose,
	// bit 3 = lastLineBlank, bit 4 = active (emphasis delimiters
	// removed from consideration after a match), bit 5 = ordered list.
	flags uint8

	// lastNonblankChild is valid for IndentedCodeBlockItem: the index
	// of the last non-blank line child seen, used to trim trailing
	// blank lines when the block closes.
	lastNonblankChild nodeIndex

	// text holds literal bytes for items that don't reference the
	// source directly: CodeSpanItem's normalized content and
	// LinkItem/ImageItem's destination (text) and title (text2).
	text  string
	text2 string
}

const (
	flagListLoose     uint8 = 1 << 0
	flagCanOpen       uint8 = 1 << 1
	flagCanClose      uint8 = 1 << 2
	flagLastLineBlank uint8 = 1 << 3
	flagActive        uint8 = 1 << 4
	flagOrdered       uint8 = 1 << 5
)

func (it *item) has(f uint8) bool  { return it.flags&f != 0 }
func (it *item) set(f uint8)       { it.flags |= f }
func (it *item) clear(f uint8)     { it.flags &^= f }
func (it *item) setBool(f uint8, v bool) {
	if v {
		it.set(f)
	} else {
		it.clear(f)
	}
}

// itemKind enumerates the tagged-union discriminants for [item].
type itemKind uint8

const (
	documentItem itemKind = 1 + iota

	// Block containers.
	blockQuoteItem
	listItem_
	listItemItem

	// Block leaves.
	paragraphItem
	atxHeadingItem
	setextHeadingItem
	thematicBreakItem
	fencedCodeBlockItem
	indentedCodeBlockItem
	htmlBlockItem
	linkReferenceDefinitionItem
	blankLineItem
	listMarkerItem

	// Inline, pre-resolution.
	textItem
	softBreakItem
	hardBreakItem
	maybeEmphasisItem
	maybeCodeItem
	maybeHTMLItem
	maybeLinkOpenItem
	maybeLinkCloseItem
	maybeImageOpenItem
	backslashItem

	// Inline, post-resolution.
	emphasisItem
	strongItem
	codeSpanItem
	inlineHTMLItem
	linkItem
	imageItem
	rawHTMLLineItem
	synthesizeTextItem
	synthesizeNewLineItem

	// Auxiliary leaves (code fence info strings, list markers' trailing text).
	infoStringItem
	indentItem
	linkLabelItem
	linkDestinationItem
	linkTitleItem
)

// isCode reports whether the kind is a code block or code span.
func (k itemKind) isCode() bool {
	return k == indentedCodeBlockItem || k == fencedCodeBlockItem || k == codeSpanItem
}

// isHeading reports whether the kind is an ATX or setext heading.
func (k itemKind) isHeading() bool {
	return k == atxHeadingItem || k == setextHeadingItem
}

// isBlockContainer reports whether the kind can have block children.
func (k itemKind) isBlockContainer() bool {
	switch k {
	case documentItem, blockQuoteItem, listItem_, listItemItem:
		return true
	default:
		return false
	}
}
