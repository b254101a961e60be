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
	"strings"

	"eventmark.dev/go/commonmark/internal/tree"
)

// resolveInlines runs the lazy second pass (spec.md §4.3) over a single
// leaf or container's run of inline children, rooted at container. It
// is invoked on demand by the event iterator the first time it walks
// into an unresolved child, and its result (the resolved sibling
// chain) is cached in place: every node it touches is rewritten, never
// copied, so a second visit sees already-resolved nodes and does
// nothing.
func (b *RootBlock) resolveInlines(container nodeIndex) {
	if b.resolved[container] {
		return
	}
	b.resolved[container] = true
	t := b.tree
	first := t.Child(container)
	if first == nilNode {
		return
	}
	resolveCodeHTMLAndLinks(b, first)
	resolveEmphasis(b, container)
}

// --- Pass 1: code spans, inline HTML, and inline links. ---

// linkStackEntry tracks an unmatched MaybeLinkOpenItem or
// MaybeImageOpenItem seen so far, per spec.md §4.3.1.
type linkStackEntry struct {
	node   nodeIndex
	isImg  bool
	active bool
}

func resolveCodeHTMLAndLinks(b *RootBlock, first nodeIndex) {
	t := b.tree
	var linkStack []linkStackEntry

	for n := first; n != nilNode; {
		it := t.Item(n)
		switch it.kind {
		case maybeCodeItem:
			if end, ok := matchCodeSpan(t, n); ok {
				makeCodeSpan(b, n, end)
				n = t.Next(n)
				continue
			}
		case maybeHTMLItem:
			if endAbs, after, ok := matchInlineHTML(b, t, n); ok {
				it2 := t.Item(n)
				it2.kind = inlineHTMLItem
				it2.span.End = endAbs
				t.SetItem(n, it2)
				t.SetNext(n, after)
				n = after
				continue
			}
		case maybeLinkOpenItem:
			linkStack = append(linkStack, linkStackEntry{node: n, active: true})
		case maybeImageOpenItem:
			linkStack = append(linkStack, linkStackEntry{node: n, isImg: true, active: true})
		case maybeLinkCloseItem:
			if idx, ok := lastActiveLink(linkStack); ok {
				if closeNode, afterClose, endAbs, dest, title, hasTitle, ok := matchInlineLink(b, t, linkStack[idx].node, n); ok {
					spliceLink(b, linkStack[idx].node, closeNode, afterClose, endAbs, dest, title, hasTitle, linkStack[idx].isImg)
					if !linkStack[idx].isImg {
						for i := range linkStack[:idx] {
							linkStack[i].active = false
						}
					}
					linkStack = linkStack[:idx]
					n = afterClose
					continue
				}
			}
			// No matching open bracket (or match failed): the ']'
			// becomes ordinary text, per spec.md §4.3.1.
			it2 := t.Item(n)
			it2.kind = textItem
			t.SetItem(n, it2)
		}
		n = t.Next(n)
	}
}

func lastActiveLink(stack []linkStackEntry) (int, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].active {
			return i, true
		}
	}
	return 0, false
}

// matchCodeSpan looks forward from a MaybeCodeItem opener for a
// MaybeCodeItem closer with the same backtick run length, per
// CommonMark's code span rule: the first matching run closes it,
// regardless of anything in between.
func matchCodeSpan(t *tree.Tree[item], open nodeIndex) (end nodeIndex, ok bool) {
	openRun := t.Item(open).n
	for n := t.Next(open); n != nilNode; n = t.Next(n) {
		it := t.Item(n)
		if it.kind == maybeCodeItem && it.n == openRun {
			return n, true
		}
	}
	return nilNode, false
}

// makeCodeSpan rewrites the chain from open through close (inclusive)
// into a single CodeSpanItem, applying spec.md §4.3.3's whitespace
// transform: strip a single leading and trailing space if the content
// is not all-whitespace and both ends have one, and replace internal
// line endings with a single space.
func makeCodeSpan(b *RootBlock, open, close nodeIndex) {
	t := b.tree
	var sb strings.Builder
	for n := t.Next(open); n != close; n = t.Next(n) {
		it := t.Item(n)
		switch it.kind {
		case softBreakItem, hardBreakItem:
			sb.WriteByte(' ')
		default:
			sb.Write(spanSlice(b.Source, it.span))
		}
	}
	content := sb.String()
	if strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "" {
		content = content[1 : len(content)-1]
	}
	it := t.Item(open)
	it.kind = codeSpanItem
	it.span.End = t.Item(close).span.End
	it.text = content
	t.SetItem(open, it)
	t.SetNext(open, t.Next(close))
}

// splitNodeAt ensures node's span covers exactly up to and including
// its lastConsumedOffset-th byte (0-based, relative to node's own
// span), splitting off the remainder into a freshly allocated node
// spliced in as node's new next sibling when the match ends partway
// through a token — the common case for inline HTML and link
// destinations, since the line scanner only ever splits out
// punctuation runs, not arbitrary byte offsets. It returns the node
// that now immediately follows the consumed bytes (either the new
// remainder node, or node's original next if the whole node was
// consumed).
func splitNodeAt(t *tree.Tree[item], node nodeIndex, lastConsumedOffset int) (after nodeIndex) {
	it := t.Item(node)
	cut := it.span.Start + lastConsumedOffset + 1
	if cut >= it.span.End {
		return t.Next(node)
	}
	rem := it
	rem.span = Span{Start: cut, End: it.span.End}
	tailIdx := t.CreateNode(rem)
	t.SetNext(tailIdx, t.Next(node))
	it.span.End = cut
	t.SetItem(node, it)
	t.SetNext(node, tailIdx)
	return tailIdx
}

// flattenChain concatenates source bytes from start (inclusive) to the
// end of the sibling chain, returning the text
// plus parallel slices mapping each flattened byte back to the node it
// came from and that node's local start, so a match found in the
// flattened text can be translated back into a (node, offset) cut
// point. This is the inline scanner of spec.md §4.5, implemented as an
// eager flatten-then-search rather than a streaming cursor: simpler to
// reason about, at the cost of being O(n) per marker instead of O(1)
// amortized, which only matters for the pathological inputs spec.md
// §9 already calls out as accepted worst-case behavior.
func flattenChain(b *RootBlock, start nodeIndex) (text string, nodes []nodeIndex, offsets []int) {
	t := b.tree
	var sb strings.Builder
	for n := start; n != nilNode; n = t.Next(n) {
		it := t.Item(n)
		nodes = append(nodes, n)
		offsets = append(offsets, sb.Len())
		switch it.kind {
		case softBreakItem:
			sb.WriteByte('\n')
		case hardBreakItem:
			sb.WriteString("\n")
		default:
			sb.Write(spanSlice(b.Source, it.span))
		}
	}
	return sb.String(), nodes, offsets
}

// locateFlatOffset finds, for a byte offset into a string produced by
// flattenChain, the node it falls within and the local byte offset
// inside that node's own span.
func locateFlatOffset(nodes []nodeIndex, offsets []int, flatOffset int) (n nodeIndex, localOffset int) {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= flatOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return nodes[lo], flatOffset - offsets[lo]
}

// matchInlineHTML attempts to recognize a complete HTML tag, comment,
// processing instruction, declaration, or CDATA section starting at
// the '<' held by open, per CommonMark's inline HTML grammar. On
// success it returns the absolute source offset the match ends at and
// the node that should be visited next (splitting a token in two if
// the match ends partway through one).
func matchInlineHTML(b *RootBlock, t *tree.Tree[item], open nodeIndex) (endAbs int, after nodeIndex, ok bool) {
	text, nodes, offsets := flattenChain(b, open)
	n := scanInlineHTMLTag(text)
	if n < 0 {
		return 0, nilNode, false
	}
	endNode, localOffset := locateFlatOffset(nodes, offsets, n-1)
	after = splitNodeAt(t, endNode, localOffset)
	return t.Item(endNode).span.End, after, true
}

// scanInlineHTMLTag reports the length of a complete inline HTML
// construct at the start of s, or -1 if there isn't one.
func scanInlineHTMLTag(s string) int {
	if len(s) < 3 || s[0] != '<' {
		return -1
	}
	switch {
	case strings.HasPrefix(s, "<!--"):
		if i := strings.Index(s[4:], "-->"); i >= 0 {
			return 4 + i + 3
		}
		return -1
	case strings.HasPrefix(s, "<?"):
		if i := strings.Index(s[2:], "?>"); i >= 0 {
			return 2 + i + 2
		}
		return -1
	case strings.HasPrefix(s, "<![CDATA["):
		if i := strings.Index(s[9:], "]]>"); i >= 0 {
			return 9 + i + 3
		}
		return -1
	case len(s) > 2 && s[1] == '!' && isASCIILetterByte(s[2]):
		if i := strings.IndexByte(s, '>'); i >= 0 {
			return i + 1
		}
		return -1
	case len(s) > 1 && s[1] == '/':
		return scanClosingTag(s)
	default:
		return scanOpenTag(s)
	}
}

func isASCIILetterByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func scanClosingTag(s string) int {
	i := 2
	if i >= len(s) || !isASCIILetterByte(s[i]) {
		return -1
	}
	for i < len(s) && (isASCIILetterByte(s[i]) || isASCIIDigitByte(s[i]) || s[i] == '-') {
		i++
	}
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	if i < len(s) && s[i] == '>' {
		return i + 1
	}
	return -1
}

func scanOpenTag(s string) int {
	i := 1
	if i >= len(s) || !isASCIILetterByte(s[i]) {
		return -1
	}
	for i < len(s) && (isASCIILetterByte(s[i]) || isASCIIDigitByte(s[i]) || s[i] == '-') {
		i++
	}
	for {
		wsStart := i
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
			i++
		}
		hadSpace := i > wsStart
		if i < len(s) && s[i] == '/' && i+1 < len(s) && s[i+1] == '>' {
			return i + 2
		}
		if i < len(s) && s[i] == '>' {
			return i + 1
		}
		if !hadSpace || i >= len(s) || !isAttrNameStart(s[i]) {
			return -1
		}
		j := i
		for j < len(s) && isAttrNameChar(s[j]) {
			j++
		}
		i = j
		k := i
		for k < len(s) && (s[k] == ' ' || s[k] == '\t' || s[k] == '\n') {
			k++
		}
		if k < len(s) && s[k] == '=' {
			k++
			for k < len(s) && (s[k] == ' ' || s[k] == '\t' || s[k] == '\n') {
				k++
			}
			if k >= len(s) {
				return -1
			}
			switch s[k] {
			case '"':
				if end := strings.IndexByte(s[k+1:], '"'); end >= 0 {
					k = k + 1 + end + 1
				} else {
					return -1
				}
			case '\'':
				if end := strings.IndexByte(s[k+1:], '\''); end >= 0 {
					k = k + 1 + end + 1
				} else {
					return -1
				}
			default:
				start := k
				for k < len(s) && !isASCIISpace(s[k]) && s[k] != '>' && s[k] != '<' && s[k] != '=' && s[k] != '\'' && s[k] != '"' {
					k++
				}
				if k == start {
					return -1
				}
			}
			i = k
		}
	}
}

func isAttrNameStart(c byte) bool {
	return isASCIILetterByte(c) || c == '_' || c == ':'
}

func isAttrNameChar(c byte) bool {
	return isAttrNameStart(c) || isASCIIDigitByte(c) || c == '.' || c == '-'
}

func isASCIIDigitByte(c byte) bool { return c >= '0' && c <= '9' }

// matchInlineLink attempts to resolve a [text](dest "title") construct
// starting at open and ending at close, scanning the bytes immediately
// following close for an inline destination/title. Full, collapsed and
// shortcut reference forms are left unresolved here: spec.md §5.1 scopes
// reference-link resolution out, so a bracket pair with no inline
// destination is left as plain text, to be handled by a downstream
// consumer of [RootBlock.LinkDefinitions].
func matchInlineLink(b *RootBlock, t *tree.Tree[item], open, close nodeIndex) (closeNode, afterClose nodeIndex, endAbs int, dest, title string, hasTitle bool, ok bool) {
	after := t.Next(close)
	if after == nilNode {
		return nilNode, nilNode, 0, "", "", false, false
	}
	it := t.Item(after)
	if it.kind != textItem || len(spanSlice(b.Source, it.span)) == 0 || spanSlice(b.Source, it.span)[0] != '(' {
		return nilNode, nilNode, 0, "", "", false, false
	}
	text, nodes, offsets := flattenChain(b, after)
	if len(text) == 0 || text[0] != '(' {
		return nilNode, nilNode, 0, "", "", false, false
	}
	rest := skipLinkSpace(text[1:])
	dest, rest2, destOK := scanLinkDestination(rest)
	if !destOK {
		return nilNode, nilNode, 0, "", "", false, false
	}
	rest2Trimmed := skipLinkSpace(rest2)
	if t2, r3, ok2 := scanLinkTitle(rest2Trimmed); ok2 {
		r3 = skipLinkSpace(r3)
		if len(r3) > 0 && r3[0] == ')' {
			title = t2
			hasTitle = true
			rest2 = r3
		}
	}
	rest2 = skipLinkSpace(rest2)
	if len(rest2) == 0 || rest2[0] != ')' {
		return nilNode, nilNode, 0, "", "", false, false
	}
	lastConsumed := len(text) - len(rest2)
	endNode, localOffset := locateFlatOffset(nodes, offsets, lastConsumed)
	endAbsOffset := t.Item(endNode).span.Start + localOffset + 1
	return close, splitNodeAt(t, endNode, localOffset), endAbsOffset, dest, title, hasTitle, true
}

// spliceLink rewrites the chain from open through the link's closing
// paren (inclusive, already collapsed to endNode by the caller) into a
// single LinkItem or ImageItem whose children are the formerly
// top-level nodes between open and close.
func spliceLink(b *RootBlock, open, close, afterClose nodeIndex, endAbs int, dest, title string, hasTitle bool, isImg bool) {
	t := b.tree
	firstChild := t.Next(open)
	if firstChild == close {
		firstChild = nilNode
	} else {
		// Find the node just before close to cut its next pointer.
		for n := firstChild; n != nilNode; n = t.Next(n) {
			if t.Next(n) == close {
				t.SetNext(n, nilNode)
				break
			}
		}
	}
	it := t.Item(open)
	if isImg {
		it.kind = imageItem
	} else {
		it.kind = linkItem
	}
	it.text = dest
	if hasTitle {
		it.text2 = title
	}
	it.span.End = endAbs
	t.SetChild(open, firstChild)
	t.SetNext(open, afterClose)
	t.SetItem(open, it)
}

// --- Pass 2: emphasis and strong emphasis. ---

// resolveEmphasis implements CommonMark's delimiter-stack algorithm
// (rules 9 and 10 of the emphasis spec) over container's already
// code/HTML/link-resolved children. Matched delimiter runs are spliced
// into EmphasisItem/StrongItem nodes whose children are the content
// between the opener and closer; partially consumed runs shrink in
// place and stay in the sibling chain as smaller delimiter runs,
// available to match again.
func resolveEmphasis(b *RootBlock, container nodeIndex) {
	t := b.tree
	first := t.Child(container)

	var delims []nodeIndex
	for n := first; n != nilNode; n = t.Next(n) {
		if t.Item(n).kind == maybeEmphasisItem {
			delims = append(delims, n)
		}
	}

	// prevInChain finds n's current predecessor in container's child
	// chain, or NIL if n is the head. It is only called when a match is
	// about to be spliced in, so its linear cost is paid once per
	// successful match rather than once per delimiter.
	prevInChain := func(n nodeIndex) nodeIndex {
		if n == t.Child(container) {
			return nilNode
		}
		for p := t.Child(container); p != nilNode; p = t.Next(p) {
			if t.Next(p) == n {
				return p
			}
		}
		return nilNode
	}

	for ci := 0; ci < len(delims); ci++ {
		closer := delims[ci]
		citem := t.Item(closer)
		if !citem.has(flagActive) || !citem.has(flagCanClose) || citem.n == 0 {
			continue
		}

		// The closer keeps pairing with openers to its left for as
		// long as it has remainder left (spec.md §4.3.2): a closer
		// run consumed only partway through (e.g. the first "**" of
		// "***foo***" pairing with its matching opener's "**") loops
		// back and searches again with what's left, rather than
		// moving on to the next closer after a single match.
		oi := ci - 1
		for oi >= 0 {
			citem := t.Item(closer)
			if !citem.has(flagActive) || citem.n == 0 {
				break
			}
			opener := delims[oi]
			oitem := t.Item(opener)
			if !oitem.has(flagActive) || !oitem.has(flagCanOpen) || oitem.n == 0 || oitem.char != citem.char {
				oi--
				continue
			}
			if delimitersIncompatible(oitem, citem) {
				oi--
				continue
			}

			use := 1
			if oitem.n >= 2 && citem.n >= 2 {
				use = 2
			}
			emKind := emphasisItem
			if use == 2 {
				emKind = strongItem
			}

			prev := prevInChain(opener)
			openerNext := t.Next(opener)
			closerNext := t.Next(closer)

			var emChildren nodeIndex
			if openerNext == closer {
				emChildren = nilNode
			} else {
				emChildren = openerNext
				for p := openerNext; p != nilNode; p = t.Next(p) {
					if t.Next(p) == closer {
						t.SetNext(p, nilNode)
						break
					}
				}
			}

			em := t.CreateNode(item{
				kind: emKind,
				span: Span{Start: oitem.span.End - use, End: citem.span.Start + use},
			})
			t.SetChild(em, emChildren)

			oitem.n -= use
			citem.n -= use

			if citem.n > 0 {
				citem.span.Start += use
				t.SetItem(closer, citem)
				t.SetNext(em, closer)
			} else {
				citem.clear(flagActive)
				t.SetItem(closer, citem)
				t.SetNext(em, closerNext)
			}

			if oitem.n > 0 {
				oitem.span.End -= use
				t.SetItem(opener, oitem)
				t.SetNext(opener, em)
			} else {
				oitem.clear(flagActive)
				t.SetItem(opener, oitem)
				if prev != nilNode {
					t.SetNext(prev, em)
				} else {
					t.SetChild(container, em)
				}
				oi--
			}
		}
	}
}

// delimitersIncompatible implements the "rule of three": if either
// delimiter can both open and close, the pairing is forbidden when the
// sum of the two run lengths is a multiple of 3 but neither length
// individually is.
func delimitersIncompatible(opener, closer item) bool {
	if !(opener.has(flagCanOpen) && opener.has(flagCanClose)) && !(closer.has(flagCanOpen) && closer.has(flagCanClose)) {
		return false
	}
	sum := opener.n + closer.n
	return sum%3 == 0 && opener.n%3 != 0 && closer.n%3 != 0
}
