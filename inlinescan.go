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

// appendLineTokens scans the n bytes starting at p's current position
// (a single already-indent-stripped line, including its terminator)
// and appends the resulting pre-resolution inline items — Text runs,
// delimiter runs, backtick runs, angle/square brackets, and a single
// trailing break item — as children of the current tip. This is the
// line scanner described in spec.md §4.2: it marks candidates for the
// inline resolver without resolving them.
func (p *lineParser) appendLineTokens(n int) {
	t := p.fp.b.tree
	tip := p.fp.tip()
	segStart := p.lineStart + p.i
	segEnd := segStart + n
	line := p.source[segStart:segEnd]

	contentEnd, breakKind, breakStart := classifyLineEnding(line)

	textStart := 0
	flushText := func(end int) {
		if end > textStart {
			t.AppendChild(tip, item{kind: textItem, span: Span{Start: segStart + textStart, End: segStart + end}})
		}
		textStart = end
	}

	i := 0
	for i < contentEnd {
		c := line[i]
		switch {
		case c == '*' || c == '_':
			flushText(i)
			j := i
			for j < contentEnd && line[j] == c {
				j++
			}
			runLen := j - i
			before := byte(' ')
			if i > 0 {
				before = line[i-1]
			}
			after := byte(' ')
			if j < len(line) {
				after = line[j]
			}
			canOpen := j < len(line) && !isASCIISpace(after)
			canClose := i > 0 && !isASCIISpace(before)
			it := item{
				kind: maybeEmphasisItem,
				span: Span{Start: segStart + i, End: segStart + j},
				n:    runLen,
				char: c,
			}
			it.setBool(flagCanOpen, canOpen)
			it.setBool(flagCanClose, canClose)
			it.set(flagActive)
			t.AppendChild(tip, it)
			i = j
			textStart = i
		case c == '`':
			flushText(i)
			j := i
			for j < contentEnd && line[j] == '`' {
				j++
			}
			t.AppendChild(tip, item{kind: maybeCodeItem, span: Span{Start: segStart + i, End: segStart + j}, n: j - i})
			i = j
			textStart = i
		case c == '<':
			flushText(i)
			t.AppendChild(tip, item{kind: maybeHTMLItem, span: Span{Start: segStart + i, End: segStart + i + 1}})
			i++
			textStart = i
		case c == '[':
			openStart := i
			kind := maybeLinkOpenItem
			if i > 0 && line[i-1] == '!' {
				openStart = i - 1
				kind = maybeImageOpenItem
			}
			flushText(openStart)
			t.AppendChild(tip, item{kind: kind, span: Span{Start: segStart + openStart, End: segStart + i + 1}})
			i++
			textStart = i
		case c == ']':
			flushText(i)
			t.AppendChild(tip, item{kind: maybeLinkCloseItem, span: Span{Start: segStart + i, End: segStart + i + 1}})
			i++
			textStart = i
		case c == '\\' && i+1 < contentEnd && isASCIIPunct(line[i+1]):
			flushText(i)
			t.AppendChild(tip, item{kind: backslashItem, span: Span{Start: segStart + i, End: segStart + i + 1}})
			i++
			textStart = i
			// Advance past the escaped byte without dispatching it
			// through the switch again: an escaped delimiter,
			// bracket, or backtick is never itself a marker.
			i++
		default:
			i++
		}
	}
	flushText(contentEnd)

	switch breakKind {
	case hardBreakItem:
		t.AppendChild(tip, item{kind: hardBreakItem, span: Span{Start: segStart + breakStart, End: segEnd}})
	case softBreakItem:
		t.AppendChild(tip, item{kind: softBreakItem, span: Span{Start: segStart + breakStart, End: segEnd}})
	}
	p.Advance(n)
}

// classifyLineEnding inspects line (which includes its terminator, if
// any) and reports:
//   - contentEnd: the index before which ordinary content runs;
//     trailing hardbreak-inducing spaces are excluded from it.
//   - breakKind: softBreakItem, hardBreakItem, or 0 if line is the
//     final line of input with no terminator.
//   - breakStart: the index the break item's span should start at.
func classifyLineEnding(line []byte) (contentEnd int, breakKind itemKind, breakStart int) {
	end := len(line)
	termLen := 0
	if end >= 2 && line[end-2] == '\r' && line[end-1] == '\n' {
		termLen = 2
	} else if end >= 1 && (line[end-1] == '\n' || line[end-1] == '\r') {
		termLen = 1
	}
	if termLen == 0 {
		return end, 0, end
	}
	body := line[:end-termLen]

	// Backslash-newline hardbreak.
	if len(body) >= 1 && body[len(body)-1] == '\\' {
		n := 0
		for n < len(body) && body[len(body)-1-n] == '\\' {
			n++
		}
		if n%2 == 1 {
			return len(body) - 1, hardBreakItem, len(body) - 1
		}
	}

	// Two-or-more trailing spaces hardbreak.
	sp := 0
	for sp < len(body) && (body[len(body)-1-sp] == ' ' || body[len(body)-1-sp] == '\t') {
		sp++
	}
	if sp >= 2 {
		return len(body) - sp, hardBreakItem, len(body) - sp
	}
	return len(body), softBreakItem, len(body)
}

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

func isASCIIPunct(c byte) bool {
	switch {
	case c >= '!' && c <= '/':
		return true
	case c >= ':' && c <= '@':
		return true
	case c >= '[' && c <= '`':
		return true
	case c >= '{' && c <= '~':
		return true
	default:
		return false
	}
}
