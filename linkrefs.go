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

import "strings"

// scanLinkReferenceDefinition attempts to parse a single [link
// reference definition] from the start of text: "[label]: dest"
// optionally followed by a title. It reports the label, the
// destination, and the unconsumed remainder of text.
//
// This only needs to gather definitions (see SPEC_FULL.md §5.1), so
// unlike a resolving implementation it does not need to track byte
// offsets into the original inline chain -- it works directly on the
// paragraph's text.
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
func scanLinkReferenceDefinition(text string) (label, dest, rest string, ok bool) {
	if len(text) == 0 || text[0] != '[' {
		return "", "", "", false
	}
	end := findLinkLabelEnd(text[1:])
	if end < 0 {
		return "", "", "", false
	}
	label = text[1 : 1+end]
	if strings.TrimSpace(label) == "" {
		return "", "", "", false
	}
	rest = text[1+end+1:]
	rest = strings.TrimPrefix(rest, ":")
	if rest == text[1+end+1:] {
		// No colon followed the label.
		return "", "", "", false
	}
	rest = skipLinkSpace(rest)
	dest, rest, ok = scanLinkDestination(rest)
	if !ok {
		return "", "", "", false
	}

	// Try to consume a title; if that fails, the destination alone is
	// still a valid definition as long as nothing else follows on its
	// line.
	beforeTitle := rest
	spaced := skipLinkSpace(rest)
	if title, afterTitle, ok := scanLinkTitle(spaced); ok {
		if lineEnd, ok := consumeToEOL(afterTitle); ok {
			_ = title
			return label, dest, lineEnd, true
		}
	}
	if lineEnd, ok := consumeToEOL(beforeTitle); ok {
		return label, dest, lineEnd, true
	}
	return "", "", "", false
}

// findLinkLabelEnd returns the index of the closing ']' for a label
// starting right after the opening '[', or -1 if there isn't one on
// (what amounts to) this logical construct. Nested unescaped '[' is
// disallowed per the spec; we stop at the first one.
func findLinkLabelEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			return -1
		case ']':
			return i
		}
	}
	return -1
}

func skipLinkSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return s[i:]
}

// scanLinkDestination scans either a pointy "<...>" destination or a
// plain, balanced-parenthesis destination.
func scanLinkDestination(s string) (dest, rest string, ok bool) {
	if len(s) == 0 {
		return "", s, false
	}
	if s[0] == '<' {
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case '\n', '<':
				return "", s, false
			case '>':
				return s[1:i], s[i+1:], true
			}
		}
		return "", s, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return s[:i], s[i:], true
			}
			depth--
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if depth != 0 {
				return "", s, false
			}
			return s[:i], s[i:], true
		case c < 0x20 || c == 0x7f:
			return "", s, false
		}
	}
	if depth != 0 {
		return "", s, false
	}
	return s, "", true
}

// scanLinkTitle scans a "...", '...', or (...) title.
func scanLinkTitle(s string) (title, rest string, ok bool) {
	if len(s) == 0 {
		return "", s, false
	}
	var closer byte
	switch s[0] {
	case '"':
		closer = '"'
	case '\'':
		closer = '\''
	case '(':
		closer = ')'
	default:
		return "", s, false
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case closer:
			return s[1:i], s[i+1:], true
		}
	}
	return "", s, false
}

// consumeToEOL skips trailing spaces/tabs and then a single line
// ending (or EOF), returning the remainder of the string starting at
// the following line. It reports false if there is other content
// before the line ending.
func consumeToEOL(s string) (rest string, ok bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i >= len(s) {
		return "", true
	}
	if s[i] == '\r' {
		i++
		if i < len(s) && s[i] == '\n' {
			i++
		}
		return s[i:], true
	}
	if s[i] == '\n' {
		return s[i+1:], true
	}
	return "", false
}
