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

package scanner

import (
	"bytes"

	"golang.org/x/net/html/atom"
)

// HTMLBlockCondition describes one of the seven numbered HTML block
// start/end conditions.
//
// https://spec.commonmark.org/0.30/#html-blocks
type HTMLBlockCondition struct {
	// StartCondition reports whether line (stripped of any leading
	// indentation) opens a block of this type.
	StartCondition func(line []byte) bool
	// EndCondition reports whether line closes a block of this type.
	// For conditions 6 and 7, this is always satisfied by a blank line
	// and is checked by the caller instead; EndCondition here only
	// covers the conditions with their own explicit closing construct
	// (1-5).
	EndCondition func(line []byte) bool
	// CanInterruptParagraph reports whether this condition is allowed
	// to interrupt an open paragraph.
	CanInterruptParagraph bool
}

var rawtextTags = [][]byte{
	[]byte("script"), []byte("pre"), []byte("style"), []byte("textarea"),
}

// HTMLBlockConditions is the ordered table of the seven HTML block
// start conditions. The first matching entry (lowest index) wins.
var HTMLBlockConditions = [...]HTMLBlockCondition{
	// 1: script/pre/style/textarea, closed by the matching end tag.
	{
		StartCondition: func(line []byte) bool {
			return startsWithAnyTag(line, rawtextTags, true)
		},
		EndCondition: func(line []byte) bool {
			return bytes.Contains(bytes.ToLower(line), []byte("</script>")) ||
				bytes.Contains(bytes.ToLower(line), []byte("</pre>")) ||
				bytes.Contains(bytes.ToLower(line), []byte("</style>")) ||
				bytes.Contains(bytes.ToLower(line), []byte("</textarea>"))
		},
		CanInterruptParagraph: true,
	},
	// 2: HTML comment, closed by "-->".
	{
		StartCondition: func(line []byte) bool {
			return bytes.HasPrefix(line, []byte("<!--"))
		},
		EndCondition: func(line []byte) bool {
			return bytes.Contains(line, []byte("-->"))
		},
		CanInterruptParagraph: true,
	},
	// 3: processing instruction, closed by "?>".
	{
		StartCondition: func(line []byte) bool {
			return bytes.HasPrefix(line, []byte("<?"))
		},
		EndCondition: func(line []byte) bool {
			return bytes.Contains(line, []byte("?>"))
		},
		CanInterruptParagraph: true,
	},
	// 4: declaration, closed by ">".
	{
		StartCondition: func(line []byte) bool {
			return bytes.HasPrefix(line, []byte("<!")) && len(line) > 2 && isASCIILetter(line[2])
		},
		EndCondition: func(line []byte) bool {
			return bytes.IndexByte(line, '>') >= 0
		},
		CanInterruptParagraph: true,
	},
	// 5: CDATA section, closed by "]]>".
	{
		StartCondition: func(line []byte) bool {
			return bytes.HasPrefix(line, []byte("<![CDATA["))
		},
		EndCondition: func(line []byte) bool {
			return bytes.Contains(line, []byte("]]>"))
		},
		CanInterruptParagraph: true,
	},
	// 6: a known block-level tag, open or close, closed by a blank line.
	{
		StartCondition: func(line []byte) bool {
			name, _, ok := scanHTMLBlockTagName(line)
			return ok && isHTMLBlockTagName(name)
		},
		EndCondition:           func(line []byte) bool { return false },
		CanInterruptParagraph:  true,
	},
	// 7: any other complete open or closing tag alone on a line,
	// closed by a blank line. May not interrupt a paragraph.
	{
		StartCondition: func(line []byte) bool {
			_, rest, ok := scanHTMLBlockTagName(line)
			if !ok {
				return false
			}
			return isCompleteHTMLBlockTagLine(rest)
		},
		EndCondition:           func(line []byte) bool { return false },
		CanInterruptParagraph:  false,
	},
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func startsWithAnyTag(line []byte, tags [][]byte, allowSelfClosingOrAttrs bool) bool {
	if len(line) < 2 || line[0] != '<' {
		return false
	}
	rest := line[1:]
	closing := false
	if len(rest) > 0 && rest[0] == '/' {
		closing = true
		rest = rest[1:]
	}
	for _, tag := range tags {
		if len(rest) < len(tag) {
			continue
		}
		if !bytes.EqualFold(rest[:len(tag)], tag) {
			continue
		}
		after := rest[len(tag):]
		if len(after) == 0 {
			return true
		}
		switch after[0] {
		case ' ', '\t', '\n', '\r':
			return true
		case '>':
			return true
		case '/':
			return closing == false && len(after) > 1 && after[1] == '>'
		}
	}
	return false
}

// scanHTMLBlockTagName scans a '<' or '</' followed by a tag name at
// the beginning of line. It returns the lowercase tag name, the bytes
// following the name, and whether a name was found.
func scanHTMLBlockTagName(line []byte) (name string, rest []byte, ok bool) {
	if len(line) < 2 || line[0] != '<' {
		return "", nil, false
	}
	i := 1
	if line[i] == '/' {
		i++
	}
	start := i
	for i < len(line) && (isASCIILetter(line[i]) || IsASCIIDigit(line[i]) || line[i] == '-') {
		i++
	}
	if i == start {
		return "", nil, false
	}
	return string(bytes.ToLower(line[start:i])), line[i:], true
}

// isHTMLBlockTagName reports whether name is one of the fixed set of
// tag names that can open a type-6 HTML block, per the CommonMark
// specification's enumerated list. Names in type6ExtraTags are matched
// by string first; the rest are looked up as atoms in type6BlockAtoms.
func isHTMLBlockTagName(name string) bool {
	if _, ok := type6ExtraTags[name]; ok {
		return true
	}
	a := atom.Lookup([]byte(name))
	if a == 0 {
		return false
	}
	_, ok := type6BlockAtoms[a]
	return ok
}

// type6BlockAtoms is the subset of HTML atoms that are block-level
// elements allowed to open a type-6 HTML block.
var type6BlockAtoms = map[atom.Atom]struct{}{
	atom.Address: {}, atom.Article: {}, atom.Aside: {}, atom.Base: {},
	atom.Basefont: {}, atom.Blockquote: {}, atom.Body: {}, atom.Caption: {},
	atom.Center: {}, atom.Col: {}, atom.Colgroup: {}, atom.Dd: {},
	atom.Details: {}, atom.Dialog: {}, atom.Dir: {}, atom.Div: {},
	atom.Dl: {}, atom.Dt: {}, atom.Fieldset: {}, atom.Figcaption: {},
	atom.Figure: {}, atom.Footer: {}, atom.Form: {}, atom.Frame: {},
	atom.Frameset: {}, atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {},
	atom.H5: {}, atom.H6: {}, atom.Head: {}, atom.Header: {}, atom.Hr: {},
	atom.Html: {}, atom.Iframe: {}, atom.Legend: {}, atom.Li: {},
	atom.Link: {}, atom.Main: {}, atom.Menu: {}, atom.Menuitem: {},
	atom.Nav: {}, atom.Noframes: {}, atom.Ol: {}, atom.Optgroup: {},
	atom.Option: {}, atom.P: {}, atom.Param: {}, atom.Section: {},
	atom.Summary: {}, atom.Table: {}, atom.Tbody: {}, atom.Td: {},
	atom.Tfoot: {}, atom.Th: {}, atom.Thead: {}, atom.Title: {},
	atom.Tr: {}, atom.Track: {}, atom.Ul: {},
}

// type6ExtraTags lists type-6 names that type6BlockAtoms does not
// carry; they are matched by string before any atom lookup.
var type6ExtraTags = map[string]struct{}{
	"source": {},
}

// isCompleteHTMLBlockTagLine reports whether rest (the bytes following
// a tag name) forms a complete open or closing tag and, after optional
// trailing whitespace, nothing else on the line — the condition
// required for a type-7 HTML block.
func isCompleteHTMLBlockTagLine(rest []byte) bool {
	i := 0
	for i < len(rest) {
		switch {
		case rest[i] == '>' :
			return IsBlankLine(rest[i+1:])
		case rest[i] == '/' && i+1 < len(rest) && rest[i+1] == '>':
			return IsBlankLine(rest[i+2:])
		case rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r':
			i++
		case isASCIILetter(rest[i]):
			// Attribute name.
			for i < len(rest) && (isASCIILetter(rest[i]) || IsASCIIDigit(rest[i]) || rest[i] == '-' || rest[i] == '_' || rest[i] == ':') {
				i++
			}
			for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
				i++
			}
			if i < len(rest) && rest[i] == '=' {
				i++
				for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
					i++
				}
				if i >= len(rest) {
					return false
				}
				switch rest[i] {
				case '"':
					end := bytes.IndexByte(rest[i+1:], '"')
					if end < 0 {
						return false
					}
					i += end + 2
				case '\'':
					end := bytes.IndexByte(rest[i+1:], '\'')
					if end < 0 {
						return false
					}
					i += end + 2
				default:
					for i < len(rest) && !IsSpaceTabOrLineEnding(rest[i]) && rest[i] != '>' {
						i++
					}
				}
			}
		default:
			return false
		}
	}
	return false
}
