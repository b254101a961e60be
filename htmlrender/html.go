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

// Package htmlrender converts the event stream produced by a
// [commonmark.Parser] into HTML.
package htmlrender

import (
	"io"
	"strconv"
	"strings"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"

	"eventmark.dev/go/commonmark"
)

// htmlEscaper replaces the five characters HTML text content and
// quoted attribute values must not contain literally.
var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"'", "&#39;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// SoftBreakBehavior is an enumeration of rendering styles for soft
// line breaks.
type SoftBreakBehavior int

const (
	// SoftBreakPreserve renders a soft line break as-is.
	SoftBreakPreserve SoftBreakBehavior = iota
	// SoftBreakSpace renders a soft line break as a single space.
	SoftBreakSpace
	// SoftBreakHarden renders a soft line break as a hard line break.
	SoftBreakHarden
)

// A Renderer converts events pulled from a [commonmark.Parser] into
// HTML.
//
// # Security considerations
//
// CommonMark permits raw HTML, which can introduce Cross-Site
// Scripting vulnerabilities when used with untrusted input. Set
// IgnoreRaw to drop all raw HTML, or use FilterTag to escape specific
// tag names while still showing the source text; for untrusted input,
// combine either with an HTML sanitizer downstream.
type Renderer struct {
	// SoftBreakBehavior determines how soft line breaks are rendered.
	SoftBreakBehavior SoftBreakBehavior
	// If IgnoreRaw is true, inline and block raw HTML is dropped.
	IgnoreRaw bool
	// FilterTag, if non-nil, reports whether an element with the
	// given lowercased tag name should have its leading angle bracket
	// escaped instead of being emitted as a tag.
	FilterTag func(tag []byte) bool
}

// Render drains p, writing the rendered HTML to w. It returns the
// first write error encountered, if any.
func Render(w io.Writer, p *commonmark.Parser) error {
	return new(Renderer).Render(w, p)
}

// Render drains p, writing the rendered HTML to w using r's options.
func (r *Renderer) Render(w io.Writer, p *commonmark.Parser) error {
	dst := r.AppendAll(nil, p)
	_, err := w.Write(dst)
	return err
}

// AppendAll drains p and appends the rendered HTML to dst, returning
// the extended slice.
func (r *Renderer) AppendAll(dst []byte, p *commonmark.Parser) []byte {
	s := &renderState{Renderer: r, dst: dst, imageDepth: -1}
	for {
		ev, ok := p.Next()
		if !ok {
			break
		}
		s.event(ev)
	}
	return s.dst
}

type renderState struct {
	*Renderer
	dst []byte

	// listTags tracks the element name (Ol or Ul) of each open list,
	// since ListTag's EndTag carries the same Tag value as its
	// StartTag and doesn't repeat which element name was chosen.
	listTags []atom.Atom

	// depth is the current container nesting depth, incremented on
	// every StartTag and decremented on every matching EndTag.
	depth int

	// imageDepth is the depth at which an ImageTag's children began,
	// or -1 if not currently inside an image description. CommonMark
	// renders an image's descendant content as a flattened alt
	// attribute rather than as nested markup.
	imageDepth int
	altBuf     []byte
	imgDest    string
	imgTitle   string
	imgHasTit  bool
}

func (s *renderState) inImage() bool { return s.imageDepth >= 0 }

func (s *renderState) event(ev commonmark.Event) {
	switch ev.Kind {
	case commonmark.StartTag:
		s.depth++
		if s.inImage() {
			return
		}
		if ev.Tag.Kind == commonmark.ImageTag {
			s.imageDepth = s.depth
			s.imgDest = ev.Tag.Destination
			s.imgTitle = ev.Tag.Title
			s.imgHasTit = ev.Tag.TitleSet
			s.altBuf = s.altBuf[:0]
			return
		}
		s.startTag(ev.Tag)
	case commonmark.EndTag:
		if s.inImage() {
			s.depth--
			if s.depth < s.imageDepth {
				s.finishImage()
			}
			return
		}
		s.depth--
		s.endTag(ev.Tag)
	case commonmark.TextEvent:
		if s.inImage() {
			s.altBuf = append(s.altBuf, ev.Text...)
			return
		}
		s.dst = append(s.dst, htmlEscaper.Replace([]byte(ev.Text))...)
	case commonmark.CodeSpanEvent:
		if s.inImage() {
			s.altBuf = append(s.altBuf, ev.Text...)
			return
		}
		s.openTag(atom.Code)
		s.dst = append(s.dst, htmlEscaper.Replace([]byte(ev.Text))...)
		s.closeTag(atom.Code)
	case commonmark.InlineHTMLEvent:
		if s.inImage() {
			return
		}
		if !s.IgnoreRaw {
			s.appendRaw(ev.Text)
		}
	case commonmark.HTMLBlockEvent:
		if !s.IgnoreRaw {
			s.appendRaw(ev.Text)
		}
	case commonmark.SoftBreakEvent:
		if s.inImage() {
			s.altBuf = append(s.altBuf, ' ')
			return
		}
		switch s.SoftBreakBehavior {
		case SoftBreakHarden:
			s.dst = append(s.dst, "<br>\n"...)
		case SoftBreakSpace:
			s.dst = append(s.dst, ' ')
		default:
			s.dst = append(s.dst, '\n')
		}
	case commonmark.HardBreakEvent:
		if s.inImage() {
			s.altBuf = append(s.altBuf, ' ')
			return
		}
		s.dst = append(s.dst, "<br>\n"...)
	case commonmark.ThematicBreakEvent:
		s.openTag(atom.Hr)
	case commonmark.CodeBlockEvent:
		s.openTag(atom.Pre)
		s.openTagAttr(atom.Code)
		if words := strings.Fields(ev.Tag.Info); len(words) > 0 {
			s.dst = append(s.dst, ` class="language-`...)
			s.dst = append(s.dst, htmlEscaper.Replace([]byte(words[0]))...)
			s.dst = append(s.dst, '"')
		}
		s.dst = append(s.dst, '>')
		s.dst = append(s.dst, htmlEscaper.Replace([]byte(ev.Text))...)
		s.closeTag(atom.Code)
		s.closeTag(atom.Pre)
	}
}

func (s *renderState) startTag(tag commonmark.Tag) {
	switch tag.Kind {
	case commonmark.ParagraphTag:
		s.openTag(atom.P)
	case commonmark.HeadingTag:
		s.openTag(headingAtom(tag.Level))
	case commonmark.BlockQuoteTag:
		s.openTag(atom.Blockquote)
	case commonmark.ListTag:
		name := atom.Ul
		if tag.Ordered {
			name = atom.Ol
			s.openTagAttr(name)
			if tag.Start != 1 {
				s.dst = append(s.dst, ` start="`...)
				s.dst = strconv.AppendInt(s.dst, int64(tag.Start), 10)
				s.dst = append(s.dst, '"')
			}
			s.dst = append(s.dst, '>')
		} else {
			s.openTag(name)
		}
		s.listTags = append(s.listTags, name)
	case commonmark.ItemTag:
		s.openTag(atom.Li)
	case commonmark.EmphasisTag:
		s.openTag(atom.Em)
	case commonmark.StrongTag:
		s.openTag(atom.Strong)
	case commonmark.LinkTag:
		s.openTagAttr(atom.A)
		s.dst = append(s.dst, ` href="`...)
		s.dst = append(s.dst, htmlEscaper.Replace([]byte(NormalizeURI(tag.Destination)))...)
		s.dst = append(s.dst, '"')
		if tag.TitleSet {
			s.dst = append(s.dst, ` title="`...)
			s.dst = append(s.dst, htmlEscaper.Replace([]byte(tag.Title))...)
			s.dst = append(s.dst, '"')
		}
		s.dst = append(s.dst, '>')
	}
}

func (s *renderState) endTag(tag commonmark.Tag) {
	switch tag.Kind {
	case commonmark.ParagraphTag:
		s.closeTag(atom.P)
	case commonmark.HeadingTag:
		s.closeTag(headingAtom(tag.Level))
	case commonmark.BlockQuoteTag:
		s.closeTag(atom.Blockquote)
	case commonmark.ListTag:
		n := len(s.listTags) - 1
		name := s.listTags[n]
		s.listTags = s.listTags[:n]
		s.closeTag(name)
	case commonmark.ItemTag:
		s.closeTag(atom.Li)
	case commonmark.EmphasisTag:
		s.closeTag(atom.Em)
	case commonmark.StrongTag:
		s.closeTag(atom.Strong)
	case commonmark.LinkTag:
		s.closeTag(atom.A)
	}
}

// finishImage emits the accumulated <img> element once the walk has
// returned to the depth the image's StartTag was seen at.
func (s *renderState) finishImage() {
	s.openTagAttr(atom.Img)
	s.dst = append(s.dst, ` src="`...)
	s.dst = append(s.dst, htmlEscaper.Replace([]byte(NormalizeURI(s.imgDest)))...)
	s.dst = append(s.dst, '"')
	if s.imgHasTit {
		s.dst = append(s.dst, ` title="`...)
		s.dst = append(s.dst, htmlEscaper.Replace([]byte(s.imgTitle))...)
		s.dst = append(s.dst, '"')
	}
	s.dst = append(s.dst, ` alt="`...)
	s.dst = append(s.dst, htmlEscaper.Replace(s.altBuf)...)
	s.dst = append(s.dst, `">`...)
	s.imageDepth = -1
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	default:
		return atom.H6
	}
}

func (s *renderState) openTagAttr(name atom.Atom) {
	start := len(s.dst)
	s.dst = append(s.dst, '<')
	s.dst = append(s.dst, name.String()...)
	if s.FilterTag != nil && s.FilterTag(s.dst[start+1:]) {
		s.dst = s.dst[:start]
		s.dst = append(s.dst, "&lt;"...)
		s.dst = append(s.dst, name.String()...)
	}
}

func (s *renderState) openTag(name atom.Atom) {
	s.openTagAttr(name)
	s.dst = append(s.dst, '>')
}

func (s *renderState) closeTag(name atom.Atom) {
	start := len(s.dst)
	s.dst = append(s.dst, "</"...)
	s.dst = append(s.dst, name.String()...)
	if s.FilterTag != nil && s.FilterTag(s.dst[start+2:]) {
		s.dst = s.dst[:start]
		s.dst = append(s.dst, "&lt;/"...)
		s.dst = append(s.dst, name.String()...)
	}
	s.dst = append(s.dst, '>')
}

// appendRaw appends raw HTML, applying FilterTag to every tag in it
// the same way the teacher's filterRaw did: a tag whose name FilterTag
// reports has its leading '<' escaped.
func (s *renderState) appendRaw(raw string) {
	if s.FilterTag == nil {
		s.dst = append(s.dst, raw...)
		return
	}
	for i := strings.IndexByte(raw, '<'); i >= 0; i = strings.IndexByte(raw, '<') {
		s.dst = append(s.dst, raw[:i]...)
		raw = raw[i:]
		nameStart := 1
		if nameStart < len(raw) && raw[nameStart] == '/' {
			nameStart++
		}
		nameEnd := nameStart
		for nameEnd < len(raw) && isTagNameByte(raw[nameEnd]) {
			nameEnd++
		}
		name := strings.ToLower(raw[nameStart:nameEnd])
		if s.FilterTag([]byte(name)) {
			s.dst = append(s.dst, "&lt;"...)
		} else {
			s.dst = append(s.dst, '<')
		}
		raw = raw[1:]
	}
	s.dst = append(s.dst, raw...)
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}

// FilterTagGFM performs the same tag filtering as the GitHub Flavored
// Markdown tagfilter extension. It is suitable for use as the
// FilterTag field of a Renderer.
func FilterTagGFM(tag []byte) bool {
	tagAtom := atom.Lookup(tag)
	return tagAtom == atom.Title ||
		tagAtom == atom.Textarea ||
		tagAtom == atom.Style ||
		tagAtom == atom.Xmp ||
		tagAtom == atom.Iframe ||
		tagAtom == atom.Noembed ||
		tagAtom == atom.Noframes ||
		tagAtom == atom.Script ||
		tagAtom == atom.Plaintext
}
