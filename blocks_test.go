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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParserThematicBreak(t *testing.T) {
	b := Parse([]byte("---\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: ThematicBreakEvent},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserThematicBreakAfterParagraph(t *testing.T) {
	b := Parse([]byte("para\n\n***\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "para"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: ThematicBreakEvent},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserIndentedCodeBlock(t *testing.T) {
	b := Parse([]byte("    foo\n    bar\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: CodeBlockEvent, Text: "foo\nbar\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserSetextHeading(t *testing.T) {
	b := Parse([]byte("Title\n=====\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: HeadingTag, Level: 1}},
		{Kind: TextEvent, Text: "Title"},
		{Kind: EndTag, Tag: Tag{Kind: HeadingTag, Level: 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserNestedBlockQuote(t *testing.T) {
	b := Parse([]byte("> > inner\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: BlockQuoteTag}},
		{Kind: StartTag, Tag: Tag{Kind: BlockQuoteTag}},
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "inner"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: EndTag, Tag: Tag{Kind: BlockQuoteTag}},
		{Kind: EndTag, Tag: Tag{Kind: BlockQuoteTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserHTMLBlockComment(t *testing.T) {
	// Condition 2 (HTML comment) closes on the same line that contains
	// "-->", so the whole thing is a single-line block.
	b := Parse([]byte("<!-- c -->\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: HTMLBlockEvent, Text: "<!-- c -->\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserHTMLBlockKnownTag(t *testing.T) {
	// Condition 6 (a known block-level tag) has no same-line end
	// condition: it runs until a blank line, and its own opening line
	// is part of its content.
	b := Parse([]byte("<div>\nfoo\n\nbar\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: HTMLBlockEvent, Text: "<div>\nfoo\n"},
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "bar"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserFencedCodeBlockNoInfo(t *testing.T) {
	b := Parse([]byte("```\nplain\n```\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: CodeBlockEvent, Text: "plain\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserUnclosedFencedCodeBlock(t *testing.T) {
	// A fence with no matching close runs to the end of its container.
	b := Parse([]byte("```go\nfmt.Println(1)\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: CodeBlockEvent, Text: "fmt.Println(1)\n", Tag: Tag{Info: "go"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserOrderedListNonOneDoesNotInterruptParagraph(t *testing.T) {
	// CommonMark: an ordered list whose start number isn't 1 can't
	// interrupt a paragraph, so this is one paragraph with a lazy
	// continuation line, not a paragraph followed by a list.
	b := Parse([]byte("para\n2. not a list\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "para"},
		{Kind: SoftBreakEvent},
		{Kind: TextEvent, Text: "2. not a list"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserBlockQuoteLazyContinuation(t *testing.T) {
	// A blockquote's paragraph can be lazily continued by a line that
	// omits the "> " marker, as long as the line isn't itself a new
	// block start.
	b := Parse([]byte("> a\nb\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: BlockQuoteTag}},
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "a"},
		{Kind: SoftBreakEvent},
		{Kind: TextEvent, Text: "b"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: EndTag, Tag: Tag{Kind: BlockQuoteTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}
