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

// collectEvents drains a Parser into a flat slice, for easy
// comparison in table-driven tests.
func collectEvents(t *testing.T, p *Parser) []Event {
	t.Helper()
	var events []Event
	for {
		ev, ok := p.Next()
		if !ok {
			break
		}
		events = append(events, ev)
	}
	return events
}

func TestParserParagraph(t *testing.T) {
	b := Parse([]byte("hello *world*\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "hello "},
		{Kind: StartTag, Tag: Tag{Kind: EmphasisTag}},
		{Kind: TextEvent, Text: "world"},
		{Kind: EndTag, Tag: Tag{Kind: EmphasisTag}},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserStrongAndEmphasisNesting(t *testing.T) {
	b := Parse([]byte("a **b *c* d** e\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "a "},
		{Kind: StartTag, Tag: Tag{Kind: StrongTag}},
		{Kind: TextEvent, Text: "b "},
		{Kind: StartTag, Tag: Tag{Kind: EmphasisTag}},
		{Kind: TextEvent, Text: "c"},
		{Kind: EndTag, Tag: Tag{Kind: EmphasisTag}},
		{Kind: TextEvent, Text: " d"},
		{Kind: EndTag, Tag: Tag{Kind: StrongTag}},
		{Kind: TextEvent, Text: " e"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserCodeSpan(t *testing.T) {
	b := Parse([]byte("use `` `backtick` `` here\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "use "},
		{Kind: CodeSpanEvent, Text: "`backtick`"},
		{Kind: TextEvent, Text: " here"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserInlineLink(t *testing.T) {
	b := Parse([]byte("see [a link](/dest \"title\") now\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "see "},
		{Kind: StartTag, Tag: Tag{Kind: LinkTag, Destination: "/dest", Title: "title", TitleSet: true}},
		{Kind: TextEvent, Text: "a link"},
		{Kind: EndTag, Tag: Tag{Kind: LinkTag, Destination: "/dest", Title: "title", TitleSet: true}},
		{Kind: TextEvent, Text: " now"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserUnmatchedBracket(t *testing.T) {
	b := Parse([]byte("not [a link\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "not "},
		{Kind: TextEvent, Text: "["},
		{Kind: TextEvent, Text: "a link"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserTightList(t *testing.T) {
	b := Parse([]byte("- a\n- b\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ListTag, Tight: true, Start: 1}},
		{Kind: StartTag, Tag: Tag{Kind: ItemTag}},
		{Kind: TextEvent, Text: "a"},
		{Kind: EndTag, Tag: Tag{Kind: ItemTag}},
		{Kind: StartTag, Tag: Tag{Kind: ItemTag}},
		{Kind: TextEvent, Text: "b"},
		{Kind: EndTag, Tag: Tag{Kind: ItemTag}},
		{Kind: EndTag, Tag: Tag{Kind: ListTag, Tight: true, Start: 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserLooseList(t *testing.T) {
	b := Parse([]byte("- a\n\n- b\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ListTag, Tight: false, Start: 1}},
		{Kind: StartTag, Tag: Tag{Kind: ItemTag}},
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "a"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: EndTag, Tag: Tag{Kind: ItemTag}},
		{Kind: StartTag, Tag: Tag{Kind: ItemTag}},
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "b"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: EndTag, Tag: Tag{Kind: ItemTag}},
		{Kind: EndTag, Tag: Tag{Kind: ListTag, Tight: false, Start: 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserOrderedListStart(t *testing.T) {
	b := Parse([]byte("3. a\n4. b\n"))
	got := collectEvents(t, NewParser(b))
	if len(got) == 0 || got[0].Kind != StartTag || got[0].Tag.Kind != ListTag {
		t.Fatalf("first event = %+v; want a ListTag StartTag", got[0])
	}
	if !got[0].Tag.Ordered || got[0].Tag.Start != 3 {
		t.Errorf("list tag = %+v; want Ordered=true Start=3", got[0].Tag)
	}
}

func TestParserATXHeading(t *testing.T) {
	b := Parse([]byte("## heading\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: HeadingTag, Level: 2}},
		{Kind: TextEvent, Text: "heading"},
		{Kind: EndTag, Tag: Tag{Kind: HeadingTag, Level: 2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserFencedCodeBlock(t *testing.T) {
	b := Parse([]byte("```go\nfmt.Println(1)\n```\n"))
	got := collectEvents(t, NewParser(b))
	if len(got) != 1 {
		t.Fatalf("len(events) = %d; want 1", len(got))
	}
	want := Event{Kind: CodeBlockEvent, Text: "fmt.Println(1)\n", Tag: Tag{Info: "go"}}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("event (-want +got):\n%s", diff)
	}
}

func TestParserHardBreak(t *testing.T) {
	b := Parse([]byte("a  \nb\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "a"},
		{Kind: HardBreakEvent},
		{Kind: TextEvent, Text: "b"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserBlockQuote(t *testing.T) {
	b := Parse([]byte("> quoted\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: BlockQuoteTag}},
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "quoted"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: EndTag, Tag: Tag{Kind: BlockQuoteTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestParserBackslashEscape(t *testing.T) {
	b := Parse([]byte("a \\* b\n"))
	got := collectEvents(t, NewParser(b))
	want := []Event{
		{Kind: StartTag, Tag: Tag{Kind: ParagraphTag}},
		{Kind: TextEvent, Text: "a "},
		{Kind: TextEvent, Text: "* b"},
		{Kind: EndTag, Tag: Tag{Kind: ParagraphTag}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}
