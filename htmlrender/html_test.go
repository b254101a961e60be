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

package htmlrender

import (
	"strings"
	"testing"

	"eventmark.dev/go/commonmark"
)

func render(t *testing.T, r *Renderer, source string) string {
	t.Helper()
	b := commonmark.Parse([]byte(source))
	var buf strings.Builder
	if r == nil {
		r = new(Renderer)
	}
	if err := r.Render(&buf, commonmark.NewParser(b)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderParagraphAndEmphasis(t *testing.T) {
	got := render(t, nil, "hello *world*\n")
	want := "<p>hello <em>world</em></p>"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderHeadingAndEscaping(t *testing.T) {
	got := render(t, nil, "# a < b & c\n")
	want := "<h1>a &lt; b &amp; c</h1>"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderCodeSpan(t *testing.T) {
	got := render(t, nil, "x `<y>` z\n")
	want := "<p>x <code>&lt;y&gt;</code> z</p>"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderLink(t *testing.T) {
	got := render(t, nil, "[a](/dest \"t\")\n")
	want := `<p><a href="/dest" title="t">a</a></p>`
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderImageAltFlattening(t *testing.T) {
	// The image's descendant markup (the emphasis) is flattened into
	// the alt attribute as plain text, not re-rendered as HTML.
	got := render(t, nil, "![a *b* c](/img.png \"cap\")\n")
	want := `<p><img src="/img.png" title="cap" alt="a b c"></p>`
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderOrderedListWithStart(t *testing.T) {
	got := render(t, nil, "3. a\n4. b\n")
	want := `<ol start="3"><li>a</li><li>b</li></ol>`
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderLooseListParagraphs(t *testing.T) {
	got := render(t, nil, "- a\n\n- b\n")
	want := "<ul><li><p>a</p></li><li><p>b</p></li></ul>"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderFencedCodeBlockWithInfo(t *testing.T) {
	got := render(t, nil, "```go helper\nfmt.Println(1)\n```\n")
	want := "<pre><code class=\"language-go\">fmt.Println(1)\n</code></pre>"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderThematicBreak(t *testing.T) {
	got := render(t, nil, "---\n")
	want := "<hr>"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRenderSoftBreakBehavior(t *testing.T) {
	tests := []struct {
		name     string
		behavior SoftBreakBehavior
		want     string
	}{
		{"Preserve", SoftBreakPreserve, "<p>a\nb</p>"},
		{"Space", SoftBreakSpace, "<p>a b</p>"},
		{"Harden", SoftBreakHarden, "<p>a<br>\nb</p>"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := render(t, &Renderer{SoftBreakBehavior: test.behavior}, "a\nb\n")
			if got != test.want {
				t.Errorf("got %q; want %q", got, test.want)
			}
		})
	}
}

func TestRenderRawHTMLDefaultAndIgnored(t *testing.T) {
	source := "a <span>b</span> c\n"
	got := render(t, nil, source)
	want := "<p>a <span>b</span> c</p>"
	if got != want {
		t.Errorf("default: got %q; want %q", got, want)
	}

	got = render(t, &Renderer{IgnoreRaw: true}, source)
	want = "<p>a b c</p>"
	if got != want {
		t.Errorf("IgnoreRaw: got %q; want %q", got, want)
	}
}

func TestRenderFilterTagGFM(t *testing.T) {
	got := render(t, &Renderer{FilterTag: FilterTagGFM}, "a <script>alert(1)</script> b\n")
	want := "<p>a &lt;script>alert(1)&lt;/script> b</p>"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestNormalizeURIEncodesUnsafeBytes(t *testing.T) {
	got := NormalizeURI("/a b")
	want := "/a%20b"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestNormalizeURIPreservesExistingPercentEscape(t *testing.T) {
	got := NormalizeURI("/a%20b")
	want := "/a%20b"
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}
