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

// Command eventmark renders a CommonMark document to HTML.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"eventmark.dev/go/commonmark"
	"eventmark.dev/go/commonmark/htmlrender"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("eventmark: ")

	var (
		softBreak = flag.String("soft-break", "preserve", "soft line break handling: preserve, space, or hard")
		ignoreRaw = flag.Bool("ignore-raw", false, "drop raw HTML blocks and inline HTML")
		gfmFilter = flag.Bool("gfm-tagfilter", false, "escape the GitHub Flavored Markdown disallowed tag set")
	)
	flag.Usage = func() {
		log.Printf("usage: eventmark [flags] [file]\n\nReads a CommonMark document from file, or stdin if omitted,\nand writes its HTML rendering to stdout.\n\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	var behavior htmlrender.SoftBreakBehavior
	switch *softBreak {
	case "preserve":
		behavior = htmlrender.SoftBreakPreserve
	case "space":
		behavior = htmlrender.SoftBreakSpace
	case "hard":
		behavior = htmlrender.SoftBreakHarden
	default:
		log.Fatalf("invalid -soft-break value %q", *softBreak)
	}

	var source []byte
	var err error
	switch flag.NArg() {
	case 0:
		source, err = io.ReadAll(os.Stdin)
	case 1:
		source, err = os.ReadFile(flag.Arg(0))
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	block := commonmark.Parse(source)
	r := &htmlrender.Renderer{SoftBreakBehavior: behavior, IgnoreRaw: *ignoreRaw}
	if *gfmFilter {
		r.FilterTag = htmlrender.FilterTagGFM
	}
	if err := r.Render(os.Stdout, commonmark.NewParser(block)); err != nil {
		log.Fatalf("render html: %v", err)
	}
}
