// Copyright 2025 BT Servant
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/btservant/tbpcorpus/core"
)

// DefaultContextRadius is the context window captured around each
// detected reference, in characters on each side.
const DefaultContextRadius = 80

// Citation forms, tried longest first at every offset: verse range,
// single verse, chapter range, bare chapter.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(` + bookPattern + `)\s+(\d+):(\d+)[-–](\d+)`),
	regexp.MustCompile(`(?i)\b(` + bookPattern + `)\s+(\d+):(\d+)`),
	regexp.MustCompile(`(?i)\b(` + bookPattern + `)\s+(\d+)[-–](\d+)`),
	regexp.MustCompile(`(?i)\b(` + bookPattern + `)\s+(\d+)`),
}

// Which capture groups mean what, per pattern above.
var referenceShapes = []struct{ verseStart, verseEnd, chapterEnd int }{
	{verseStart: 3, verseEnd: 4},
	{verseStart: 3},
	{chapterEnd: 3},
	{},
}

// FindReferences scans page text for scripture citations and returns
// them ordered by position. Matches starting at the same offset are
// collapsed to the longest one, so "Genesis 2:19" never also yields a
// bare "Genesis 2". A pure function; the same text always produces the
// same references.
func FindReferences(pageText string, contextRadius int) []core.BibleReference {
	if contextRadius <= 0 {
		contextRadius = DefaultContextRadius
	}

	byOffset := make(map[int]core.BibleReference)
	for i, re := range referencePatterns {
		shape := referenceShapes[i]
		for _, match := range re.FindAllStringSubmatchIndex(pageText, -1) {
			start, end := match[0], match[1]
			if prev, ok := byOffset[start]; ok && len(prev.Text) >= end-start {
				continue
			}

			bookText := pageText[match[2]:match[3]]
			bookName, ok := ResolveBook(bookText)
			if !ok {
				continue
			}

			ref := core.BibleReference{
				Text:     pageText[start:end],
				Book:     bookName,
				Chapter:  mustAtoi(pageText[match[4]:match[5]]),
				Position: start,
			}
			if shape.verseStart != 0 {
				ref.VerseStart = groupInt(pageText, match, shape.verseStart)
			}
			if shape.verseEnd != 0 {
				ref.VerseEnd = groupInt(pageText, match, shape.verseEnd)
			}
			// Chapter ranges keep only the starting chapter; the
			// matched text preserves the full span.
			byOffset[start] = ref
		}
	}

	refs := make([]core.BibleReference, 0, len(byOffset))
	for _, ref := range byOffset {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Position < refs[j].Position })

	for i := range refs {
		refs[i].Context = contextWindow(pageText, refs[i].Position, len(refs[i].Text), contextRadius)
	}
	return refs
}

// contextWindow returns the text around a match, clipped to page
// bounds and trimmed.
func contextWindow(text string, pos, matchLen, radius int) string {
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + matchLen + radius
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}

func groupInt(text string, match []int, group int) int {
	lo, hi := match[2*group], match[2*group+1]
	if lo < 0 {
		return 0
	}
	return mustAtoi(text[lo:hi])
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
