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


package chunking

import (
	"sort"
	"strings"

	"github.com/btservant/tbpcorpus/core"
)

// wordMap indexes a document's full text by word. Entity positions are
// page-relative; the map translates them to document-level character
// offsets and from there to word indexes, so every strategy does its
// boundary arithmetic in the same word coordinate space.
type wordMap struct {
	words       []string
	starts      []int       // char offset of each word start in the full text
	pageOffsets map[int]int // page number -> char offset of the page start
}

func newWordMap(record *core.DocumentRecord) *wordMap {
	m := &wordMap{
		pageOffsets: make(map[int]int, len(record.Pages)),
	}

	offset := 0
	for _, page := range record.Pages {
		m.pageOffsets[page.Page] = offset
		offset += len(page.Text) + 1 // joining space
	}

	charPos := 0
	for _, word := range strings.Fields(record.FullText) {
		m.words = append(m.words, word)
		m.starts = append(m.starts, charPos)
		charPos += len(word) + 1
	}
	return m
}

func (m *wordMap) wordCount() int {
	return len(m.words)
}

// docPos translates a page-relative character position into a full
// text offset.
func (m *wordMap) docPos(page, pagePos int) int {
	return m.pageOffsets[page] + pagePos
}

// wordIndexAt returns the index of the word containing the given full
// text offset.
func (m *wordMap) wordIndexAt(charPos int) int {
	if len(m.starts) == 0 {
		return 0
	}
	// First word starting after charPos, minus one.
	idx := sort.SearchInts(m.starts, charPos+1) - 1
	if idx < 0 {
		idx = 0
	}
	return idx
}

// refWordIndex is wordIndexAt applied to a reference's position.
func (m *wordMap) refWordIndex(ref core.BibleReference) int {
	return m.wordIndexAt(m.docPos(ref.Page, ref.Position))
}

// tsWordIndex is wordIndexAt applied to a timestamp's position.
func (m *wordMap) tsWordIndex(ts core.Timestamp) int {
	return m.wordIndexAt(m.docPos(ts.Page, ts.Position))
}

// slice joins the words in [startWord, endWord).
func (m *wordMap) slice(startWord, endWord int) string {
	if startWord < 0 {
		startWord = 0
	}
	if endWord > len(m.words) {
		endWord = len(m.words)
	}
	if startWord >= endWord {
		return ""
	}
	return strings.Join(m.words[startWord:endWord], " ")
}

// refsInSpan returns the document's references whose word index falls
// in [startWord, endWord), in position order.
func refsInSpan(record *core.DocumentRecord, m *wordMap, startWord, endWord int) []core.BibleReference {
	var refs []core.BibleReference
	for _, ref := range record.BibleReferences {
		if idx := m.refWordIndex(ref); idx >= startWord && idx < endWord {
			refs = append(refs, ref)
		}
	}
	return refs
}

// timestampsInSpan returns the document's timestamps whose word index
// falls in [startWord, endWord), in position order.
func timestampsInSpan(record *core.DocumentRecord, m *wordMap, startWord, endWord int) []core.Timestamp {
	var stamps []core.Timestamp
	for _, ts := range record.Timestamps {
		if idx := m.tsWordIndex(ts); idx >= startWord && idx < endWord {
			stamps = append(stamps, ts)
		}
	}
	return stamps
}
