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
	"strings"
)

// book carries a canonical name, the regex variants that may cite it
// (plural forms, numbered prefixes with optional space), and standard
// abbreviations.
type book struct {
	name     string
	variants []string
	abbrevs  []string
}

// canon is the 66-book Protestant canon. Variant patterns follow the
// citation forms found in BibleProject transcripts: optional plural
// endings and optional space after book numbers ("1Corinthians").
var canon = []book{
	// Numbered and multi-word books first so their patterns outrank
	// the bare single-word books they contain.
	{name: "1 Chronicles", variants: []string{`1\s*Chronicles?`}, abbrevs: []string{`1\s*Chron?`, `1\s*Chr`}},
	{name: "2 Chronicles", variants: []string{`2\s*Chronicles?`}, abbrevs: []string{`2\s*Chron?`, `2\s*Chr`}},
	{name: "1 Corinthians", variants: []string{`1\s*Corinthians?`}, abbrevs: []string{`1\s*Cor`}},
	{name: "2 Corinthians", variants: []string{`2\s*Corinthians?`}, abbrevs: []string{`2\s*Cor`}},
	{name: "1 Kings", variants: []string{`1\s*Kings?`}, abbrevs: []string{`1\s*Kgs`}},
	{name: "2 Kings", variants: []string{`2\s*Kings?`}, abbrevs: []string{`2\s*Kgs`}},
	{name: "1 Peter", variants: []string{`1\s*Peter`}, abbrevs: []string{`1\s*Pet`}},
	{name: "2 Peter", variants: []string{`2\s*Peter`}, abbrevs: []string{`2\s*Pet`}},
	{name: "1 Samuel", variants: []string{`1\s*Samuel`}, abbrevs: []string{`1\s*Sam`}},
	{name: "2 Samuel", variants: []string{`2\s*Samuel`}, abbrevs: []string{`2\s*Sam`}},
	{name: "1 Thessalonians", variants: []string{`1\s*Thessalonians?`}, abbrevs: []string{`1\s*Thess?`}},
	{name: "2 Thessalonians", variants: []string{`2\s*Thessalonians?`}, abbrevs: []string{`2\s*Thess?`}},
	{name: "1 Timothy", variants: []string{`1\s*Timothy`}, abbrevs: []string{`1\s*Tim`}},
	{name: "2 Timothy", variants: []string{`2\s*Timothy`}, abbrevs: []string{`2\s*Tim`}},
	{name: "1 John", variants: []string{`1\s*John`}, abbrevs: []string{`1\s*Jn`}},
	{name: "2 John", variants: []string{`2\s*John`}, abbrevs: []string{`2\s*Jn`}},
	{name: "3 John", variants: []string{`3\s*John`}, abbrevs: []string{`3\s*Jn`}},
	{name: "Song of Songs", variants: []string{`Song\s+of\s+Songs?`, `Song\s+of\s+Solomon`}, abbrevs: []string{`Song`}},

	{name: "Genesis", variants: []string{`Genesis`}, abbrevs: []string{`Gen`}},
	{name: "Exodus", variants: []string{`Exodus`}, abbrevs: []string{`Exod?`, `Ex`}},
	{name: "Leviticus", variants: []string{`Leviticus`}, abbrevs: []string{`Lev`}},
	{name: "Numbers", variants: []string{`Numbers`}, abbrevs: []string{`Num`}},
	{name: "Deuteronomy", variants: []string{`Deuteronomy`}, abbrevs: []string{`Deut`}},
	{name: "Joshua", variants: []string{`Joshua`}, abbrevs: []string{`Josh`}},
	{name: "Judges", variants: []string{`Judges`}, abbrevs: []string{`Judg`}},
	{name: "Ruth", variants: []string{`Ruth`}},
	{name: "Ezra", variants: []string{`Ezra`}},
	{name: "Nehemiah", variants: []string{`Nehemiah`}, abbrevs: []string{`Neh`}},
	{name: "Esther", variants: []string{`Esther`}, abbrevs: []string{`Esth`}},
	{name: "Job", variants: []string{`Job`}},
	{name: "Psalms", variants: []string{`Psalms?`}, abbrevs: []string{`Ps`}},
	{name: "Proverbs", variants: []string{`Proverbs?`}, abbrevs: []string{`Prov`}},
	{name: "Ecclesiastes", variants: []string{`Ecclesiastes`}, abbrevs: []string{`Eccl`}},
	{name: "Isaiah", variants: []string{`Isaiah`}, abbrevs: []string{`Isa`}},
	{name: "Jeremiah", variants: []string{`Jeremiah`}, abbrevs: []string{`Jer`}},
	{name: "Lamentations", variants: []string{`Lamentations`}, abbrevs: []string{`Lam`}},
	{name: "Ezekiel", variants: []string{`Ezekiel`}, abbrevs: []string{`Ezek`}},
	{name: "Daniel", variants: []string{`Daniel`}, abbrevs: []string{`Dan`}},
	{name: "Hosea", variants: []string{`Hosea`}, abbrevs: []string{`Hos`}},
	{name: "Joel", variants: []string{`Joel`}},
	{name: "Amos", variants: []string{`Amos`}},
	{name: "Obadiah", variants: []string{`Obadiah`}, abbrevs: []string{`Obad`}},
	{name: "Jonah", variants: []string{`Jonah`}, abbrevs: []string{`Jon`}},
	{name: "Micah", variants: []string{`Micah`}, abbrevs: []string{`Mic`}},
	{name: "Nahum", variants: []string{`Nahum`}, abbrevs: []string{`Nah`}},
	{name: "Habakkuk", variants: []string{`Habakkuk`}, abbrevs: []string{`Hab`}},
	{name: "Zephaniah", variants: []string{`Zephaniah`}, abbrevs: []string{`Zeph`}},
	{name: "Haggai", variants: []string{`Haggai`}, abbrevs: []string{`Hag`}},
	{name: "Zechariah", variants: []string{`Zechariah`}, abbrevs: []string{`Zech`}},
	{name: "Malachi", variants: []string{`Malachi`}, abbrevs: []string{`Mal`}},
	{name: "Matthew", variants: []string{`Matthew`}, abbrevs: []string{`Matt`}},
	{name: "Mark", variants: []string{`Mark`}},
	{name: "Luke", variants: []string{`Luke`}},
	{name: "John", variants: []string{`John`}, abbrevs: []string{`Jn`}},
	{name: "Acts", variants: []string{`Acts`}},
	{name: "Romans", variants: []string{`Romans?`}, abbrevs: []string{`Rom`}},
	{name: "Galatians", variants: []string{`Galatians?`}, abbrevs: []string{`Gal`}},
	{name: "Ephesians", variants: []string{`Ephesians?`}, abbrevs: []string{`Eph`}},
	{name: "Philippians", variants: []string{`Philippians?`}, abbrevs: []string{`Phil`}},
	{name: "Colossians", variants: []string{`Colossians?`}, abbrevs: []string{`Col`}},
	{name: "Titus", variants: []string{`Titus`}},
	{name: "Philemon", variants: []string{`Philemon`}, abbrevs: []string{`Phlm`}},
	{name: "Hebrews", variants: []string{`Hebrews?`}, abbrevs: []string{`Heb`}},
	{name: "James", variants: []string{`James`}, abbrevs: []string{`Jas`}},
	{name: "Jude", variants: []string{`Jude`}},
	{name: "Revelation", variants: []string{`Revelation`}, abbrevs: []string{`Rev`}},
}

// bookPattern is the alternation of every citation form, ordered
// longest pattern first so the regex engine prefers full names over
// abbreviations at the same offset.
var bookPattern = buildBookPattern()

// bookIndex maps a normalized matched form back to its canonical name.
var bookIndex = buildBookIndex()

func buildBookPattern() string {
	var alternatives []string
	for _, b := range canon {
		alternatives = append(alternatives, b.variants...)
		alternatives = append(alternatives, b.abbrevs...)
	}
	sort.SliceStable(alternatives, func(i, j int) bool {
		return len(alternatives[i]) > len(alternatives[j])
	})
	return "(?:" + strings.Join(alternatives, "|") + ")"
}

func buildBookIndex() map[string]string {
	index := make(map[string]string)
	for _, b := range canon {
		for _, pat := range append(append([]string{}, b.variants...), b.abbrevs...) {
			re := regexp.MustCompile(`(?i)^` + pat + `$`)
			// Register every concrete spelling the pattern admits,
			// derived by stripping the regex operators it uses.
			for _, form := range concreteForms(pat) {
				if re.MatchString(form) {
					index[normalizeBook(form)] = b.name
				}
			}
		}
	}
	return index
}

// concreteForms expands the limited regex vocabulary used by the canon
// patterns (optional trailing char `x?`, `\s*`, `\s+`) into literal
// spellings.
func concreteForms(pattern string) []string {
	forms := []string{""}
	i := 0
	for i < len(pattern) {
		switch {
		case strings.HasPrefix(pattern[i:], `\s*`), strings.HasPrefix(pattern[i:], `\s+`):
			forms = appendToAll(forms, " ")
			i += 3
		case i+1 < len(pattern) && pattern[i+1] == '?':
			with := appendToAll(forms, string(pattern[i]))
			forms = append(forms, with...)
			i += 2
		default:
			forms = appendToAll(forms, string(pattern[i]))
			i++
		}
	}
	return forms
}

func appendToAll(forms []string, s string) []string {
	out := make([]string, len(forms))
	for i, f := range forms {
		out[i] = f + s
	}
	return out
}

// normalizeBook lowercases a matched book string and collapses internal
// whitespace so "1  Corinthians" and "1Corinthians" hit the same key.
func normalizeBook(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	// Numbered books may omit the space after the number.
	if len(s) > 1 && s[0] >= '1' && s[0] <= '3' && s[1] != ' ' {
		s = s[:1] + " " + s[1:]
	}
	return s
}

// ResolveBook maps a matched citation form to its canonical book name.
func ResolveBook(matched string) (string, bool) {
	name, ok := bookIndex[normalizeBook(matched)]
	return name, ok
}
