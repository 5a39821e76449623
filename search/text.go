package search

import "strings"

// stopWords holds the words ignored when testing a chunk for a
// verbatim query hit. Beyond the usual English function words it
// carries the conversational filler that saturates spoken-word
// transcripts; without these, nearly every query would "verbatim
// match" nearly every chunk.
var stopWords = buildStopWords(
	// function words
	"the", "a", "an", "be", "is", "are", "was", "were", "to", "of",
	"and", "in", "that", "have", "has", "it", "for", "not", "on",
	"with", "as", "you", "do", "at", "this", "but", "by", "from",
	"or", "we", "they", "he", "she",
	// transcript filler
	"yeah", "like", "so", "just", "really", "right", "okay", "well",
	"know", "mean", "gonna", "kind", "sort",
)

func buildStopWords(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, word := range words {
		set[word] = true
	}
	return set
}

// tokenizeAndFilter lowercases text, strips surrounding punctuation
// from each word and drops stop words. Interior apostrophes survive so
// contractions and possessives stay whole.
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords reports whether every content word of the
// query appears in the document. A query of nothing but stop words
// matches no document.
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWords := tokenizeAndFilter(document)
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}
