package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	controlChars   = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
	pageLabels     = regexp.MustCompile(`(?i)\bPage \d+\b`)
	pageFractions  = regexp.MustCompile(`\b\d+\s*/\s*\d+\b`)
)

var quoteNormalizer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// CleanText normalizes raw page text: whitespace collapsed to single
// spaces, control characters stripped, smart quotes straightened, and
// page-number artifacts removed.
func CleanText(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\x00", "")
	text = controlChars.ReplaceAllString(text, "")
	text = quoteNormalizer.Replace(text)
	text = pageLabels.ReplaceAllString(text, "")
	text = pageFractions.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Filename suffixes that carry document-type noise rather than title.
var titleSuffixes = []string{"_Transcript", "_Script-References", "_Study-Notes", "_SR"}

// DeriveTitle turns a source filename into a display title: extension
// and type suffix stripped, dashes and underscores spaced out.
func DeriveTitle(filename string) string {
	name := filepath.Base(filename)
	if strings.HasSuffix(name, PagesSuffix) {
		name = strings.TrimSuffix(name, PagesSuffix)
	} else {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}
