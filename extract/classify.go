package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Default classification for paths no rule matches.
const (
	DefaultType   = "Theme-Resource"
	DefaultSeries = "General"
)

// Rule maps a folder-path pattern to a document type and series. The
// series may reference the pattern's first capture group as $1.
type Rule struct {
	FolderPattern string `json:"folder_pattern"`
	Type          string `json:"type"`
	Series        string `json:"series"`

	re *regexp.Regexp
}

// Rules is an ordered classification table; the first matching rule
// wins.
type Rules []*Rule

// CompileRules validates and compiles a classification table. An
// invalid pattern is a configuration error and fails the whole table.
func CompileRules(rules []*Rule) (Rules, error) {
	for _, rule := range rules {
		if rule.FolderPattern == "" {
			return nil, fmt.Errorf("%w: folder_pattern is required", ErrInvalidRuleTable)
		}
		re, err := regexp.Compile("^(?:" + rule.FolderPattern + ")")
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRuleTable, rule.FolderPattern, err)
		}
		rule.re = re
	}
	return Rules(rules), nil
}

// Classify maps a folder path to its (type, series) pair. A pure
// function of the path and the table; unmatched paths get the
// defaults.
func (r Rules) Classify(folderPath string) (docType, series string) {
	for _, rule := range r {
		match := rule.re.FindStringSubmatch(folderPath)
		if match == nil {
			continue
		}
		docType = rule.Type
		if docType == "" {
			docType = DefaultType
		}
		series = rule.Series
		if series == "" {
			series = DefaultSeries
		} else if strings.Contains(series, "$1") {
			group := ""
			if len(match) > 1 {
				group = match[1]
			}
			series = strings.ReplaceAll(series, "$1", group)
		}
		return docType, series
	}
	return DefaultType, DefaultSeries
}
