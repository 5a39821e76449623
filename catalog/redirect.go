package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Redirect is one path-redirection rule. Pattern is a regular
// expression matched against a folder path from its start; Target may
// reference capture groups as $1, $2, and so on.
type Redirect struct {
	Pattern string `json:"pattern"`
	Target  string `json:"target"`
	Enabled bool   `json:"enabled"`

	re *regexp.Regexp
}

// Redirects is an ordered rule list; the first matching enabled rule
// wins.
type Redirects []*Redirect

// CompileRedirects validates and compiles a rule list. Disabled rules
// are kept but never applied.
func CompileRedirects(rules []*Redirect) (Redirects, error) {
	for _, rule := range rules {
		if rule.Pattern == "" || rule.Target == "" {
			return nil, fmt.Errorf("%w: pattern and target are required", ErrInvalidRedirect)
		}
		re, err := regexp.Compile("^(?:" + rule.Pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRedirect, err)
		}
		rule.re = re
	}
	return Redirects(rules), nil
}

// Apply runs the folder path through the rules and returns the
// redirected path. The second return is false when no rule matched.
func (r Redirects) Apply(folderPath string) (string, bool) {
	for _, rule := range r {
		if !rule.Enabled || rule.re == nil {
			continue
		}
		match := rule.re.FindStringSubmatch(folderPath)
		if match == nil {
			continue
		}
		redirected := rule.Target
		for i := 1; i < len(match); i++ {
			redirected = strings.ReplaceAll(redirected, "$"+strconv.Itoa(i), match[i])
		}
		return redirected, true
	}
	return "", false
}
