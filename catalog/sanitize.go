package catalog

import (
	"regexp"
	"strings"
)

var (
	forbiddenChars = regexp.MustCompile(`[<>:"|?*]`)
	dashRuns       = regexp.MustCompile(`-+`)
)

// maxComponentLen bounds a single path component; CloudFront folder
// names occasionally exceed filesystem-friendly lengths.
const maxComponentLen = 150

// SanitizePathComponent makes a single folder or file name safe for
// mirrored on-disk layout: forbidden characters removed, separators
// and spaces replaced with dashes, dash runs collapsed.
func SanitizePathComponent(name string) string {
	name = forbiddenChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, `\`, "-")
	name = strings.ReplaceAll(name, " ", "-")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > maxComponentLen {
		name = name[:maxComponentLen]
	}
	return name
}

// SanitizePath sanitizes every component of a slash-separated path.
func SanitizePath(path string) string {
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = SanitizePathComponent(part)
	}
	return strings.Join(parts, "/")
}
