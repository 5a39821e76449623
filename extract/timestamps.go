package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/btservant/tbpcorpus/core"
)

// Timestamp range forms: hh:mm:ss pairs and mm:ss pairs, split by a
// dash, en-dash, or arrow. The longer form is matched first and its
// spans mask the shorter form, so "1:23:45-1:24:50" never also yields
// the bogus "23:45-1:24".
var timestampPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}:\d{2}:\d{2})\s*(?:[-–]|->|→)\s*(\d{1,2}:\d{2}:\d{2})`),
	regexp.MustCompile(`(\d{1,2}:\d{2})\s*(?:[-–]|->|→)\s*(\d{1,2}:\d{2})`),
}

// FindTimestamps scans page text for timestamp ranges and returns them
// ordered by position. Pairs whose end does not come after their start
// are malformed and dropped, never returned. A pure function over the
// text; dropped pairs are logged at debug level.
func FindTimestamps(pageText string) []core.Timestamp {
	var found []core.Timestamp
	var masked [][2]int

	for _, re := range timestampPatterns {
		for _, match := range re.FindAllStringSubmatchIndex(pageText, -1) {
			start, end := match[0], match[1]
			if overlapsAny(masked, start, end) {
				continue
			}
			masked = append(masked, [2]int{start, end})

			startText := pageText[match[2]:match[3]]
			endText := pageText[match[4]:match[5]]
			ts := core.Timestamp{
				Start:        startText,
				End:          endText,
				StartSeconds: timestampSeconds(startText),
				EndSeconds:   timestampSeconds(endText),
				Position:     start,
			}
			if ts.EndSeconds <= ts.StartSeconds {
				slog.Debug("dropping malformed timestamp range",
					"start", startText, "end", endText, "position", start)
				continue
			}
			found = append(found, ts)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Position < found[j].Position })
	return found
}

func overlapsAny(spans [][2]int, start, end int) bool {
	for _, span := range spans {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}

// timestampSeconds converts "mm:ss" or "hh:mm:ss" to seconds.
func timestampSeconds(ts string) int {
	parts := strings.Split(ts, ":")
	seconds := 0
	for _, part := range parts {
		n, _ := strconv.Atoi(part)
		seconds = seconds*60 + n
	}
	return seconds
}
