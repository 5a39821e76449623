package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/btservant/tbpcorpus/core"
)

// FlattenChunk projects a chunk's metadata bag onto the flat string map
// the collection stores. Scalars keep their value verbatim, so fields
// like primary_book and primary_chapter remain individually filterable.
// Lists of strings are joined; lists of structured values are stored as
// JSON strings. Nested maps are rejected.
func FlattenChunk(chunk *core.ChunkRecord) (map[string]string, error) {
	flat := make(map[string]string, len(chunk.Metadata)+2)
	flat["strategy"] = string(chunk.Strategy)
	flat["strategy_id"] = chunk.StrategyID

	for key, value := range chunk.Metadata {
		s, err := flattenValue(value)
		if err != nil {
			return nil, fmt.Errorf("metadata field %q: %w", key, err)
		}
		flat[key] = s

		if key == "bible_references" {
			flat["bible_ref_count"] = strconv.Itoa(listLen(value))
		}
	}
	return flat, nil
}

func flattenValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		// JSON round trips deliver all numbers as float64; -1 precision
		// renders integral values without a decimal point.
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case map[string]any:
		return "", ErrNestedMetadata
	default:
		return flattenList(value)
	}
}

// flattenList handles slice values. String-only lists read better
// joined; anything structured is kept as a JSON string.
func flattenList(value any) (string, error) {
	if joined, ok := joinStrings(value); ok {
		return joined, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %T", ErrNestedMetadata, value)
	}
	return string(raw), nil
}

func joinStrings(value any) (string, bool) {
	switch v := value.(type) {
	case []string:
		out := ""
		for i, s := range v {
			if i > 0 {
				out += "; "
			}
			out += s
		}
		return out, true
	case []any:
		out := ""
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			if i > 0 {
				out += "; "
			}
			out += s
		}
		return out, true
	}
	return "", false
}

func listLen(value any) int {
	switch v := value.(type) {
	case []string:
		return len(v)
	case []any:
		return len(v)
	case []core.BibleReference:
		return len(v)
	}
	return 0
}
