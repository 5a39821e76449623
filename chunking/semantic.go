package chunking

import (
	"github.com/btservant/tbpcorpus/core"
)

// SemanticChunks splits the full text into fixed-size word windows
// with fixed overlap. Boundaries are pure word-index arithmetic, never
// content-sensitive: window k starts at k*(size-overlap). Each window
// inherits the references and timestamps inside its span. A pure
// transform.
func SemanticChunks(record *core.DocumentRecord, params Params) []*core.ChunkRecord {
	m := newWordMap(record)
	if m.wordCount() == 0 {
		return nil
	}

	step := params.SemanticSize - params.SemanticOverlap

	var chunks []*core.ChunkRecord
	for start := 0; start < m.wordCount(); start += step {
		end := min(start+params.SemanticSize, m.wordCount())
		text := m.slice(start, end)

		hasMore := start+params.SemanticSize < m.wordCount()
		overlap := 0
		if hasMore {
			overlap = params.SemanticOverlap
		}

		refs := refsInSpan(record, m, start, end)
		stamps := timestampsInSpan(record, m, start, end)

		meta := map[string]any{
			"word_count":       end - start,
			"chunk_index":      len(chunks),
			"is_partial":       hasMore,
			"overlap_words":    overlap,
			"bible_references": refs,
			"has_bible_refs":   len(refs) > 0,
			"timestamps":       stamps,
			"has_timestamp":    len(stamps) > 0,
		}
		if len(stamps) > 0 {
			meta["timestamp_range"] = []string{stamps[0].Start, stamps[len(stamps)-1].End}
			meta["start_seconds"] = stamps[0].StartSeconds
			meta["end_seconds"] = stamps[len(stamps)-1].EndSeconds
		}

		chunks = append(chunks, newChunk(record, core.StrategySemantic, len(chunks), text, meta))
	}
	return chunks
}
