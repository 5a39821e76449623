package chunking

import (
	"sort"

	"github.com/btservant/tbpcorpus/core"
)

// TemporalChunks aligns chunks with video timestamp segments: one
// chunk per detected timestamp, spanning from the previous timestamp's
// position to the next one's. Documents without timestamps contribute
// nothing to this strategy. A pure transform; identical input produces
// identical chunks.
func TemporalChunks(record *core.DocumentRecord, params Params) []*core.ChunkRecord {
	if len(record.Timestamps) == 0 {
		return nil
	}

	m := newWordMap(record)
	stamps := make([]core.Timestamp, len(record.Timestamps))
	copy(stamps, record.Timestamps)
	sort.SliceStable(stamps, func(i, j int) bool {
		return m.tsWordIndex(stamps[i]) < m.tsWordIndex(stamps[j])
	})

	var chunks []*core.ChunkRecord
	for idx, ts := range stamps {
		startWord := 0
		if idx > 0 {
			startWord = m.tsWordIndex(stamps[idx-1])
		}
		endWord := m.wordCount()
		if idx < len(stamps)-1 {
			endWord = m.tsWordIndex(stamps[idx+1])
		}

		text := m.slice(startWord, endWord)
		if text == "" {
			continue
		}

		refs := refsInSpan(record, m, startWord, endWord)
		chunks = append(chunks, newChunk(record, core.StrategyTemporal, len(chunks), text, map[string]any{
			"word_count":       endWord - startWord,
			"timestamp_index":  idx,
			"start_time":       ts.Start,
			"end_time":         ts.End,
			"start_seconds":    ts.StartSeconds,
			"end_seconds":      ts.EndSeconds,
			"video_timestamp":  ts.StartSeconds,
			"duration_seconds": ts.Duration(),
			"bible_references": refs,
			"has_bible_refs":   len(refs) > 0,
			"has_timestamp":    true,
		}))
	}
	return chunks
}
