package chunking

import (
	"sort"

	"github.com/btservant/tbpcorpus/core"
)

// ReferenceChunks centers chunks on clusters of scripture citations.
// References within ClusterDistance words of each other form one
// cluster; each cluster yields a chunk of at most RefMaxWords centered
// on the cluster, expanded to at least RefMinWords. The cluster's
// first reference is the chunk's primary; every reference inside the
// final span is attached. Documents without references contribute
// nothing. A pure transform.
func ReferenceChunks(record *core.DocumentRecord, params Params) []*core.ChunkRecord {
	if len(record.BibleReferences) == 0 {
		return nil
	}

	m := newWordMap(record)
	refs := make([]core.BibleReference, len(record.BibleReferences))
	copy(refs, record.BibleReferences)
	sort.SliceStable(refs, func(i, j int) bool {
		return m.refWordIndex(refs[i]) < m.refWordIndex(refs[j])
	})

	var clusters [][]core.BibleReference
	current := []core.BibleReference{refs[0]}
	for _, ref := range refs[1:] {
		prev := current[len(current)-1]
		if m.refWordIndex(ref)-m.refWordIndex(prev) <= params.ClusterDistance {
			current = append(current, ref)
		} else {
			clusters = append(clusters, current)
			current = []core.BibleReference{ref}
		}
	}
	clusters = append(clusters, current)

	var chunks []*core.ChunkRecord
	for clusterIdx, cluster := range clusters {
		centerSum := 0
		for _, ref := range cluster {
			centerSum += m.refWordIndex(ref)
		}
		center := centerSum / len(cluster)

		half := params.RefMaxWords / 2
		startWord := max(0, center-half)
		endWord := min(m.wordCount(), center+half)

		if size := endWord - startWord; size < params.RefMinWords {
			expand := (params.RefMinWords - size) / 2
			startWord = max(0, startWord-expand)
			endWord = min(m.wordCount(), endWord+expand)
		}

		text := m.slice(startWord, endWord)
		if text == "" {
			continue
		}

		primary := cluster[0]
		spanRefs := refsInSpan(record, m, startWord, endWord)

		meta := map[string]any{
			"word_count":              endWord - startWord,
			"reference_cluster_index": clusterIdx,
			"primary_reference":       primary.Text,
			"primary_book":            primary.Book,
			"primary_chapter":         primary.Chapter,
			"primary_verse":           primary.VerseStart,
			"all_references":          referenceTexts(spanRefs),
			"reference_details":       spanRefs,
			"has_bible_refs":          true,
		}

		// A timestamp falling inside the span ties the chunk back to
		// its video segment.
		if stamps := timestampsInSpan(record, m, startWord, endWord); len(stamps) > 0 {
			ts := stamps[0]
			meta["has_timestamp"] = true
			meta["start_time"] = ts.Start
			meta["end_time"] = ts.End
			meta["start_seconds"] = ts.StartSeconds
			meta["end_seconds"] = ts.EndSeconds
			meta["video_timestamp"] = ts.StartSeconds
		} else {
			meta["has_timestamp"] = false
		}

		chunks = append(chunks, newChunk(record, core.StrategyReference, len(chunks), text, meta))
	}
	return chunks
}
