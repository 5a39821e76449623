package chunking

import (
	"fmt"

	"github.com/btservant/tbpcorpus/core"
)

// referenceTexts projects references down to their citation strings.
func referenceTexts(refs []core.BibleReference) []string {
	texts := make([]string, len(refs))
	for i, ref := range refs {
		texts[i] = ref.Text
	}
	return texts
}

// newChunk assembles a ChunkRecord: title-prefixed text, ids derived
// from the source hash and ordinal, and a metadata bag that is the
// union of the document-level fields and the strategy-specific ones.
// Strategy metadata never shadows a document field.
func newChunk(record *core.DocumentRecord, strategy core.Strategy, ordinal int, text string, strategyMeta map[string]any) *core.ChunkRecord {
	metadata := map[string]any{
		"source":       "bibleproject",
		"category":     record.FileInfo.Category,
		"title":        record.FileInfo.Title,
		"type":         record.FileInfo.Type,
		"series":       record.FileInfo.Series,
		"folder_path":  record.FileInfo.FolderPath,
		"filename":     record.FileInfo.Filename,
		"original_url": record.FileInfo.OriginalURL,
		"page_count":   record.ContentStats.Pages,
	}
	for key, value := range strategyMeta {
		if _, taken := metadata[key]; taken {
			continue
		}
		metadata[key] = value
	}

	strategyID := core.StrategyChunkID(strategy, record.FileInfo.SourceHash, ordinal)
	prefixed := fmt.Sprintf("[%s] %s", record.FileInfo.Title, text)

	return &core.ChunkRecord{
		ID:         core.ChunkID(strategyID, prefixed),
		Strategy:   strategy,
		StrategyID: strategyID,
		Text:       prefixed,
		Metadata:   metadata,
	}
}
