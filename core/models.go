package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// Strategy identifies one of the independent chunking policies.
type Strategy string

const (
	// StrategyTemporal aligns chunks with video timestamp segments.
	StrategyTemporal Strategy = "temporal"
	// StrategyReference centers chunks on Bible reference clusters.
	StrategyReference Strategy = "reference"
	// StrategySemantic produces fixed-size word windows with overlap.
	StrategySemantic Strategy = "semantic"
)

// Strategies lists all chunking strategies in their canonical order.
var Strategies = []Strategy{StrategyTemporal, StrategyReference, StrategySemantic}

// Abbrev returns the three-letter tag used in strategy-scoped chunk ids.
func (s Strategy) Abbrev() string {
	switch s {
	case StrategyTemporal:
		return "tem"
	case StrategyReference:
		return "ref"
	case StrategySemantic:
		return "sem"
	}
	return "unk"
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyTemporal, StrategyReference, StrategySemantic:
		return true
	}
	return false
}

// SourceDocument identifies a downloaded source file. Identity is the
// path key plus the content hash; re-downloads with an identical hash
// are no-ops in the catalog.
type SourceDocument struct {
	Filename    string `json:"filename"`
	Path        string `json:"sanitized_path"`
	Category    string `json:"category"`
	OriginalURL string `json:"url"`
	ContentHash string `json:"md5"`
	Size        int64  `json:"size_bytes"`
}

// FileInfo carries document-level identity and classification metadata.
type FileInfo struct {
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Series      string `json:"series"`
	FolderPath  string `json:"folder_path"`
	OriginalURL string `json:"original_url"`
	SourceHash  string `json:"source_hash"`
}

// ContentStats aggregates size counts over the whole document.
type ContentStats struct {
	Pages     int `json:"pages"`
	WordCount int `json:"word_count"`
	CharCount int `json:"char_count"`
}

// Features summarizes which entity types were detected.
type Features struct {
	HasTimestamps  bool `json:"has_timestamps"`
	TimestampCount int  `json:"timestamp_count"`
	HasBibleRefs   bool `json:"has_bible_refs"`
	BibleRefCount  int  `json:"bible_ref_count"`
}

// BibleReference is a detected scripture citation with its position in
// the owning page's text. VerseEnd of 0 means a single verse; a
// chapter-only citation carries VerseStart 0 as well.
type BibleReference struct {
	Text       string `json:"text"`
	Book       string `json:"book"`
	Chapter    int    `json:"chapter"`
	VerseStart int    `json:"verse_start,omitempty"`
	VerseEnd   int    `json:"verse_end,omitempty"`
	Position   int    `json:"position"`
	Context    string `json:"context"`
	Page       int    `json:"page"`
}

// Timestamp is a detected video timestamp range. EndSeconds is always
// strictly greater than StartSeconds; pairs that fail this check are
// dropped at detection time, never stored.
type Timestamp struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	StartSeconds int    `json:"start_seconds"`
	EndSeconds   int    `json:"end_seconds"`
	Position     int    `json:"position"`
	Page         int    `json:"page"`
}

// Duration returns the segment length in seconds.
func (t Timestamp) Duration() int {
	return t.EndSeconds - t.StartSeconds
}

// PageText holds one page of cleaned text with the entities found on it.
type PageText struct {
	Page            int              `json:"page"`
	Text            string           `json:"text"`
	WordCount       int              `json:"word_count"`
	CharCount       int              `json:"char_count"`
	BibleReferences []BibleReference `json:"bible_references"`
	Timestamps      []Timestamp      `json:"timestamps"`
}

// DocumentRecord is the extractor's output: one structured record per
// source document. Concatenating Pages[].Text in page order (joined by
// a single space) reproduces FullText exactly, and every entity in an
// aggregate list also appears in its originating page's list.
type DocumentRecord struct {
	FileInfo        FileInfo         `json:"file_info"`
	ContentStats    ContentStats     `json:"content_stats"`
	Features        Features         `json:"features"`
	BibleReferences []BibleReference `json:"bible_references"`
	Timestamps      []Timestamp      `json:"timestamps"`
	Pages           []PageText       `json:"pages"`
	FullText        string           `json:"full_text"`
}

// ChunkRecord is one embeddable chunk produced by a strategy. Records
// are created fresh on every chunking run and never mutated afterwards.
type ChunkRecord struct {
	ID         string         `json:"id"`
	Strategy   Strategy       `json:"strategy"`
	StrategyID string         `json:"strategy_id"`
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata"`
}

// StrategyChunkID builds the strategy-scoped chunk id. It is derived
// from the source content hash and the chunk's ordinal within its
// document and strategy, so unchanged documents keep identical ids when
// the corpus grows around them.
func StrategyChunkID(strategy Strategy, sourceHash string, ordinal int) string {
	hash8 := sourceHash
	if len(hash8) > 8 {
		hash8 = hash8[:8]
	}
	return fmt.Sprintf("tbp_%s_%s_%04d", strategy.Abbrev(), hash8, ordinal)
}

// ChunkID derives the globally unique chunk id from the strategy id and
// chunk text using BLAKE2b hashing. Identical content produces identical
// ids, which is what makes re-ingestion idempotent.
func ChunkID(strategyID, text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(strategyID))
	h.Write([]byte{0})
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return fmt.Sprintf("tbp_%016x", binary.LittleEndian.Uint64(sum))
}

// CollectionEntry is what the vector collection persists per chunk:
// the embedding, the chunk text, and the flattened metadata.
type CollectionEntry struct {
	ID       string            `json:"id"`
	Strategy Strategy          `json:"strategy"`
	Vector   []float32         `json:"vector"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Ledger records per-strategy ingestion progress for one collection.
// NextOffset is the count of contiguously committed chunks from the
// front of the strategy's chunk list; LastChunkID is the id at
// NextOffset-1 and is used to detect a changed chunk set between runs.
type Ledger struct {
	Collection  string   `json:"collection"`
	Strategy    Strategy `json:"strategy"`
	NextOffset  int      `json:"next_offset"`
	LastChunkID string   `json:"last_chunk_id"`
	UpdatedAtMS int64    `json:"updated_at_ms"`
}

// SearchResult pairs a collection entry with its similarity score.
type SearchResult struct {
	Entry *CollectionEntry
	Score float32
}
