package chunking

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/btservant/tbpcorpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecordFile(t *testing.T, dir, name string, record *core.DocumentRecord) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.MarshalIndent(record, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func quietChunker(t *testing.T, opts ...Option) *Chunker {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidParams(t *testing.T) {
	_, err := New(WithParams(Params{SemanticSize: 100, SemanticOverlap: 100}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestRunWritesChunkFiles(t *testing.T) {
	extractedDir := t.TempDir()
	chunksDir := filepath.Join(t.TempDir(), "chunks")

	doc := docWithWords(1000)
	addRef(doc, 300, "Genesis", 1, 1)
	addTimestamp(doc, 100, 0, 75)
	writeRecordFile(t, filepath.Join(extractedDir, "Script-References"), "Test-Doc.json", doc)

	summary, err := quietChunker(t).Run(context.Background(), extractedDir, chunksDir)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 1, summary.ByStrategy[core.StrategyTemporal])
	assert.Equal(t, 1, summary.ByStrategy[core.StrategyReference])
	assert.Equal(t, 2, summary.ByStrategy[core.StrategySemantic])
	assert.Equal(t, 4, summary.TotalChunks)

	assert.FileExists(t, filepath.Join(chunksDir, StrategyDirName, "temporal_chunks.json"))
	assert.FileExists(t, filepath.Join(chunksDir, StrategyDirName, "reference_chunks.json"))
	assert.FileExists(t, filepath.Join(chunksDir, StrategyDirName, "semantic_chunks.json"))
	assert.FileExists(t, filepath.Join(chunksDir, SummaryFilename))

	chunks, err := LoadChunks(filepath.Join(chunksDir, AllChunksFilename))
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	// Canonical strategy order: temporal, reference, semantic.
	assert.Equal(t, core.StrategyTemporal, chunks[0].Strategy)
	assert.Equal(t, core.StrategyReference, chunks[1].Strategy)
	assert.Equal(t, core.StrategySemantic, chunks[2].Strategy)
	for _, chunk := range chunks {
		require.NoError(t, core.ValidateChunkRecord(chunk))
	}
}

func TestRunSkipsCorruptRecords(t *testing.T) {
	extractedDir := t.TempDir()
	chunksDir := filepath.Join(t.TempDir(), "chunks")

	writeRecordFile(t, extractedDir, "good.json", docWithWords(200))
	require.NoError(t, os.WriteFile(filepath.Join(extractedDir, "bad.json"), []byte("{oops"), 0o644))

	summary, err := quietChunker(t).Run(context.Background(), extractedDir, chunksDir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunIgnoresExtractionSummary(t *testing.T) {
	extractedDir := t.TempDir()
	writeRecordFile(t, extractedDir, "good.json", docWithWords(200))
	require.NoError(t, os.WriteFile(
		filepath.Join(extractedDir, "extraction_summary.json"), []byte(`{"total_files": 1}`), 0o644))

	summary, err := quietChunker(t).Run(context.Background(), extractedDir, filepath.Join(t.TempDir(), "chunks"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalFiles)
}

func TestRunMissingExtractedDir(t *testing.T) {
	_, err := quietChunker(t).Run(context.Background(),
		filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "chunks"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractedDirMissing)
}

func TestRunIdempotent(t *testing.T) {
	extractedDir := t.TempDir()
	doc := docWithWords(1500)
	addRef(doc, 700, "John", 3, 16)
	writeRecordFile(t, extractedDir, "doc.json", doc)

	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")

	c := quietChunker(t)
	_, err := c.Run(context.Background(), extractedDir, dirA)
	require.NoError(t, err)
	_, err = c.Run(context.Background(), extractedDir, dirB)
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(dirA, AllChunksFilename))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dirB, AllChunksFilename))
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical inputs and params produce byte-identical output")
}
