// Copyright 2025 BT Servant
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package chunking turns document records into embeddable chunks
// under three independent strategies: temporal (video timestamp
// segments), reference-anchored (scripture citation clusters), and
// semantic (fixed word windows with overlap). Each strategy covers the
// whole document on its own terms; they are not fallbacks of each
// other.
package chunking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/extract"
)

// Output filenames under the chunks directory.
const (
	StrategyDirName    = "by_strategy"
	AllChunksFilename  = "all_chunks_for_embedding.json"
	SummaryFilename    = "chunking_summary.json"
	strategyFileSuffix = "_chunks.json"
)

// Chunker reads extracted DocumentRecord JSONs and writes per-strategy
// chunk files plus the combined embedding input.
type Chunker struct {
	params Params
	logger *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithParams overrides the default chunking parameters.
func WithParams(params Params) Option {
	return func(c *Chunker) error {
		if !params.Valid() {
			return ErrInvalidParams
		}
		c.params = params
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a Chunker.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		params: DefaultParams(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ChunkDocument runs all three strategies over one record, in
// parallel. The returned slice is ordered temporal, reference,
// semantic; within a strategy, chunks keep their emission order.
func (c *Chunker) ChunkDocument(ctx context.Context, record *core.DocumentRecord) ([]*core.ChunkRecord, error) {
	byStrategy := make(map[core.Strategy][]*core.ChunkRecord, len(core.Strategies))

	g, _ := errgroup.WithContext(ctx)
	var temporal, reference, semantic []*core.ChunkRecord
	g.Go(func() error {
		temporal = TemporalChunks(record, c.params)
		return nil
	})
	g.Go(func() error {
		reference = ReferenceChunks(record, c.params)
		return nil
	})
	g.Go(func() error {
		semantic = SemanticChunks(record, c.params)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byStrategy[core.StrategyTemporal] = temporal
	byStrategy[core.StrategyReference] = reference
	byStrategy[core.StrategySemantic] = semantic

	var all []*core.ChunkRecord
	for _, strategy := range core.Strategies {
		all = append(all, byStrategy[strategy]...)
	}
	return all, nil
}

// Summary is the run report written as chunking_summary.json.
type Summary struct {
	TotalFiles  int                   `json:"total_files"`
	Processed   int                   `json:"processed"`
	Failed      int                   `json:"failed"`
	ByStrategy  map[core.Strategy]int `json:"by_strategy"`
	TotalChunks int                   `json:"total_chunks"`
	Params      Params                `json:"params"`
	FailedFiles []string              `json:"failed_files,omitempty"`
}

// Run chunks every record under extractedDir and writes
// by_strategy/<name>_chunks.json, the combined
// all_chunks_for_embedding.json, and a run summary under chunksDir.
// Per-file failures are logged and skipped. Identical inputs and
// parameters always produce byte-identical chunk ids and text.
func (c *Chunker) Run(ctx context.Context, extractedDir, chunksDir string) (*Summary, error) {
	if info, err := os.Stat(extractedDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrExtractedDirMissing, extractedDir)
	}

	recordPaths, err := findRecords(extractedDir)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(chunksDir); err != nil {
		return nil, fmt.Errorf("failed to clear chunks directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(chunksDir, StrategyDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chunks directory: %w", err)
	}

	summary := &Summary{
		TotalFiles: len(recordPaths),
		ByStrategy: make(map[core.Strategy]int),
		Params:     c.params,
	}
	byStrategy := make(map[core.Strategy][]*core.ChunkRecord)

	for _, path := range recordPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := readRecord(path)
		if err != nil {
			c.logger.Warn("skipping unreadable record", "file", path, "err", err)
			summary.Failed++
			summary.FailedFiles = append(summary.FailedFiles, path)
			continue
		}

		chunks, err := c.ChunkDocument(ctx, record)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			byStrategy[chunk.Strategy] = append(byStrategy[chunk.Strategy], chunk)
		}
		summary.Processed++

		c.logger.Info("chunked",
			"file", path,
			"chunks", len(chunks))
	}

	var all []*core.ChunkRecord
	for _, strategy := range core.Strategies {
		chunks := byStrategy[strategy]
		summary.ByStrategy[strategy] = len(chunks)
		all = append(all, chunks...)

		if len(chunks) == 0 {
			continue
		}
		path := filepath.Join(chunksDir, StrategyDirName, string(strategy)+strategyFileSuffix)
		if err := writeChunks(path, chunks); err != nil {
			return nil, err
		}
	}
	summary.TotalChunks = len(all)

	if err := writeChunks(filepath.Join(chunksDir, AllChunksFilename), all); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(chunksDir, SummaryFilename), summary); err != nil {
		return nil, err
	}

	c.logger.Info("chunking complete",
		"files", summary.Processed,
		"failed", summary.Failed,
		"chunks", summary.TotalChunks)

	if summary.Processed == 0 && summary.TotalFiles > 0 {
		return summary, ErrNoRecordsChunked
	}
	return summary, nil
}

// LoadChunks reads a chunk file written by Run, for the ingest stage.
func LoadChunks(path string) ([]*core.ChunkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks file: %w", err)
	}
	var chunks []*core.ChunkRecord
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to parse chunks file %s: %w", path, err)
	}
	for _, chunk := range chunks {
		if err := core.ValidateChunkRecord(chunk); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

func findRecords(extractedDir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(extractedDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if filepath.Base(path) == extract.SummaryFilename {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk extracted directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func readRecord(path string) (*core.DocumentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record core.DocumentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if err := core.ValidateDocumentRecord(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeChunks(path string, chunks []*core.ChunkRecord) error {
	return writeJSON(path, chunks)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
