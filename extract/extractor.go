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


// Package extract parses source documents into structured records:
// page-ordered cleaned text plus detected scripture references and
// video timestamps. Detection is pure pattern matching; the extractor
// only orchestrates it across files.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/btservant/tbpcorpus/catalog"
	"github.com/btservant/tbpcorpus/core"
)

// SummaryFilename is written into the output directory after a run.
const SummaryFilename = "extraction_summary.json"

// Extractor turns a directory tree of source files into one
// DocumentRecord JSON per file, mirrored under the output directory.
type Extractor struct {
	rules         Rules
	manifest      *catalog.Manifest
	workers       int
	contextRadius int
	logger        *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithRules sets the classification rule table.
func WithRules(rules Rules) Option {
	return func(e *Extractor) error {
		e.rules = rules
		return nil
	}
}

// WithManifest attaches the download catalog used to resolve original
// URLs for extracted files.
func WithManifest(m *catalog.Manifest) Option {
	return func(e *Extractor) error {
		e.manifest = m
		return nil
	}
}

// WithWorkers sets the worker pool size. Default is half the CPUs,
// minimum 1.
func WithWorkers(n int) Option {
	return func(e *Extractor) error {
		if n < 1 {
			n = 1
		}
		e.workers = n
		return nil
	}
}

// WithContextRadius sets the reference context window radius in
// characters.
func WithContextRadius(radius int) Option {
	return func(e *Extractor) error {
		if radius > 0 {
			e.contextRadius = radius
		}
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates an Extractor.
func New(opts ...Option) (*Extractor, error) {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	e := &Extractor{
		workers:       workers,
		contextRadius: DefaultContextRadius,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// GroupStats aggregates extraction counts for one category or type.
type GroupStats struct {
	Count      int `json:"count"`
	Pages      int `json:"pages"`
	Words      int `json:"words"`
	BibleRefs  int `json:"bible_refs"`
	Timestamps int `json:"timestamps"`
}

// FailedFile records one source that could not be extracted.
type FailedFile struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Summary is the run report written as extraction_summary.json.
type Summary struct {
	TotalFiles     int                    `json:"total_files"`
	Extracted      int                    `json:"extracted"`
	Failed         int                    `json:"failed"`
	TotalPages     int                    `json:"total_pages"`
	WithTimestamps int                    `json:"with_timestamps"`
	WithBibleRefs  int                    `json:"with_bible_refs"`
	TotalBibleRefs int                    `json:"total_bible_refs"`
	ByCategory     map[string]*GroupStats `json:"by_category"`
	ByType         map[string]*GroupStats `json:"by_type"`
	FailedFiles    []FailedFile           `json:"failed_files"`
}

// Run extracts every source under inputDir into a mirrored tree of
// DocumentRecord JSONs under outputDir. Files are processed by a
// bounded worker pool; a file that cannot be read is logged and
// skipped, never fatal. It fails only when the input directory is
// missing or nothing at all could be extracted.
func (e *Extractor) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputDirMissing, inputDir)
	}

	sources, err := findSources(inputDir)
	if err != nil {
		return nil, err
	}

	// Output is rebuilt from scratch each run; stale records from a
	// previous corpus layout must not survive.
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &Summary{
		TotalFiles: len(sources),
		ByCategory: make(map[string]*GroupStats),
		ByType:     make(map[string]*GroupStats),
	}

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			record, err := e.ExtractFile(src.path, src.relDir)
			if err != nil {
				e.logger.Warn("skipping unreadable source", "file", src.path, "err", err)
				mu.Lock()
				summary.Failed++
				summary.FailedFiles = append(summary.FailedFiles, FailedFile{File: src.path, Error: err.Error()})
				mu.Unlock()
				return
			}

			outPath := filepath.Join(outputDir, src.relDir, sourceStem(src.path)+".json")
			if err := writeRecord(outPath, record); err != nil {
				e.logger.Warn("failed to write record", "file", outPath, "err", err)
				mu.Lock()
				summary.Failed++
				summary.FailedFiles = append(summary.FailedFiles, FailedFile{File: src.path, Error: err.Error()})
				mu.Unlock()
				return
			}

			e.logger.Info("extracted",
				"file", src.path,
				"pages", record.ContentStats.Pages,
				"words", record.ContentStats.WordCount,
				"refs", record.Features.BibleRefCount,
				"timestamps", record.Features.TimestampCount)

			mu.Lock()
			summary.record(record)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}
	wg.Wait()

	sort.Slice(summary.FailedFiles, func(i, j int) bool {
		return summary.FailedFiles[i].File < summary.FailedFiles[j].File
	})

	if err := writeSummary(filepath.Join(outputDir, SummaryFilename), summary); err != nil {
		return nil, err
	}

	e.logger.Info("extraction complete",
		"total", summary.TotalFiles,
		"extracted", summary.Extracted,
		"failed", summary.Failed)

	if summary.Extracted == 0 && summary.TotalFiles > 0 {
		return summary, ErrNoSourcesExtracted
	}
	return summary, nil
}

// ExtractFile parses one source into a DocumentRecord.
func (e *Extractor) ExtractFile(path, relDir string) (*core.DocumentRecord, error) {
	rawPages, err := ReadPages(path)
	if err != nil {
		return nil, err
	}

	hash, err := SourceHash(path)
	if err != nil {
		return nil, err
	}

	docType, series := e.rules.Classify(relDir)

	originalURL := ""
	if e.manifest != nil {
		if res, ok := e.manifest.Lookup(filepath.Base(path)); ok {
			originalURL = res.URL
		}
	}

	record := &core.DocumentRecord{
		FileInfo: core.FileInfo{
			Filename:    filepath.Base(path),
			Title:       DeriveTitle(path),
			Category:    categoryFor(relDir),
			Type:        docType,
			Series:      series,
			FolderPath:  relDir,
			OriginalURL: originalURL,
			SourceHash:  hash,
		},
	}

	for pageNum, raw := range rawPages {
		cleaned := CleanText(raw)
		if cleaned == "" {
			continue
		}

		page := core.PageText{
			Page:      pageNum + 1,
			Text:      cleaned,
			WordCount: len(strings.Fields(cleaned)),
			CharCount: len(cleaned),
		}
		page.BibleReferences = FindReferences(cleaned, e.contextRadius)
		page.Timestamps = FindTimestamps(cleaned)
		for i := range page.BibleReferences {
			page.BibleReferences[i].Page = page.Page
		}
		for i := range page.Timestamps {
			page.Timestamps[i].Page = page.Page
		}

		record.Pages = append(record.Pages, page)
		record.BibleReferences = append(record.BibleReferences, page.BibleReferences...)
		record.Timestamps = append(record.Timestamps, page.Timestamps...)
	}

	if len(record.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, path)
	}

	texts := make([]string, len(record.Pages))
	for i, page := range record.Pages {
		texts[i] = page.Text
	}
	record.FullText = strings.Join(texts, " ")

	record.ContentStats = core.ContentStats{
		Pages:     len(rawPages),
		WordCount: len(strings.Fields(record.FullText)),
		CharCount: len(record.FullText),
	}
	record.Features = core.Features{
		HasTimestamps:  len(record.Timestamps) > 0,
		TimestampCount: len(record.Timestamps),
		HasBibleRefs:   len(record.BibleReferences) > 0,
		BibleRefCount:  len(record.BibleReferences),
	}

	return record, nil
}

type sourceFile struct {
	path   string
	relDir string
}

func findSources(inputDir string) ([]*sourceFile, error) {
	var sources []*sourceFile
	err := filepath.WalkDir(inputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".pdf") && !strings.HasSuffix(path, PagesSuffix) {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		relDir := filepath.Dir(rel)
		if relDir == "." {
			relDir = ""
		}
		sources = append(sources, &sourceFile{path: path, relDir: relDir})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].path < sources[j].path })
	return sources, nil
}

// sourceStem strips the source suffix from a filename.
func sourceStem(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(name, PagesSuffix) {
		return strings.TrimSuffix(name, PagesSuffix)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// categoryFor picks the grouping category: the first folder in the
// relative path, or Root for top-level files.
func categoryFor(relDir string) string {
	if relDir == "" {
		return "Root"
	}
	first := strings.Split(filepath.ToSlash(relDir), "/")[0]
	if mapped, ok := categoryNames[first]; ok {
		return mapped
	}
	return first
}

// Folder names whose display category differs from their spelling.
var categoryNames = map[string]string{
	"advent": "Advent",
}

func (s *Summary) record(record *core.DocumentRecord) {
	s.Extracted++
	s.TotalPages += record.ContentStats.Pages
	if record.Features.HasTimestamps {
		s.WithTimestamps++
	}
	if record.Features.HasBibleRefs {
		s.WithBibleRefs++
		s.TotalBibleRefs += record.Features.BibleRefCount
	}

	bumpGroup(s.ByCategory, record.FileInfo.Category, record)
	bumpGroup(s.ByType, record.FileInfo.Type, record)
}

func bumpGroup(stats map[string]*GroupStats, key string, record *core.DocumentRecord) {
	group, ok := stats[key]
	if !ok {
		group = &GroupStats{}
		stats[key] = group
	}
	group.Count++
	group.Pages += record.ContentStats.Pages
	group.Words += record.ContentStats.WordCount
	group.BibleRefs += record.Features.BibleRefCount
	group.Timestamps += record.Features.TimestampCount
}

func writeRecord(path string, record *core.DocumentRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeSummary(path string, summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
