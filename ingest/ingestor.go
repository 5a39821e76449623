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


// Package ingest loads embeddable chunks into a vector collection.
//
// Ingestion is idempotent: chunk ids are content-derived, chunks
// already present in the collection are skipped, and a per-strategy
// ledger records the contiguously committed prefix of the chunk list
// so later runs over a grown corpus resume without re-embedding. The
// ledger is written only after its batch is confirmed in the
// collection; a crash between embed and commit costs at most one
// membership re-check, never a duplicate entry.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/btservant/tbpcorpus/ai"
	"github.com/btservant/tbpcorpus/chunking"
	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/storage"
)

// costPerMillionTokens is the text-embedding-3-small price used for
// dry-run cost estimates.
const costPerMillionTokens = 0.02

// Config controls batching, retry and throughput behavior.
type Config struct {
	// BatchSize is the number of chunks per embedding request.
	BatchSize int
	// MaxRetries is the attempt budget per embedding request.
	MaxRetries int
	// RetryDelay is the base delay between retries (doubles each retry).
	RetryDelay time.Duration
	// RequestTimeout bounds a single embedding attempt.
	RequestTimeout time.Duration
	// RateLimit caps embedding requests per second across strategies.
	RateLimit float64
	// Workers bounds how many strategies ingest concurrently.
	Workers int
	// ReportInterval is how often (in chunks) progress is reported.
	ReportInterval int
}

// DefaultConfig returns the default ingestion configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		MaxRetries:     3,
		RetryDelay:     time.Second,
		RequestTimeout: 30 * time.Second,
		RateLimit:      2,
		Workers:        len(core.Strategies),
		ReportInterval: 100,
	}
}

// Valid reports whether the configuration is usable.
func (c *Config) Valid() bool {
	return c.BatchSize > 0 && c.MaxRetries > 0 && c.RetryDelay > 0 &&
		c.RequestTimeout > 0 && c.RateLimit > 0 && c.Workers > 0 &&
		c.ReportInterval > 0
}

// StrategyStats reports per-strategy ingestion outcomes.
type StrategyStats struct {
	Total           int `json:"total"`
	Ingested        int `json:"ingested"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
	WouldEmbed      int `json:"would_embed,omitempty"`
	EstimatedTokens int `json:"estimated_tokens,omitempty"`
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	RunID            string                           `json:"run_id"`
	Collection       string                           `json:"collection"`
	DryRun           bool                             `json:"dry_run"`
	TotalChunks      int                              `json:"total_chunks"`
	Ingested         int                              `json:"ingested"`
	Skipped          int                              `json:"skipped"`
	Failed           int                              `json:"failed"`
	ByStrategy       map[core.Strategy]*StrategyStats `json:"by_strategy"`
	EstimatedTokens  int                              `json:"estimated_tokens,omitempty"`
	EstimatedCostUSD float64                          `json:"estimated_cost_usd,omitempty"`
	Elapsed          time.Duration                    `json:"-"`
}

// Ingestor drives the load stage: it reads the chunk set, fans the
// three strategies out over a worker pool and ingests each strategy's
// chunks in sequential batches.
type Ingestor struct {
	collection     storage.CollectionRepository
	ledger         storage.LedgerRepository
	embedder       ai.Embedder
	collectionName string
	config         *Config
	limiter        *rate.Limiter
	dryRun         bool
	progressWriter io.Writer
	logger         *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithConfig overrides the default ingestion configuration.
func WithConfig(cfg *Config) Option {
	return func(ing *Ingestor) {
		ing.config = cfg
	}
}

// WithDryRun makes the run report what it would do without calling the
// embedding provider or writing to the collection.
func WithDryRun(dryRun bool) Option {
	return func(ing *Ingestor) {
		ing.dryRun = dryRun
	}
}

// WithProgressWriter sets where progress output goes. Defaults to stderr.
func WithProgressWriter(w io.Writer) Option {
	return func(ing *Ingestor) {
		ing.progressWriter = w
	}
}

// WithLogger sets the logger used by the ingestor.
func WithLogger(logger *slog.Logger) Option {
	return func(ing *Ingestor) {
		ing.logger = logger
	}
}

// New creates an Ingestor targeting the named collection.
func New(collectionName string, collection storage.CollectionRepository, ledger storage.LedgerRepository, embedder ai.Embedder, opts ...Option) (*Ingestor, error) {
	ing := &Ingestor{
		collection:     collection,
		ledger:         ledger,
		embedder:       embedder,
		collectionName: collectionName,
		config:         DefaultConfig(),
		progressWriter: os.Stderr,
		logger:         slog.Default().With("component", "ingestor"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	if !ing.config.Valid() {
		return nil, ErrInvalidConfig
	}
	// One limiter for the whole ingestor: strategies run concurrently
	// but the provider sees at most RateLimit requests per second.
	ing.limiter = rate.NewLimiter(rate.Limit(ing.config.RateLimit), 1)
	return ing, nil
}

// Run loads the chunk set from chunksFile and ingests it. Per-batch
// failures are logged and counted, not fatal; cancellation is honored
// between batches.
func (ing *Ingestor) Run(ctx context.Context, chunksFile string) (*Summary, error) {
	chunks, err := chunking.LoadChunks(chunksFile)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	byStrategy := groupByStrategy(chunks)

	summary := &Summary{
		RunID:       uuid.NewString(),
		Collection:  ing.collectionName,
		DryRun:      ing.dryRun,
		TotalChunks: len(chunks),
		ByStrategy:  make(map[core.Strategy]*StrategyStats, len(byStrategy)),
	}
	ing.logger.Info("starting ingestion run",
		"run_id", summary.RunID,
		"collection", ing.collectionName,
		"chunks", len(chunks),
		"dry_run", ing.dryRun)

	tracker := NewProgressTracker(ing.progressWriter, len(chunks), ing.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(ing.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, strategy := range core.Strategies {
		strategyChunks := byStrategy[strategy]
		if len(strategyChunks) == 0 {
			continue
		}
		strategy := strategy

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			stats := ing.ingestStrategy(ctx, strategy, strategyChunks, tracker)
			mu.Lock()
			summary.ByStrategy[strategy] = stats
			mu.Unlock()
		}); err != nil {
			wg.Done()
			mu.Lock()
			summary.ByStrategy[strategy] = &StrategyStats{
				Total:  len(strategyChunks),
				Failed: len(strategyChunks),
			}
			mu.Unlock()
			ing.logger.Error("failed to submit strategy", "strategy", strategy, "err", err)
		}
	}
	wg.Wait()
	tracker.Finish()

	for _, stats := range summary.ByStrategy {
		summary.Ingested += stats.Ingested
		summary.Skipped += stats.Skipped
		summary.Failed += stats.Failed
		summary.EstimatedTokens += stats.EstimatedTokens
	}
	if ing.dryRun {
		summary.EstimatedCostUSD = float64(summary.EstimatedTokens) * costPerMillionTokens / 1e6
	}
	summary.Elapsed = tracker.Elapsed()

	ing.logger.Info("ingestion run complete",
		"run_id", summary.RunID,
		"ingested", summary.Ingested,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed.Round(time.Millisecond))
	return summary, ctx.Err()
}

// ingestStrategy walks one strategy's chunk list in sequential batches,
// resuming from the ledger offset when the recorded position still
// matches the chunk set.
func (ing *Ingestor) ingestStrategy(ctx context.Context, strategy core.Strategy, chunks []*core.ChunkRecord, tracker *ProgressTracker) *StrategyStats {
	stats := &StrategyStats{Total: len(chunks)}
	processor := NewBatchProcessor(ing.collection, ing.embedder, ing.limiter, ing.config, ing.dryRun)

	start := ing.resumeOffset(ctx, strategy, chunks)
	if start > 0 {
		stats.Skipped += start
		tracker.Increment(start)
	}

	// The ledger tracks the contiguously committed prefix; a failed
	// batch stops it from advancing for the rest of the run.
	contiguous := true
	for offset := start; offset < len(chunks); offset += ing.config.BatchSize {
		if ctx.Err() != nil {
			ing.logger.Warn("ingestion canceled", "strategy", strategy, "offset", offset)
			return stats
		}

		end := offset + ing.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		result, err := processor.Process(ctx, batch)
		if err != nil {
			ing.logger.Error("batch failed", "strategy", strategy, "offset", offset, "size", len(batch), "err", err)
			stats.Failed += len(batch)
			contiguous = false
			tracker.Increment(len(batch))
			continue
		}

		stats.Ingested += result.Ingested
		stats.Skipped += result.Skipped
		stats.Failed += result.Failed
		stats.WouldEmbed += result.WouldEmbed
		stats.EstimatedTokens += result.EstimatedTokens
		tracker.Increment(len(batch))

		if contiguous && !ing.dryRun && result.Failed == 0 {
			if err := ing.ledger.SaveLedger(ctx, &core.Ledger{
				Collection:  ing.collectionName,
				Strategy:    strategy,
				NextOffset:  end,
				LastChunkID: batch[len(batch)-1].ID,
			}); err != nil {
				ing.logger.Warn("failed to save ledger", "strategy", strategy, "err", err)
				contiguous = false
			}
		}
	}
	return stats
}

// resumeOffset returns how many leading chunks the ledger proves are
// already committed. A ledger that no longer matches the chunk set is
// a consistency error: it is reset and the strategy falls back to
// membership checks from the beginning instead of re-embedding blindly.
func (ing *Ingestor) resumeOffset(ctx context.Context, strategy core.Strategy, chunks []*core.ChunkRecord) int {
	led, err := ing.ledger.LoadLedger(ctx, ing.collectionName, strategy)
	if err != nil {
		ing.logger.Warn("failed to load ledger", "strategy", strategy, "err", err)
		return 0
	}
	if led == nil || led.NextOffset <= 0 {
		return 0
	}
	if led.NextOffset <= len(chunks) && chunks[led.NextOffset-1].ID == led.LastChunkID {
		ing.logger.Info("resuming from ledger", "strategy", strategy, "offset", led.NextOffset)
		return led.NextOffset
	}

	ing.logger.Warn("ledger does not match chunk set, resetting",
		"strategy", strategy,
		"ledger_offset", led.NextOffset,
		"ledger_last_id", led.LastChunkID,
		"chunks", len(chunks))
	if !ing.dryRun {
		if err := ing.ledger.ResetLedger(ctx, ing.collectionName, strategy); err != nil {
			ing.logger.Warn("failed to reset ledger", "strategy", strategy, "err", err)
		}
	}
	return 0
}

func groupByStrategy(chunks []*core.ChunkRecord) map[core.Strategy][]*core.ChunkRecord {
	grouped := make(map[core.Strategy][]*core.ChunkRecord, len(core.Strategies))
	for _, chunk := range chunks {
		grouped[chunk.Strategy] = append(grouped[chunk.Strategy], chunk)
	}
	return grouped
}
