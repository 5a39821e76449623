package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/btservant/tbpcorpus/ai"
	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/storage"
)

// BatchResult reports what happened to one batch of chunks.
type BatchResult struct {
	// Ingested counts chunks embedded and written this batch.
	Ingested int
	// Skipped counts chunks already present in the collection.
	Skipped int
	// Failed counts chunks dropped for malformed metadata.
	Failed int
	// WouldEmbed counts chunks a dry run would have sent to the provider.
	WouldEmbed int
	// EstimatedTokens approximates the provider tokens for WouldEmbed texts.
	EstimatedTokens int
}

// BatchProcessor handles the embed-and-upsert cycle for one batch:
// membership filtering, metadata flattening, rate-limited embedding
// with retry, normalization and the collection write.
type BatchProcessor struct {
	collection storage.CollectionRepository
	embedder   ai.Embedder
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	dryRun     bool
	logger     *slog.Logger
}

// NewBatchProcessor creates a batch processor. The limiter is shared
// with every other processor targeting the same provider so the
// request rate is capped globally, not per caller.
func NewBatchProcessor(collection storage.CollectionRepository, embedder ai.Embedder, limiter *rate.Limiter, cfg *Config, dryRun bool) *BatchProcessor {
	return &BatchProcessor{
		collection: collection,
		embedder:   embedder,
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.RequestTimeout,
		dryRun:     dryRun,
		logger:     slog.Default().With("component", "batch-processor"),
	}
}

// Process ingests one batch of chunks. Chunks already present in the
// collection are skipped; the rest are embedded in a single provider
// call and upserted. In dry-run mode the provider and the collection
// are never written to.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.ChunkRecord) (*BatchResult, error) {
	result := &BatchResult{}
	if len(chunks) == 0 {
		return result, nil
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
	}
	existing, err := bp.collection.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checking existing ids: %w", err)
	}

	pending := make([]*core.ChunkRecord, 0, len(chunks))
	metadatas := make([]map[string]string, 0, len(chunks))
	for _, chunk := range chunks {
		if existing[chunk.ID] {
			result.Skipped++
			continue
		}
		flat, err := FlattenChunk(chunk)
		if err != nil {
			bp.logger.Warn("dropping chunk with malformed metadata", "id", chunk.ID, "err", err)
			result.Failed++
			continue
		}
		pending = append(pending, chunk)
		metadatas = append(metadatas, flat)
	}

	if bp.dryRun {
		result.WouldEmbed = len(pending)
		for _, chunk := range pending {
			result.EstimatedTokens += estimateTokens(chunk.Text)
		}
		return result, nil
	}

	if len(pending) == 0 {
		return result, nil
	}

	texts := make([]string, len(pending))
	for i, chunk := range pending {
		texts[i] = chunk.Text
	}

	if err := bp.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var vectors [][]float32
	embed := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, bp.timeout)
		defer cancel()

		var embedErr error
		vectors, embedErr = bp.embedder.EmbedTexts(attemptCtx, texts)
		return embedErr
	}
	if err := RetryWithBackoff(ctx, embed, bp.maxRetries, bp.retryDelay); err != nil {
		return nil, fmt.Errorf("embedding batch of %d: %w", len(texts), err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCountMismatch, len(vectors), len(texts))
	}

	entries := make([]*core.CollectionEntry, len(pending))
	for i, chunk := range pending {
		entries[i] = &core.CollectionEntry{
			ID:       chunk.ID,
			Strategy: chunk.Strategy,
			Vector:   NormalizeVector(vectors[i]),
			Text:     chunk.Text,
			Metadata: metadatas[i],
		}
	}

	if err := bp.collection.UpsertEntries(ctx, entries...); err != nil {
		return nil, fmt.Errorf("upserting batch: %w", err)
	}

	result.Ingested = len(entries)
	return result, nil
}

// estimateTokens approximates provider token usage. Four characters
// per token is the usual rule of thumb for English prose.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
