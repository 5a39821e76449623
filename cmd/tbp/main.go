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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"

	"github.com/btservant/tbpcorpus/ai"
	"github.com/btservant/tbpcorpus/ai/openai"
	"github.com/btservant/tbpcorpus/catalog"
	"github.com/btservant/tbpcorpus/chunking"
	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/extract"
	"github.com/btservant/tbpcorpus/ingest"
	"github.com/btservant/tbpcorpus/search"
	"github.com/btservant/tbpcorpus/storage"
	"github.com/btservant/tbpcorpus/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "tbp",
		Usage: "Transcript corpus pipeline: extract, chunk, ingest and query",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "extract",
				Usage:  "Extract structured records from transcript sources",
				Action: extractCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Directory of source files",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Directory for extracted records",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to categorization rules and path redirections JSON",
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "Path to download manifest JSON for URL backfill",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of files to extract concurrently",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "context-radius",
						Usage: "Characters of context captured around each reference",
						Value: extract.DefaultContextRadius,
					},
				},
			},
			{
				Name:   "chunk",
				Usage:  "Chunk extracted records with the three strategies",
				Action: chunkCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Directory of extracted records",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Directory for chunk output",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Semantic window size in words",
						Value: 800,
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Semantic window overlap in words",
						Value: 150,
					},
					&cli.IntFlag{
						Name:  "max-words",
						Usage: "Maximum words in a reference-anchored chunk",
						Value: 1200,
					},
					&cli.IntFlag{
						Name:  "min-words",
						Usage: "Minimum words in a reference-anchored chunk",
						Value: 200,
					},
					&cli.IntFlag{
						Name:  "cluster-distance",
						Usage: "Maximum word gap between references in one cluster",
						Value: 100,
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Embed chunks and load them into the vector collection",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "chunks-file",
						Usage: "Path to all_chunks_for_embedding.json",
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:  "collection-name",
						Usage: "Name of the target collection",
						Value: "bibleproject",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed per batch",
						Value: 100,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would be ingested without embedding or writing",
					},
					&cli.BoolFlag{
						Name:  "list-collections",
						Usage: "List existing collections and exit",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding requests",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "request-timeout",
						Usage: "Timeout for a single embedding request",
						Value: 30 * time.Second,
					},
					&cli.Float64Flag{
						Name:  "rate-limit",
						Usage: "Embedding requests per second",
						Value: 2,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "https://api.openai.com/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
				},
			},
			{
				Name:   "query",
				Usage:  "Query or inspect an ingested collection (read-only)",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Name of the collection to query",
						Value: "bibleproject",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "Show collection statistics",
					},
					&cli.BoolFlag{
						Name:  "list-collections",
						Usage: "List existing collections and exit",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Query text for semantic search",
					},
					&cli.IntFlag{
						Name:  "n-results",
						Usage: "Number of search results to return",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Restrict to one chunking strategy (temporal, reference, semantic)",
					},
					&cli.StringFlag{
						Name:  "book",
						Usage: "Restrict to chunks anchored on this Bible book",
					},
					&cli.IntFlag{
						Name:  "chapter",
						Usage: "Restrict to chunks anchored on this chapter (requires --book)",
					},
					&cli.IntFlag{
						Name:  "browse",
						Usage: "Browse the first N entries instead of searching",
					},
					&cli.StringFlag{
						Name:  "doc-id",
						Usage: "Fetch a single entry by chunk id",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "https://api.openai.com/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func extractCommand(c *cli.Context) error {
	ctx := context.Background()

	opts := []extract.Option{
		extract.WithWorkers(c.Int("workers")),
		extract.WithContextRadius(c.Int("context-radius")),
	}

	if configPath := c.String("config"); configPath != "" {
		_, rules, _, err := extract.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		opts = append(opts, extract.WithRules(rules))
	}

	if manifestPath := c.String("manifest"); manifestPath != "" {
		manifest, err := catalog.LoadManifest(manifestPath)
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
		opts = append(opts, extract.WithManifest(manifest))
	}

	extractor, err := extract.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	summary, err := extractor.Run(ctx, c.String("input"), c.String("output"))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Extracted %d/%d files (%d pages, %d Bible references)\n",
		summary.Extracted, summary.TotalFiles, summary.TotalPages, summary.TotalBibleRefs)
	if summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "Failed files: %d\n", summary.Failed)
	}
	return nil
}

func chunkCommand(c *cli.Context) error {
	ctx := context.Background()

	params := chunking.Params{
		SemanticSize:    c.Int("chunk-size"),
		SemanticOverlap: c.Int("overlap"),
		RefMaxWords:     c.Int("max-words"),
		RefMinWords:     c.Int("min-words"),
		ClusterDistance: c.Int("cluster-distance"),
	}

	chunker, err := chunking.New(chunking.WithParams(params))
	if err != nil {
		return fmt.Errorf("failed to create chunker: %w", err)
	}

	summary, err := chunker.Run(ctx, c.String("input"), c.String("output"))
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Chunked %d/%d records into %d chunks\n",
		summary.Processed, summary.TotalFiles, summary.TotalChunks)
	for _, strategy := range core.Strategies {
		fmt.Fprintf(os.Stderr, "  %s: %d\n", strategy, summary.ByStrategy[strategy])
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	if c.Bool("list-collections") {
		return printCollections(ctx, backend)
	}

	chunksFile := c.String("chunks-file")
	if chunksFile == "" {
		return fmt.Errorf("chunks-file is required")
	}

	collectionName := c.String("collection-name")
	collection, err := badger.NewCollectionRepository(backend, collectionName)
	if err != nil {
		return fmt.Errorf("failed to create collection repository: %w", err)
	}
	defer collection.Close()
	ledger := badger.NewLedgerRepository(backend)

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := ingest.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.MaxRetries = c.Int("max-retries")
	config.RetryDelay = c.Duration("retry-delay")
	config.RequestTimeout = c.Duration("request-timeout")
	config.RateLimit = c.Float64("rate-limit")

	ingestor, err := ingest.New(collectionName, collection, ledger, embedder,
		ingest.WithConfig(config),
		ingest.WithDryRun(c.Bool("dry-run")))
	if err != nil {
		return fmt.Errorf("invalid ingestion configuration: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Collection: %s\n", collectionName)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	summary, err := ingestor.Run(ctx, chunksFile)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Run %s: ingested %d, skipped %d, failed %d of %d chunks\n",
		summary.RunID, summary.Ingested, summary.Skipped, summary.Failed, summary.TotalChunks)
	if summary.DryRun {
		fmt.Fprintf(os.Stderr, "Dry run: ~%d tokens, estimated cost $%.4f\n",
			summary.EstimatedTokens, summary.EstimatedCostUSD)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	if c.Bool("list-collections") {
		return printCollections(ctx, backend)
	}

	collection, err := badger.NewCollectionRepository(backend, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to create collection repository: %w", err)
	}
	defer collection.Close()

	if id := c.String("doc-id"); id != "" {
		entry, err := collection.GetEntry(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch entry %s: %w", id, err)
		}
		printEntry(entry)
		return nil
	}

	filter := storage.Filter{
		Strategy: core.Strategy(c.String("strategy")),
		Book:     c.String("book"),
		Chapter:  c.Int("chapter"),
	}
	if filter.Strategy != "" && !filter.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q", filter.Strategy)
	}

	if n := c.Int("browse"); n > 0 {
		entries, err := collection.Browse(ctx, filter, n)
		if err != nil {
			return fmt.Errorf("browse failed: %w", err)
		}
		for _, entry := range entries {
			printEntry(entry)
		}
		return nil
	}

	if query := c.String("query"); query != "" {
		aiConfig := ai.NewConfig(
			ai.WithHost(c.String("embedding-host")),
			ai.WithModel(c.String("embedding-model")),
		)
		embedder, err := openai.NewEmbedder(aiConfig)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}

		searcher, err := search.NewSearcher(collection, embedder)
		if err != nil {
			return err
		}

		results, err := searcher.Query(ctx, query, c.Int("n-results"), filter)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		for i, result := range results {
			fmt.Printf("%d. [%.4f] ", i+1, result.Score)
			printEntry(result.Entry)
		}
		return nil
	}

	// Default to stats when no other mode is selected.
	searcher, err := search.NewSearcher(collection, noEmbedder{})
	if err != nil {
		return err
	}
	stats, err := searcher.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	printStats(c.String("collection"), stats)
	return nil
}

func printCollections(ctx context.Context, backend *badger.Backend) error {
	collections, err := backend.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(collections) == 0 {
		fmt.Println("No collections found")
		return nil
	}
	sort.Strings(collections)
	for _, name := range collections {
		fmt.Println(name)
	}
	return nil
}

func printStats(collection string, stats *search.Stats) {
	fmt.Printf("Collection: %s\n", collection)
	fmt.Printf("Total chunks: %d\n", stats.Total)
	for _, strategy := range core.Strategies {
		fmt.Printf("  %s: %d\n", strategy, stats.ByStrategy[strategy])
	}
	if len(stats.Categories) > 0 {
		fmt.Printf("Categories: %s\n", strings.Join(stats.Categories, ", "))
	}
	if len(stats.TitleSample) > 0 {
		fmt.Printf("Titles: %s\n", strings.Join(stats.TitleSample, ", "))
	}
}

func printEntry(entry *core.CollectionEntry) {
	text := entry.Text
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	fmt.Printf("%s (%s)\n", entry.ID, entry.Strategy)
	if ref := entry.Metadata["primary_reference"]; ref != "" {
		fmt.Printf("   reference: %s\n", ref)
	}
	if ts := entry.Metadata["start_time"]; ts != "" {
		fmt.Printf("   timestamp: %s - %s\n", ts, entry.Metadata["end_time"])
	}
	fmt.Printf("   %s\n", text)
}

// noEmbedder satisfies the searcher's embedder requirement for the
// read-only stats path, which never embeds anything.
type noEmbedder struct{}

func (noEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("no embedding service configured")
}

func (noEmbedder) EmbedTexts(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("no embedding service configured")
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
