package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/btservant/tbpcorpus/ai"
	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/storage"
)

// titleSampleSize bounds how many distinct titles Stats reports.
const titleSampleSize = 10

// Searcher provides semantic search over one ingested collection.
type Searcher struct {
	collection storage.CollectionRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over the given collection.
func NewSearcher(collection storage.CollectionRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		collection: collection,
		embedder:   embedder,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Stats summarizes the collection for display.
type Stats struct {
	Total       int
	ByStrategy  map[core.Strategy]int
	Categories  []string
	TitleSample []string
}

// Stats reports entry counts, per-strategy totals, categories and a
// sample of distinct document titles.
func (s *Searcher) Stats(ctx context.Context) (*Stats, error) {
	collStats, err := s.collection.Stats(ctx)
	if err != nil {
		return nil, err
	}

	titles, err := s.sampleTitles(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Total:       collStats.Total,
		ByStrategy:  collStats.ByStrategy,
		Categories:  collStats.Categories,
		TitleSample: titles,
	}, nil
}

// Query embeds the query text and returns up to n entries ranked by
// similarity, restricted by the filter. Entries containing every query
// word verbatim are promoted ahead of purely semantic matches, keeping
// relative order within each group.
func (s *Searcher) Query(ctx context.Context, text string, n int, filter storage.Filter) ([]*core.SearchResult, error) {
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	embedding, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", text, "err", err)
		return nil, err
	}

	results, err := s.collection.FindSimilar(ctx, embedding, filter, n)
	if err != nil {
		s.logger.Error("error querying for similar entries", "err", err)
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		vi := containsAllQueryWords(results[i].Entry.Text, text)
		vj := containsAllQueryWords(results[j].Entry.Text, text)
		return vi && !vj
	})

	s.logger.Debug("query complete", "query", text, "results", len(results))
	return results, nil
}

// Get retrieves a single entry by chunk id.
func (s *Searcher) Get(ctx context.Context, id string) (*core.CollectionEntry, error) {
	return s.collection.GetEntry(ctx, id)
}

// Browse returns up to limit entries matching the filter, in key order.
func (s *Searcher) Browse(ctx context.Context, filter storage.Filter, limit int) ([]*core.CollectionEntry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	return s.collection.Browse(ctx, filter, limit)
}

// sampleTitles collects up to titleSampleSize distinct titles from the
// front of the collection.
func (s *Searcher) sampleTitles(ctx context.Context) ([]string, error) {
	entries, err := s.collection.Browse(ctx, storage.Filter{}, titleSampleSize*10)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	titles := make([]string, 0, titleSampleSize)
	for _, entry := range entries {
		title := entry.Metadata["title"]
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
		if len(titles) == titleSampleSize {
			break
		}
	}
	sort.Strings(titles)
	return titles, nil
}
