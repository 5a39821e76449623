package storage

import (
	"context"
	"strconv"

	"github.com/btservant/tbpcorpus/core"
)

// Filter restricts collection reads to entries whose flattened metadata
// matches every set field. The zero value matches everything.
type Filter struct {
	Strategy core.Strategy
	Book     string
	Chapter  int // 0 means any chapter
}

// Matches reports whether an entry satisfies the filter.
func (f Filter) Matches(entry *core.CollectionEntry) bool {
	if f.Strategy != "" && entry.Strategy != f.Strategy {
		return false
	}
	if f.Book != "" && entry.Metadata["primary_book"] != f.Book {
		return false
	}
	if f.Chapter != 0 {
		if entry.Metadata["primary_chapter"] != strconv.Itoa(f.Chapter) {
			return false
		}
	}
	return true
}

// CollectionStats summarizes a collection's contents.
type CollectionStats struct {
	Total      int
	ByStrategy map[core.Strategy]int
	Categories []string
}

// CollectionRepository provides operations over one named vector
// collection. Implementations must be thread-safe and support
// concurrent access.
type CollectionRepository interface {
	// UpsertEntries writes entries keyed by chunk id. Existing entries
	// with the same id are replaced, never duplicated.
	UpsertEntries(ctx context.Context, entries ...*core.CollectionEntry) error

	// GetEntry retrieves a single entry by chunk id.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id string) (*core.CollectionEntry, error)

	// ExistingIDs reports which of the given chunk ids are already
	// present in the collection.
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)

	// Stats returns entry counts, per-strategy counts and the distinct
	// category labels seen in entry metadata.
	Stats(ctx context.Context) (*CollectionStats, error)

	// Browse returns up to limit entries matching the filter, in key order.
	Browse(ctx context.Context, filter Filter, limit int) ([]*core.CollectionEntry, error)

	// FindSimilar finds entries similar to the given vector, restricted
	// by the filter. Results are ordered by similarity score (highest
	// first), up to limit results. Vectors are assumed normalized.
	FindSimilar(ctx context.Context, vector []float32, filter Filter, limit int) ([]*core.SearchResult, error)

	// Close closes the repository and releases resources.
	Close() error
}

// LedgerRepository persists per-strategy ingestion progress. It is
// read and written only by the ingestor.
type LedgerRepository interface {
	// SaveLedger persists a ledger entry atomically. Callers invoke it
	// only after the corresponding batch is confirmed in the collection.
	SaveLedger(ctx context.Context, ledger *core.Ledger) error

	// LoadLedger retrieves the ledger for a (collection, strategy) pair.
	// Returns nil, nil if no ledger exists.
	LoadLedger(ctx context.Context, collection string, strategy core.Strategy) (*core.Ledger, error)

	// ResetLedger removes the ledger entry for a (collection, strategy)
	// pair, forcing a membership re-check on the next run.
	ResetLedger(ctx context.Context, collection string, strategy core.Strategy) error
}

// CollectionLister enumerates the collections present in a store.
type CollectionLister interface {
	// ListCollections returns the names of all known collections.
	ListCollections(ctx context.Context) ([]string, error)
}
