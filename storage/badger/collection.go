package badger

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/storage"
	"github.com/dgraph-io/badger/v4"
)

// CollectionRepository implements storage.CollectionRepository for BadgerDB.
// One repository is bound to a single named collection.
type CollectionRepository struct {
	backend    *Backend
	collection string
}

var _ storage.CollectionRepository = (*CollectionRepository)(nil)

// NewCollectionRepository creates a repository bound to the named
// collection, registering the collection if it is new.
func NewCollectionRepository(backend *Backend, collection string) (storage.CollectionRepository, error) {
	if collection == "" {
		return nil, storage.ErrEmptyCollection
	}

	err := backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCollectionKey(collection), []byte{}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return &CollectionRepository{
		backend:    backend,
		collection: collection,
	}, nil
}

// Close releases the repository. The shared backend stays open.
func (r *CollectionRepository) Close() error {
	return nil
}

// UpsertEntries writes entries keyed by chunk id, replacing existing
// entries with the same id.
func (r *CollectionRepository) UpsertEntries(ctx context.Context, entries ...*core.CollectionEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			value, err := storage.MarshalEntry(entry)
			if err != nil {
				return err
			}
			if err := tx.Set(makeEntryKey(r.collection, entry.ID), value); err != nil {
				return err
			}
			// Strategy index entry carries no value; presence is enough.
			if err := tx.Set(makeStrategyKey(r.collection, entry.Strategy, entry.ID), []byte{}); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by chunk id.
func (r *CollectionRepository) GetEntry(ctx context.Context, id string) (*core.CollectionEntry, error) {
	var entry *core.CollectionEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(r.collection, id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalEntry(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ExistingIDs reports which of the given chunk ids are already present.
func (r *CollectionRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	present := make(map[string]bool, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			_, err := tx.Get(makeEntryKey(r.collection, id))
			switch err {
			case nil:
				present[id] = true
			case badger.ErrKeyNotFound:
				// absent
			default:
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return present, nil
}

// Stats returns entry counts, per-strategy counts, and distinct categories.
func (r *CollectionRepository) Stats(ctx context.Context) (*storage.CollectionStats, error) {
	stats := &storage.CollectionStats{
		ByStrategy: make(map[core.Strategy]int),
	}
	categories := make(map[string]struct{})

	err := r.forEachEntry(func(entry *core.CollectionEntry) error {
		stats.Total++
		stats.ByStrategy[entry.Strategy]++
		if cat, ok := entry.Metadata["category"]; ok && cat != "" {
			categories[cat] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for cat := range categories {
		stats.Categories = append(stats.Categories, cat)
	}
	sort.Strings(stats.Categories)

	return stats, nil
}

// Browse returns up to limit entries matching the filter, in key order.
func (r *CollectionRepository) Browse(ctx context.Context, filter storage.Filter, limit int) ([]*core.CollectionEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var entries []*core.CollectionEntry
	err := r.scanFiltered(filter, func(entry *core.CollectionEntry) error {
		if len(entries) >= limit {
			return errStopIteration
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil && err != errStopIteration {
		return nil, err
	}
	return entries, nil
}

// FindSimilar finds entries similar to the given vector, restricted by
// the filter. Similarity is the dot product, which equals cosine
// similarity for normalized vectors.
func (r *CollectionRepository) FindSimilar(ctx context.Context, vector []float32, filter storage.Filter, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SearchResult
	err := r.scanFiltered(filter, func(entry *core.CollectionEntry) error {
		if len(entry.Vector) == 0 {
			return nil
		}
		results = append(results, &core.SearchResult{
			Entry: entry,
			Score: dotProduct(vector, entry.Vector),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// errStopIteration terminates forEachEntry early without error.
var errStopIteration = errors.New("stop iteration")

// scanFiltered visits entries matching the filter. Strategy-filtered
// scans walk the strategy index and fetch each entry by id instead of
// scanning the whole collection.
func (r *CollectionRepository) scanFiltered(filter storage.Filter, fn func(entry *core.CollectionEntry) error) error {
	visit := func(entry *core.CollectionEntry) error {
		if !filter.Matches(entry) {
			return nil
		}
		return fn(entry)
	}
	if filter.Strategy != "" {
		return r.forEachStrategyEntry(filter.Strategy, visit)
	}
	return r.forEachEntry(visit)
}

// forEachStrategyEntry walks one strategy's index keys and resolves
// each to its entry. Index keys are valueless; the chunk id is the key
// suffix past the scan prefix.
func (r *CollectionRepository) forEachStrategyEntry(strategy core.Strategy, fn func(entry *core.CollectionEntry) error) error {
	prefix := makeStrategyScanPrefix(r.collection, strategy)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := string(iter.Item().Key()[len(prefix):])
			item, err := tx.Get(makeEntryKey(r.collection, id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					// Index key outlived its entry; skip it.
					continue
				}
				return err
			}
			var entry *core.CollectionEntry
			err = item.Value(func(val []byte) error {
				var unmarshalErr error
				entry, unmarshalErr = storage.UnmarshalEntry(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

func (r *CollectionRepository) forEachEntry(fn func(entry *core.CollectionEntry) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(r.collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.CollectionEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
