package badger

import (
	"context"
	"strings"

	"github.com/btservant/tbpcorpus/storage"
	"github.com/dgraph-io/badger/v4"
)

var _ storage.CollectionLister = (*Backend)(nil)

// ListCollections returns the names of all registered collections.
func (b *Backend) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	prefix := collectionPrefix + ":"

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			names = append(names, strings.TrimPrefix(key, prefix))
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return names, nil
}
