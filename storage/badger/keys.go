package badger

import (
	"fmt"

	"github.com/btservant/tbpcorpus/core"
)

// Key prefixes for different data types
const (
	entryPrefix      = "colent"
	strategyPrefix   = "colstr"
	ledgerPrefix     = "colled"
	collectionPrefix = "colreg"
)

// makeEntryKey generates a key for a collection entry by chunk id.
func makeEntryKey(collection, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", entryPrefix, collection, id))
}

// makeEntryScanPrefix generates the iteration prefix for a collection's entries.
func makeEntryScanPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", entryPrefix, collection))
}

// makeStrategyKey generates a composite key for the strategy index.
// Format: prefix:collection:strategy:id
func makeStrategyKey(collection string, strategy core.Strategy, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", strategyPrefix, collection, strategy, id))
}

// makeStrategyScanPrefix generates the iteration prefix for one strategy's ids.
func makeStrategyScanPrefix(collection string, strategy core.Strategy) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", strategyPrefix, collection, strategy))
}

// makeLedgerKey generates a key for a (collection, strategy) ledger entry.
func makeLedgerKey(collection string, strategy core.Strategy) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", ledgerPrefix, collection, strategy))
}

// makeCollectionKey generates a key in the collection registry.
func makeCollectionKey(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, collection))
}
