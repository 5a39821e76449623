package storage

import (
	"encoding/json"
	"fmt"

	"github.com/btservant/tbpcorpus/core"
)

// Collection entries and ledgers are stored as JSON. The interchange
// contracts between pipeline stages are JSON already, and the query
// tool needs to render stored values as-is, so one codec serves both.

// MarshalEntry serializes a CollectionEntry to bytes.
func MarshalEntry(entry *core.CollectionEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalEntry deserializes a CollectionEntry from bytes.
func UnmarshalEntry(data []byte) (*core.CollectionEntry, error) {
	var entry core.CollectionEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

// MarshalLedger serializes a Ledger to bytes.
func MarshalLedger(ledger *core.Ledger) ([]byte, error) {
	data, err := json.Marshal(ledger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalLedger deserializes a Ledger from bytes.
func UnmarshalLedger(data []byte) (*core.Ledger, error) {
	var ledger core.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &ledger, nil
}
