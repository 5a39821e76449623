package storage

import (
	"testing"

	"github.com/btservant/tbpcorpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntrySerializationRoundTrip(t *testing.T) {
	entry := &core.CollectionEntry{
		ID:       "tbp_00000000000000ab",
		Strategy: core.StrategyReference,
		Vector:   []float32{0.25, -0.5, 0.75},
		Text:     "[Genesis] God formed every animal of the field.",
		Metadata: map[string]string{
			"category":     "Book-Overviews",
			"primary_book": "Genesis",
		},
	}

	data, err := MarshalEntry(entry)
	require.NoError(t, err)

	got, err := UnmarshalEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestUnmarshalEntryCorrupt(t *testing.T) {
	_, err := UnmarshalEntry([]byte("{not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestLedgerSerializationRoundTrip(t *testing.T) {
	ledger := &core.Ledger{
		Collection:  "bibleproject",
		Strategy:    core.StrategyTemporal,
		NextOffset:  96,
		LastChunkID: "tbp_00000000000000cd",
		UpdatedAtMS: 1756684800000,
	}

	data, err := MarshalLedger(ledger)
	require.NoError(t, err)

	got, err := UnmarshalLedger(data)
	require.NoError(t, err)
	assert.Equal(t, ledger, got)
}

func TestUnmarshalLedgerCorrupt(t *testing.T) {
	_, err := UnmarshalLedger([]byte("\x00\x01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
