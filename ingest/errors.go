package ingest

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidConfig is returned when the ingestion config fails validation.
	ErrInvalidConfig = errors.New("invalid ingestion config")

	// ErrNoChunks is returned when the chunk set is empty.
	ErrNoChunks = errors.New("no chunks to ingest")

	// ErrEmbeddingCountMismatch is returned when the provider returns a
	// different number of vectors than texts sent.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match text count")

	// ErrNestedMetadata is returned when a chunk metadata value is a map.
	// Flattened metadata admits scalars and lists only.
	ErrNestedMetadata = errors.New("nested metadata maps are not supported")
)
