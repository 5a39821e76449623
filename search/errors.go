package search

import "errors"

var (
	// ErrCollectionRequired is returned when a collection repository is not provided.
	ErrCollectionRequired = errors.New("collection repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyQuery is returned when the query text is empty.
	ErrEmptyQuery = errors.New("query text cannot be empty")

	// ErrInvalidLimit is returned when the result limit is not positive.
	ErrInvalidLimit = errors.New("result limit must be greater than 0")
)
