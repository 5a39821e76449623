package chunking

import "errors"

var (
	// ErrInvalidParams indicates inconsistent chunking parameters.
	ErrInvalidParams = errors.New("invalid chunking parameters")

	// ErrExtractedDirMissing indicates the extracted records directory does not exist.
	ErrExtractedDirMissing = errors.New("extracted directory does not exist")

	// ErrNoRecordsChunked indicates every record failed to chunk.
	ErrNoRecordsChunked = errors.New("no records could be chunked")
)
