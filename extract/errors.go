package extract

import "errors"

var (
	// ErrInvalidConfig indicates the configuration file could not be parsed.
	ErrInvalidConfig = errors.New("invalid configuration file")

	// ErrInvalidRuleTable indicates a categorization rule is malformed.
	ErrInvalidRuleTable = errors.New("invalid categorization rule table")

	// ErrInputDirMissing indicates the input directory does not exist.
	ErrInputDirMissing = errors.New("input directory does not exist")

	// ErrNoSourcesExtracted indicates every discovered source failed extraction.
	ErrNoSourcesExtracted = errors.New("no sources could be extracted")

	// ErrUnsupportedSource indicates a file type the extractor cannot read.
	ErrUnsupportedSource = errors.New("unsupported source file type")

	// ErrEmptySource indicates a source with no extractable text.
	ErrEmptySource = errors.New("source contains no extractable text")
)
