package catalog

import "errors"

var (
	// ErrInvalidManifest indicates the manifest file could not be parsed.
	ErrInvalidManifest = errors.New("invalid manifest file")

	// ErrInvalidRedirect indicates a path redirection rule is malformed.
	ErrInvalidRedirect = errors.New("invalid path redirection rule")
)
