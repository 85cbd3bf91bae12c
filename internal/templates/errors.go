package templates

import "errors"

// Sentinel errors for template operations.
var (
	// ErrNotFound indicates the requested template does not exist.
	// The boundary maps this to a client error; everything else in this
	// package is a server-side failure.
	ErrNotFound = errors.New("template not found")

	// ErrRender indicates the template exists but failed to parse or execute.
	ErrRender = errors.New("template rendering failed")

	// ErrInvalidName indicates the template name is empty or contains
	// path separators or null bytes.
	ErrInvalidName = errors.New("invalid template name")

	// ErrInvalidBasePath indicates the configured template directory is
	// not a valid, readable directory.
	ErrInvalidBasePath = errors.New("invalid template base path")
)
