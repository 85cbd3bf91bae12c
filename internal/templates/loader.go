// Package templates renders named HTML templates against request payloads.
//
// Templates are addressed by their full filename (e.g. "proforma_invoice.html")
// and loaded through a Loader, either from the embedded set shipped with the
// binary or from a directory on disk. Rendering uses html/template with
// contextual auto-escaping plus a small set of helper functions.
package templates

import (
	"fmt"
	"strings"
)

// Loader loads template source by name. Implementations may load from
// embedded assets, the filesystem, or anything else addressable by name.
type Loader interface {
	// Load returns the template source for name.
	// Returns ErrNotFound if the template doesn't exist.
	// Returns ErrInvalidName if the name contains invalid characters.
	Load(name string) (string, error)
}

// ValidateName checks that a template name is safe to resolve to a file.
// Names carry their extension ("invoice.html"), so dots are allowed;
// separators and null bytes are not.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
