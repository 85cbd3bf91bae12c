package templates

import (
	"embed"
	"fmt"
)

//go:embed templates/*.html
var embedded embed.FS

// EmbeddedLoader loads templates shipped inside the binary.
// Implements Loader.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Load returns an embedded template by its filename.
func (e *EmbeddedLoader) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	content, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
