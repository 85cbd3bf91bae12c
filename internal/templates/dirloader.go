package templates

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirLoader loads templates from a directory on the filesystem.
// Implements Loader.
type DirLoader struct {
	basePath string
}

// NewDirLoader creates a DirLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewDirLoader(basePath string) (*DirLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &DirLoader{basePath: absPath}, nil
}

// Load returns a template from {basePath}/{name}.
// Name validation keeps lookups inside the base directory.
func (d *DirLoader) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	content, err := os.ReadFile(filepath.Join(d.basePath, name)) // #nosec G304 -- name validated above
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return "", fmt.Errorf("reading template %q: %w", name, err)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ Loader = (*DirLoader)(nil)
