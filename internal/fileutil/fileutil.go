// Package fileutil provides filename sanitizing and file utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// FallbackName is returned by Sanitize when nothing usable survives.
const FallbackName = "document"

// invalidRun matches every run of characters outside the safe set.
var invalidRun = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Sanitize turns an arbitrary string into a filesystem-safe base name.
// Every run of characters outside [A-Za-z0-9._-] collapses to a single
// underscore, then leading and trailing '.', '_', '-' are stripped.
// Returns FallbackName if the result is empty. Total and deterministic.
func Sanitize(raw string) string {
	s := invalidRun.ReplaceAllString(raw, "_")
	s = strings.Trim(s, "._-")
	if s == "" {
		return FallbackName
	}
	return s
}

// Stem returns the last path element of p without its extension.
// Directory components are discarded, not merely ignored, so a
// traversal attempt like "../../etc/passwd.pdf" yields "passwd".
func Stem(p string) string {
	// Normalize Windows separators before splitting.
	base := filepath.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", "pdfserve-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
