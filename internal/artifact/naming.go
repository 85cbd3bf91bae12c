// Package artifact owns the directory of generated PDF files: naming,
// writes, TTL-based expiry, and race-safe deletion.
//
// The filesystem is the only index. Every consumer of the directory
// (the eager sweep, deferred deletion tasks, the download path) is
// idempotent against concurrent deletion, so no coordination structure
// is needed beyond unique storage names.
package artifact

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/alnah/go-pdfserve/internal/fileutil"
)

// storageTimeLayout is a fixed-width, lexicographically sortable UTC token.
const storageTimeLayout = "20060102T150405Z"

// suffixBytes is the amount of randomness in a storage name. Five bytes
// (ten hex characters) makes collisions negligible even for identical
// base names written in the same second.
const suffixBytes = 5

// PickBaseName derives the human-meaningful part of an artifact name.
// Priority: the stem of an explicit filename override, then the payload's
// invoice.number field, then the template's stem. Directory components in
// the override are discarded outright, and the winner is sanitized, so the
// result can never escape the storage root.
//
// This is the single place the pipeline peeks into the payload; everything
// else treats it as opaque.
func PickBaseName(payload map[string]any, templateName, explicit string) string {
	if explicit != "" {
		return fileutil.Sanitize(fileutil.Stem(explicit))
	}

	if inv, ok := payload["invoice"].(map[string]any); ok {
		if num, ok := inv["number"].(string); ok && num != "" {
			return fileutil.Sanitize(num)
		}
	}

	return fileutil.Sanitize(fileutil.Stem(templateName))
}

// BuildStorageName appends a UTC timestamp and a short random hex suffix
// to base, plus the .pdf extension. Names are unique even for identical
// bases arriving concurrently.
func BuildStorageName(base string, now time.Time) (string, error) {
	suffix := make([]byte, suffixBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generating storage name suffix: %w", err)
	}

	return fmt.Sprintf("%s-%s-%s.pdf",
		base,
		now.UTC().Format(storageTimeLayout),
		hex.EncodeToString(suffix),
	), nil
}
