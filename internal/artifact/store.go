package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrStorageUnavailable indicates the storage root cannot be created or
// accessed. Fatal for the request, not for the process.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store owns a flat directory of generated *.pdf files. The directory
// listing plus file modification time is the entire persisted state.
// Safe for concurrent use: writers never collide (unique names) and all
// deleters tolerate the file already being gone.
type Store struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir. A ttl of zero or less disables
// expiry entirely: artifacts then live until something else removes them.
func NewStore(dir string, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, ttl: ttl, logger: logger}
}

// Dir returns the storage root.
func (s *Store) Dir() string { return s.dir }

// TTL returns the configured artifact lifetime. Zero or less means never
// expires.
func (s *Store) TTL() time.Duration { return s.ttl }

// Path returns the on-disk location for a storage name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// EnsureDir creates the storage root including parents. Idempotent.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Write persists data under name and returns the final path. The bytes
// land in a temp sibling first and move into place with a rename, so a
// concurrent reader can never observe a truncated artifact.
func (s *Store) Write(name string, data []byte) (string, error) {
	dst := s.Path(name)

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating artifact temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing artifact: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("publishing artifact: %w", err)
	}

	return dst, nil
}

// IsExpired reports whether the file at path has outlived the TTL at the
// given instant. With TTL disabled nothing ever expires. An age exactly
// equal to the TTL is not expired. A missing or unreadable file is not
// expired either; existence is the caller's concern.
func (s *Store) IsExpired(path string, now time.Time) bool {
	if s.ttl <= 0 {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return now.Sub(info.ModTime()) > s.ttl
}

// DeleteIfExists removes the file at path. A missing file is
// already-deleted success; any other failure is logged and swallowed so
// deletion never blocks or fails a caller's response.
func (s *Store) DeleteIfExists(path string) {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return
	}
	s.logger.Warn("artifact delete failed",
		"operation", "artifact_delete",
		"outcome", "failure",
		"path", path,
		"error", err.Error(),
	)
}

// Sweep deletes every expired artifact in the storage root and returns
// the number of deletions attempted. Run at process start and before
// each link-producing write, it bounds directory growth even when
// deferred deletion tasks are lost to a restart. A no-op with TTL
// disabled.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		// Nothing to sweep if the root is missing; other errors are
		// best-effort like every delete.
		if !os.IsNotExist(err) {
			s.logger.Warn("artifact sweep failed",
				"operation", "artifact_sweep",
				"outcome", "failure",
				"error", err.Error(),
			)
		}
		return 0
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		path := s.Path(entry.Name())
		if s.IsExpired(path, now) {
			s.DeleteIfExists(path)
			deleted++
		}
	}

	if deleted > 0 {
		s.logger.Info("artifact sweep completed",
			"operation", "artifact_sweep",
			"outcome", "success",
			"deleted", deleted,
		)
	}
	return deleted
}

// ScheduleDeletion arms a one-shot deletion of path after the TTL
// elapses, independent of the originating request. Fire-and-forget: no
// handle is kept and there is no cancellation, which is safe because
// deletion is idempotent and another trigger may have won already.
// A no-op with TTL disabled.
func (s *Store) ScheduleDeletion(path string) {
	if s.ttl <= 0 {
		return
	}

	time.AfterFunc(s.ttl, func() {
		s.DeleteIfExists(path)
	})
}
