package storage

import (
	"context"

	"github.com/cespare/xxhash/v2"
)

// Cache remembers which files are already formatted, so unchanged files can
// be skipped on the next run.
type Cache interface {
	// Lookup reports whether path was recorded with exactly these hashes.
	Lookup(ctx context.Context, path string, contentHash, optionsHash uint64) (bool, error)

	// Record marks path as formatted with the given hashes.
	Record(ctx context.Context, path string, contentHash, optionsHash uint64) error

	// Forget drops any entry for path.
	Forget(ctx context.Context, path string) error

	// Prune drops every entry whose path keep rejects and returns how many
	// were dropped.
	Prune(ctx context.Context, keep func(path string) bool) (int, error)

	Close() error
}

// HashContent is the content hash stored in the cache.
func HashContent(b []byte) uint64 {
	return xxhash.Sum64(b)
}
