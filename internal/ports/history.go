package ports

import (
	"context"

	"mdoc/internal/domain"
)

// HistorySource fetches revision metadata from a source hosting service
type HistorySource interface {
	// ListCommits returns the commits touching a file, newest first
	ListCommits(ctx context.Context, repo, path string, limit int) ([]domain.Commit, error)

	// FileAtRevision returns the raw content of a file at a revision
	FileAtRevision(ctx context.Context, repo, path, revision string) (string, error)
}

// HistoryStore persists remote lookups between runs.
// Implementations never fail: an unreadable store is empty.
type HistoryStore interface {
	Load() map[string]domain.CacheEntry
	Get(key string) (domain.CacheEntry, bool)
	Put(key string, data []byte)
	Save(entries map[string]domain.CacheEntry)
	Clear() error
}
