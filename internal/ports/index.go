package ports

import "mdoc/internal/domain"

// SearchIndex provides cached full-text access to the catalog.
// It is a derivative of the documentation tree and can always be rebuilt.
type SearchIndex interface {
	// Lifecycle
	Open(path string) error
	Close() error

	// Sync brings the index in line with the catalog
	Sync(docs []domain.Document, reader DocumentRepository) (*domain.SyncStats, error)

	// Queries
	GetNode(path string) (*domain.IndexNode, error)
	Search(query string, limit int) ([]domain.SearchResult, error)
	Count() (int, error)

	// Batch updates
	BeginTx() (IndexTx, error)
}

// IndexTx represents a transaction for atomic index updates
type IndexTx interface {
	UpsertNode(node *domain.IndexNode) error
	DeleteNode(path string) error

	// Transaction control
	Commit() error
	Rollback() error
}
