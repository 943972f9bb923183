package commands

import (
	"context"

	"mdoc/internal/application"
	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// SyncIndexCommand brings the search index in line with the catalog
type SyncIndexCommand struct {
	catalog *application.Catalog
	index   ports.SearchIndex
	repo    ports.DocumentRepository
}

// NewSyncIndexCommand creates a new SyncIndexCommand
func NewSyncIndexCommand(catalog *application.Catalog, index ports.SearchIndex, repo ports.DocumentRepository) *SyncIndexCommand {
	return &SyncIndexCommand{
		catalog: catalog,
		index:   index,
		repo:    repo,
	}
}

// Execute runs the sync
func (c *SyncIndexCommand) Execute(ctx context.Context) (*domain.SyncStats, error) {
	return c.index.Sync(c.catalog.Documents(ctx), c.repo)
}
