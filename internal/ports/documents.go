package ports

import (
	"time"

	"mdoc/internal/domain"
)

// DocumentRepository defines the interface for reading the documentation tree
type DocumentRepository interface {
	// BuildCatalog walks the tree and returns every document, sorted.
	// recent reports whether a document path counts as recently updated.
	BuildCatalog(recent func(path string) bool) ([]domain.Document, error)

	// ReadDocument loads the source of a document by its logical path
	ReadDocument(path string) (*domain.Page, error)

	// LastModified returns the newest mtime across the known extensions
	LastModified(path string) (time.Time, bool)

	// IsFolder reports whether the path names a directory with no source file
	IsFolder(path string) bool

	// FilePath returns the absolute path of the source file backing a document
	FilePath(path string) (string, error)
}
