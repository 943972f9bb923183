package commands

import (
	"context"
	"fmt"

	"mdoc/internal/application"
	"mdoc/internal/domain"
)

// ListDocumentsCommand lists the catalog, optionally for one section
type ListDocumentsCommand struct {
	catalog *application.Catalog
	Section string
}

// NewListDocumentsCommand creates a new ListDocumentsCommand
func NewListDocumentsCommand(catalog *application.Catalog, section string) *ListDocumentsCommand {
	return &ListDocumentsCommand{
		catalog: catalog,
		Section: section,
	}
}

// Execute runs the list documents command
func (c *ListDocumentsCommand) Execute(ctx context.Context) ([]domain.Document, error) {
	if c.Section == "" {
		return c.catalog.Documents(ctx), nil
	}

	section, ok := c.catalog.Section(ctx, c.Section)
	if !ok {
		return nil, fmt.Errorf("section %q: %w", c.Section, application.ErrNotFound)
	}
	return section.Documents, nil
}

// ListSectionsCommand lists the sections of the catalog
type ListSectionsCommand struct {
	catalog *application.Catalog
}

// NewListSectionsCommand creates a new ListSectionsCommand
func NewListSectionsCommand(catalog *application.Catalog) *ListSectionsCommand {
	return &ListSectionsCommand{catalog: catalog}
}

// Execute runs the list sections command
func (c *ListSectionsCommand) Execute(ctx context.Context) ([]domain.Section, error) {
	return c.catalog.Sections(ctx), nil
}

// BuildTreeCommand builds the navigation tree
type BuildTreeCommand struct {
	catalog *application.Catalog
}

// NewBuildTreeCommand creates a new BuildTreeCommand
func NewBuildTreeCommand(catalog *application.Catalog) *BuildTreeCommand {
	return &BuildTreeCommand{catalog: catalog}
}

// Execute runs the build tree command
func (c *BuildTreeCommand) Execute(ctx context.Context) (*domain.TreeNode, error) {
	return domain.BuildTree(c.catalog.Sections(ctx)), nil
}
