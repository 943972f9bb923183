package application

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sync"
	"time"

	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// CatalogOptions configures a Catalog
type CatalogOptions struct {
	TTL       time.Duration // 0 keeps the catalog until Invalidate
	Freshness *Freshness    // nil leaves RecentlyUpdated false
	Clock     func() time.Time
	Logger    *slog.Logger
	Metrics   ports.Metrics
}

// Catalog memoizes the document catalog and answers navigation queries
// over it
type Catalog struct {
	repo ports.DocumentRepository
	opts CatalogOptions

	mu      sync.Mutex
	docs    []domain.Document
	builtAt time.Time
	valid   bool
}

// NewCatalog creates a new Catalog over repo
func NewCatalog(repo ports.DocumentRepository, opts CatalogOptions) *Catalog {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	return &Catalog{repo: repo, opts: opts}
}

// Invalidate drops the memoized catalog; the next read rebuilds it
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.docs = nil
}

// Documents returns the full sorted catalog. A failed build is logged and
// yields an empty catalog.
func (c *Catalog) Documents(ctx context.Context) []domain.Document {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Clock()
	if c.valid && (c.opts.TTL <= 0 || now.Sub(c.builtAt) < c.opts.TTL) {
		return slices.Clone(c.docs)
	}

	var recent func(string) bool
	if c.opts.Freshness != nil {
		recent = func(path string) bool {
			return c.opts.Freshness.IsRecentlyUpdated(ctx, path)
		}
	}

	start := time.Now()
	docs, err := c.repo.BuildCatalog(recent)
	c.opts.Metrics.CatalogBuilt(len(docs), time.Since(start), err)
	if err != nil {
		c.opts.Logger.Warn("failed to build catalog", "error", err)
		docs = []domain.Document{}
	} else {
		c.opts.Logger.Debug("catalog built", "documents", len(docs), "duration", time.Since(start))
	}

	c.docs = docs
	c.builtAt = now
	c.valid = true
	return slices.Clone(docs)
}

// Document returns the catalog entry for path
func (c *Catalog) Document(ctx context.Context, path string) (domain.Document, bool) {
	docs := c.Documents(ctx)
	i := slices.IndexFunc(docs, func(d domain.Document) bool { return d.Path == path })
	if i < 0 {
		return domain.Document{}, false
	}
	return docs[i], true
}

// Sections groups the catalog by section, ordered by section order
func (c *Catalog) Sections(ctx context.Context) []domain.Section {
	var sections []domain.Section
	index := make(map[string]int)

	for _, doc := range c.Documents(ctx) {
		i, ok := index[doc.Section]
		if !ok {
			i = len(sections)
			index[doc.Section] = i
			sections = append(sections, domain.Section{
				Name:  doc.Section,
				Order: doc.SectionOrder,
			})
		}
		sections[i].Documents = append(sections[i].Documents, doc)
	}

	slices.SortStableFunc(sections, func(a, b domain.Section) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return sections
}

// Section returns a single section by name
func (c *Catalog) Section(ctx context.Context, name string) (domain.Section, bool) {
	for _, section := range c.Sections(ctx) {
		if section.Name == name {
			return section, true
		}
	}
	return domain.Section{}, false
}

// Subdocuments returns the documents whose parent is parentPath, by order
func (c *Catalog) Subdocuments(ctx context.Context, parentPath string) []domain.Document {
	if parentPath == "" {
		return nil
	}

	var subdocs []domain.Document
	for _, doc := range c.Documents(ctx) {
		if doc.Parent == parentPath {
			subdocs = append(subdocs, doc)
		}
	}
	domain.SortByOrder(subdocs)
	return subdocs
}

// FirstSubdocument returns the lowest ordered child of parentPath
func (c *Catalog) FirstSubdocument(ctx context.Context, parentPath string) (domain.Document, bool) {
	subdocs := c.Subdocuments(ctx, parentPath)
	if len(subdocs) == 0 {
		return domain.Document{}, false
	}
	return subdocs[0], true
}

// SiblingNavigation returns the documents before and after path among
// the children of its parent. Top-level documents have no siblings.
func (c *Catalog) SiblingNavigation(ctx context.Context, path string) domain.Navigation {
	var nav domain.Navigation

	parent := domain.ParentPath(path)
	if parent == "" {
		return nav
	}

	siblings := c.Subdocuments(ctx, parent)
	i := slices.IndexFunc(siblings, func(d domain.Document) bool { return d.Path == path })
	if i < 0 {
		return nav
	}

	if i > 0 {
		prev := siblings[i-1]
		nav.Previous = &prev
	}
	if i < len(siblings)-1 {
		next := siblings[i+1]
		nav.Next = &next
	}
	return nav
}

// FirstDocument returns the first real document of the site, used as the
// landing page of the docs
func (c *Catalog) FirstDocument(ctx context.Context) (domain.Document, bool) {
	var first domain.Document
	found := false

	for _, doc := range c.Documents(ctx) {
		if doc.IsVirtual {
			continue
		}
		if !found || cmp.Or(
			cmp.Compare(doc.SectionOrder, first.SectionOrder),
			cmp.Compare(doc.Order, first.Order),
			cmp.Compare(doc.Path, first.Path),
		) < 0 {
			first = doc
			found = true
		}
	}
	return first, found
}

// RecentlyUpdated returns the documents flagged as recently updated, in
// catalog order
func (c *Catalog) RecentlyUpdated(ctx context.Context) []domain.Document {
	var recent []domain.Document
	for _, doc := range c.Documents(ctx) {
		if doc.RecentlyUpdated {
			recent = append(recent, doc)
		}
	}
	return recent
}

// Resolve maps a requested path to the document to show. A folder with
// no source file of its own resolves to its first subdocument.
func (c *Catalog) Resolve(ctx context.Context, raw string) (string, error) {
	path, err := SanitizePath(raw)
	if err != nil {
		return "", err
	}

	if c.repo.IsFolder(path) {
		first, ok := c.FirstSubdocument(ctx, path)
		if !ok {
			return "", fmt.Errorf("folder %s has no documents: %w", path, ErrNotFound)
		}
		return first.Path, nil
	}
	return path, nil
}

// Page loads a document with its source. The catalog entry, when there is
// one, supplies the freshness flag.
func (c *Catalog) Page(ctx context.Context, raw string) (*domain.Page, error) {
	path, err := SanitizePath(raw)
	if err != nil {
		return nil, err
	}

	page, err := c.repo.ReadDocument(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("document %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if doc, ok := c.Document(ctx, path); ok {
		page.RecentlyUpdated = doc.RecentlyUpdated
		page.Section = doc.Section
	}
	return page, nil
}
