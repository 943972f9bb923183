package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mdoc/internal/domain"
)

// ErrOutsideRoot is returned for paths that escape the docs directory
var ErrOutsideRoot = errors.New("path is outside the docs directory")

// Template files that live next to the documents but are not documents
var reservedFiles = map[string]bool{
	"index.html":         true,
	"error.html":         true,
	"print.html":         true,
	"markdown_base.html": true,
}

// Sections that are never published, compared case-insensitively
var excludedSections = map[string]bool{
	"test":       true,
	"example":    true,
	"meekleboss": true,
}

// Repository implements ports.DocumentRepository using the filesystem
type Repository struct {
	root string
}

// NewRepository creates a new filesystem repository
func NewRepository(root string) *Repository {
	// Expand ~ to home directory
	if strings.HasPrefix(root, "~") {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, root[1:])
	}
	return &Repository{root: root}
}

// Root returns the docs directory
func (r *Repository) Root() string {
	return r.root
}

// BuildCatalog walks the docs directory and returns the sorted catalog.
// A missing directory is created and yields an empty catalog. Any other
// walk error aborts the build.
func (r *Repository) BuildCatalog(recent func(path string) bool) ([]domain.Document, error) {
	if _, err := os.Stat(r.root); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(r.root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create docs directory: %w", err)
		}
		return []domain.Document{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat docs directory: %w", err)
	}

	var docs []domain.Document
	index := make(map[string]int) // path -> position in docs

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden files and directories
		if path != r.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		doc, ok := r.documentFor(filepath.ToSlash(rel))
		if !ok {
			return nil
		}

		// Markdown wins when both sources exist for the same path
		if i, seen := index[doc.Path]; seen {
			if doc.Format == domain.FormatMarkdown {
				docs[i] = doc
			}
			return nil
		}
		index[doc.Path] = len(docs)
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs directory: %w", err)
	}

	if recent != nil {
		for i := range docs {
			docs[i].RecentlyUpdated = recent(docs[i].Path)
		}
	}

	docs = append(docs, virtualEntries(docs)...)
	domain.SortDocuments(docs)

	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// documentFor derives the catalog entry for a source file given its
// slash-separated path relative to the root
func (r *Repository) documentFor(rel string) (domain.Document, bool) {
	name := filepath.Base(rel)
	ext := filepath.Ext(name)

	var format domain.Format
	switch ext {
	case ".md":
		format = domain.FormatMarkdown
	case ".html":
		if reservedFiles[name] {
			return domain.Document{}, false
		}
		format = domain.FormatHTML
	default:
		return domain.Document{}, false
	}

	parent := domain.ParentPath(rel)
	stem := strings.TrimSuffix(name, ext)

	section, ok := domain.SectionOf(parent)
	if !ok || excludedSections[strings.ToLower(section)] {
		return domain.Document{}, false
	}

	title := domain.CleanTitle(stem)
	if format == domain.FormatMarkdown {
		// An unreadable file keeps its filename title
		if content, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel))); err == nil {
			title = domain.MarkdownTitle(string(content), title)
		}
	}

	return domain.Document{
		Path:          domain.JoinPath(parent, stem),
		Title:         title,
		Section:       section,
		SectionOrder:  domain.SectionOrderOf(parent),
		Order:         domain.OrderOf(stem),
		IsSubdocument: parent != "",
		Parent:        parent,
		SourceFile:    rel,
		Format:        format,
	}, true
}

// virtualEntries synthesizes one entry per folder that owns documents but
// has no entry of its own
func virtualEntries(docs []domain.Document) []domain.Document {
	existing := make(map[string]bool, len(docs))
	for _, doc := range docs {
		existing[doc.Path] = true
	}

	var virtual []domain.Document
	for _, doc := range docs {
		if !doc.IsSubdocument || existing[doc.Parent] {
			continue
		}
		existing[doc.Parent] = true

		section, ok := domain.SectionOf(doc.Parent)
		if !ok || excludedSections[strings.ToLower(section)] {
			continue
		}
		virtual = append(virtual, domain.Document{
			Path:         doc.Parent,
			Title:        domain.CleanTitle(domain.BaseName(doc.Parent)),
			Section:      section,
			SectionOrder: domain.SectionOrderOf(doc.Parent),
			Order:        domain.DefaultOrder,
			IsVirtual:    true,
		})
	}
	return virtual
}

// ReadDocument loads the source of a document. Markdown is preferred over
// HTML when both exist.
func (r *Repository) ReadDocument(path string) (*domain.Page, error) {
	for _, ext := range domain.Extensions {
		file, err := r.resolve(path + ext)
		if err != nil {
			return nil, err
		}

		content, err := os.ReadFile(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		parent := domain.ParentPath(path)
		section, _ := domain.SectionOf(parent)
		page := &domain.Page{
			Document: domain.Document{
				Path:          path,
				Title:         domain.CleanTitle(domain.BaseName(path)),
				Section:       section,
				SectionOrder:  domain.SectionOrderOf(parent),
				Order:         domain.OrderOf(domain.BaseName(path)),
				IsSubdocument: parent != "",
				Parent:        parent,
				SourceFile:    path + ext,
				Format:        domain.FormatHTML,
			},
			Content: string(content),
		}

		if ext == ".md" {
			page.Format = domain.FormatMarkdown
			page.Title = domain.MarkdownTitle(page.Content, page.Title)
			page.Description = domain.MarkdownDescription(page.Content)
		}
		return page, nil
	}

	return nil, fmt.Errorf("document %s: %w", path, fs.ErrNotExist)
}

// LastModified returns the newest modification time across the source
// files of a document
func (r *Repository) LastModified(path string) (time.Time, bool) {
	var latest time.Time
	found := false

	for _, ext := range domain.Extensions {
		file, err := r.resolve(path + ext)
		if err != nil {
			return time.Time{}, false
		}
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		if !found || info.ModTime().After(latest) {
			latest = info.ModTime()
			found = true
		}
	}

	return latest, found
}

// IsFolder reports whether path is a directory without a source file of
// its own
func (r *Repository) IsFolder(path string) bool {
	dir, err := r.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = r.FilePath(path)
	return err != nil
}

// FilePath returns the absolute path of the file backing a document
func (r *Repository) FilePath(path string) (string, error) {
	for _, ext := range domain.Extensions {
		file, err := r.resolve(path + ext)
		if err != nil {
			return "", err
		}
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return file, nil
		}
	}
	return "", fmt.Errorf("document %s: %w", path, fs.ErrNotExist)
}

// resolve maps a slash-separated document path to a location under root
func (r *Repository) resolve(path string) (string, error) {
	full := filepath.Join(r.root, filepath.FromSlash(path))

	rel, err := filepath.Rel(r.root, full)
	if err != nil {
		return "", fmt.Errorf("failed to get relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	return full, nil
}
