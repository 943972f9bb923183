package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"time"

	"mdoc/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeRepo implements ports.DocumentRepository in memory
type fakeRepo struct {
	docs    []domain.Document
	err     error
	builds  int
	mtimes  map[string]time.Time
	folders map[string]bool
	pages   map[string]string
}

func (r *fakeRepo) BuildCatalog(recent func(path string) bool) ([]domain.Document, error) {
	r.builds++
	if r.err != nil {
		return nil, r.err
	}
	docs := slices.Clone(r.docs)
	for i := range docs {
		if recent != nil && !docs[i].IsVirtual {
			docs[i].RecentlyUpdated = recent(docs[i].Path)
		}
	}
	domain.SortDocuments(docs)
	return docs, nil
}

func (r *fakeRepo) ReadDocument(path string) (*domain.Page, error) {
	content, ok := r.pages[path]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", path, fs.ErrNotExist)
	}
	return &domain.Page{
		Document: domain.Document{Path: path, Title: domain.CleanTitle(domain.BaseName(path))},
		Content:  content,
	}, nil
}

func (r *fakeRepo) LastModified(path string) (time.Time, bool) {
	t, ok := r.mtimes[path]
	return t, ok
}

func (r *fakeRepo) IsFolder(path string) bool {
	return r.folders[path]
}

func (r *fakeRepo) FilePath(path string) (string, error) {
	if _, ok := r.pages[path]; ok {
		return "/docs/" + path + ".md", nil
	}
	return "", fs.ErrNotExist
}

// fakeSource implements ports.HistorySource with call counters
type fakeSource struct {
	commits       map[string][]domain.Commit // by repository file path
	files         map[string]string          // by "path@revision"
	err           error
	listCalls     int
	revisionCalls int
}

func (s *fakeSource) ListCommits(ctx context.Context, repo, path string, limit int) ([]domain.Commit, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	commits := s.commits[path]
	if len(commits) > limit {
		commits = commits[:limit]
	}
	return slices.Clone(commits), nil
}

func (s *fakeSource) FileAtRevision(ctx context.Context, repo, path, revision string) (string, error) {
	s.revisionCalls++
	if s.err != nil {
		return "", s.err
	}
	content, ok := s.files[path+"@"+revision]
	if !ok {
		return "", errors.New("404")
	}
	return content, nil
}

// memStore implements ports.HistoryStore without a backing file
type memStore struct {
	entries map[string]domain.CacheEntry
	now     func() time.Time
	puts    int
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{entries: make(map[string]domain.CacheEntry), now: now}
}

func (s *memStore) Load() map[string]domain.CacheEntry { return maps.Clone(s.entries) }

func (s *memStore) Get(key string) (domain.CacheEntry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

func (s *memStore) Put(key string, data []byte) {
	s.puts++
	s.entries[key] = domain.CacheEntry{Data: data, Timestamp: s.now()}
}

func (s *memStore) Save(entries map[string]domain.CacheEntry) { s.entries = maps.Clone(entries) }

func (s *memStore) Clear() error {
	s.entries = make(map[string]domain.CacheEntry)
	return nil
}

func sampleDocs() []domain.Document {
	guide := func(path, title string, order int) domain.Document {
		return domain.Document{
			Path: path, Title: title, Section: "Guides", SectionOrder: 1, Order: order,
			IsSubdocument: true, Parent: "1_guides",
		}
	}
	return []domain.Document{
		{Path: "intro", Title: "Intro", Section: domain.RootSection, SectionOrder: 999, Order: 999},
		guide("1_guides/3_deploy", "Deploy", 3),
		guide("1_guides/1_install", "Install", 1),
		guide("1_guides/2_configure", "Configure", 2),
		{Path: "1_guides", Title: "Guides", Section: "Guides", SectionOrder: 1, Order: 999, IsVirtual: true},
		{
			Path: "2_reference/api", Title: "Api", Section: "Reference", SectionOrder: 2, Order: 999,
			IsSubdocument: true, Parent: "2_reference",
		},
		{Path: "2_reference", Title: "Reference", Section: "Reference", SectionOrder: 2, Order: 999, IsVirtual: true},
	}
}
