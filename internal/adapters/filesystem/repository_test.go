package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"pgregory.net/rapid"

	"mdoc/internal/domain"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// writeTree creates files under root from a map of relative path to content
func writeTree(t fataler, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

func setupTestDocs(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"intro.md":                  "# Welcome\n\nHello.",
		"1_guides/1_install.md":     "# Installing mdoc\n",
		"1_guides/2_configure.html": "<p>configure</p>",
		"1_guides/index.html":       "<html></html>",
		"2_reference/api.md":        "no heading here",
		"misc/notes.md":             "# Notes",
		"3_other/x.md":              "# X",
		"test/a.md":                 "# A",
		"Example/b.html":            "<p>b</p>",
		"meekleboss/c.html":         "<p>c</p>",
		"notes.txt":                 "ignored",
		".git/HEAD.md":              "# hidden",
	})
	return root
}

func paths(docs []domain.Document) []string {
	var result []string
	for _, d := range docs {
		result = append(result, d.Path)
	}
	return result
}

func find(docs []domain.Document, path string) (domain.Document, bool) {
	for _, d := range docs {
		if d.Path == path {
			return d, true
		}
	}
	return domain.Document{}, false
}

func TestBuildCatalog(t *testing.T) {
	repo := NewRepository(setupTestDocs(t))

	docs, err := repo.BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	want := []string{
		"1_guides/1_install",
		"1_guides/2_configure",
		"1_guides",
		"2_reference/api",
		"2_reference",
		"intro",
	}
	if got := paths(docs); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	install, _ := find(docs, "1_guides/1_install")
	if install.Title != "Installing mdoc" {
		t.Errorf("expected heading title, got %q", install.Title)
	}
	if install.Section != "Guides" || install.SectionOrder != 1 || install.Order != 1 {
		t.Errorf("unexpected section metadata: %+v", install)
	}
	if !install.IsSubdocument || install.Parent != "1_guides" {
		t.Errorf("expected subdocument of 1_guides, got %+v", install)
	}
	if install.SourceFile != "1_guides/1_install.md" || install.Format != domain.FormatMarkdown {
		t.Errorf("unexpected source: %s (%s)", install.SourceFile, install.Format)
	}

	configure, _ := find(docs, "1_guides/2_configure")
	if configure.Title != "Configure" || configure.Format != domain.FormatHTML {
		t.Errorf("unexpected html document: %+v", configure)
	}

	api, _ := find(docs, "2_reference/api")
	if api.Title != "Api" || api.Order != domain.DefaultOrder {
		t.Errorf("unexpected fallback title or order: %+v", api)
	}

	intro, _ := find(docs, "intro")
	if intro.Section != domain.RootSection || intro.SectionOrder != domain.DefaultOrder || intro.IsSubdocument {
		t.Errorf("unexpected top-level document: %+v", intro)
	}
}

func TestBuildCatalog_VirtualEntry(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"guides/1_intro.md": "# Intro",
	})

	docs, err := NewRepository(root).BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	if got := paths(docs); !slices.Equal(got, []string{"guides/1_intro", "guides"}) {
		t.Fatalf("unexpected catalog: %v", got)
	}

	virtual := docs[1]
	if !virtual.IsVirtual || virtual.Title != "Guides" || virtual.Section != "Guides" {
		t.Errorf("unexpected virtual entry: %+v", virtual)
	}
	if virtual.IsSubdocument || virtual.Parent != "" || virtual.Order != domain.DefaultOrder {
		t.Errorf("virtual entry should be top-level: %+v", virtual)
	}
	if virtual.SourceFile != "" || virtual.RecentlyUpdated {
		t.Errorf("virtual entry should have no source: %+v", virtual)
	}
}

func TestBuildCatalog_NoVirtualWhenEntryExists(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"guides.md":           "# Guides",
		"guides/1_intro.md":   "# Intro",
		"guides/setup/mac.md": "# Mac",
		"guides/setup.md":     "# Setup",
	})

	docs, err := NewRepository(root).BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	for _, doc := range docs {
		if doc.IsVirtual {
			t.Errorf("unexpected virtual entry %s", doc.Path)
		}
	}
	if len(docs) != 4 {
		t.Errorf("expected 4 documents, got %v", paths(docs))
	}
}

func TestBuildCatalog_MarkdownWinsOverHTML(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"page.html": "<p>html</p>",
		"page.md":   "# From Markdown",
	})

	docs, err := NewRepository(root).BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected a single entry, got %v", paths(docs))
	}
	if docs[0].Format != domain.FormatMarkdown || docs[0].Title != "From Markdown" {
		t.Errorf("expected markdown source, got %+v", docs[0])
	}
}

func TestBuildCatalog_SuppressedSectionsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"MISC/a.md":         "# A",
		"Other/b.html":      "<p>b</p>",
		"2_Meekleboss/c.md": "# C",
		"TEST/d.html":       "<p>d</p>",
		"example/e.md":      "# E",
		"kept/f.md":         "# F",
	})

	docs, err := NewRepository(root).BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	if got := paths(docs); !slices.Equal(got, []string{"kept/f", "kept"}) {
		t.Errorf("expected only kept section, got %v", got)
	}
}

func TestBuildCatalog_RecentlyUpdated(t *testing.T) {
	repo := NewRepository(setupTestDocs(t))

	var asked []string
	docs, err := repo.BuildCatalog(func(path string) bool {
		asked = append(asked, path)
		return path == "intro"
	})
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	for _, doc := range docs {
		if doc.RecentlyUpdated != (doc.Path == "intro") {
			t.Errorf("%s: RecentlyUpdated = %v", doc.Path, doc.RecentlyUpdated)
		}
	}
	if slices.Contains(asked, "1_guides") {
		t.Error("virtual entries should not be checked for freshness")
	}
}

func TestBuildCatalog_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")

	docs, err := NewRepository(root).BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty catalog, got %v", paths(docs))
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Error("expected docs directory to be created")
	}
}

func TestBuildCatalog_Deterministic(t *testing.T) {
	segment := rapid.StringMatching(`([0-9]_)?[a-c]{1,2}`)

	rapid.Check(t, func(t *rapid.T) {
		root, err := os.MkdirTemp("", "mdoc-test-*")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(root)

		files := make(map[string]string)
		n := rapid.IntRange(1, 12).Draw(t, "files")
		for i := range n {
			depth := rapid.IntRange(1, 3).Draw(t, "depth")
			var parts []string
			for range depth - 1 {
				parts = append(parts, segment.Draw(t, "dir"))
			}
			ext := rapid.SampledFrom([]string{".md", ".html"}).Draw(t, "ext")
			parts = append(parts, fmt.Sprintf("%s%d%s", segment.Draw(t, "file"), i, ext))
			files[filepath.Join(parts...)] = "# Title " + rapid.StringMatching(`[A-C]`).Draw(t, "title")
		}
		writeTree(t, root, files)

		repo := NewRepository(root)
		first, err := repo.BuildCatalog(nil)
		if err != nil {
			t.Fatalf("first build failed: %v", err)
		}
		second, err := repo.BuildCatalog(nil)
		if err != nil {
			t.Fatalf("second build failed: %v", err)
		}

		if !slices.Equal(paths(first), paths(second)) {
			t.Fatalf("builds differ:\n%v\n%v", paths(first), paths(second))
		}

		seen := make(map[string]bool)
		for _, doc := range first {
			if seen[doc.Path] {
				t.Fatalf("duplicate path %s", doc.Path)
			}
			seen[doc.Path] = true
		}
		if !slices.IsSortedFunc(first, domain.CompareDocuments) {
			t.Fatalf("catalog not sorted: %v", paths(first))
		}
	})
}

func TestReadDocument(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"1_guides/2_setup.md": "---\ntitle: Ignored\ndescription: Set things up\n---\n# Setup Guide\n\nBody.",
		"legacy.html":         "<h1>Legacy</h1>",
	})
	repo := NewRepository(root)

	page, err := repo.ReadDocument("1_guides/2_setup")
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if page.Title != "Setup Guide" || page.Description != "Set things up" {
		t.Errorf("unexpected page metadata: %q / %q", page.Title, page.Description)
	}
	if page.Section != "Guides" || page.Order != 2 || page.Parent != "1_guides" {
		t.Errorf("unexpected document fields: %+v", page.Document)
	}

	html, err := repo.ReadDocument("legacy")
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if html.Format != domain.FormatHTML || html.Title != "Legacy" || html.Content != "<h1>Legacy</h1>" {
		t.Errorf("unexpected html page: %+v", html)
	}

	if _, err := repo.ReadDocument("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}
	if _, err := repo.ReadDocument("../outside"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestLastModified(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"page.md":   "# Page",
		"page.html": "<p>page</p>",
	})

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	if err := os.Chtimes(filepath.Join(root, "page.md"), older, older); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(filepath.Join(root, "page.html"), newer, newer); err != nil {
		t.Fatal(err)
	}

	repo := NewRepository(root)
	got, ok := repo.LastModified("page")
	if !ok || !got.Equal(newer) {
		t.Errorf("LastModified = %v, %v; want %v", got, ok, newer)
	}

	if _, ok := repo.LastModified("missing"); ok {
		t.Error("expected no timestamp for a missing document")
	}
}

func TestIsFolder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"guides/1_intro.md": "# Intro",
		"ref/api.md":        "# API",
		"ref.md":            "# Reference",
	})
	repo := NewRepository(root)

	if !repo.IsFolder("guides") {
		t.Error("expected guides to be a folder")
	}
	if repo.IsFolder("ref") {
		t.Error("folder with its own source file should not count")
	}
	if repo.IsFolder("guides/1_intro") {
		t.Error("a document is not a folder")
	}

	path, err := repo.FilePath("ref")
	if err != nil || path != filepath.Join(root, "ref.md") {
		t.Errorf("FilePath = %q, %v", path, err)
	}
}
