package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mdoc/internal/adapters/filesystem"
	"mdoc/internal/adapters/tui/views"
	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/logging"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"intro.md":              "# Intro\n\nWelcome aboard.",
		"1_guides/1_install.md": "# Install",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	repo := filesystem.NewRepository(root)
	catalog := application.NewCatalog(repo, application.CatalogOptions{Logger: logging.Discard()})
	app := NewApp(Services{
		Catalog:  catalog,
		Searcher: commands.CatalogSearcher{Docs: catalog.Documents(context.Background())},
		Repo:     repo,
		Title:    "Test Docs",
	})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app.Update(app.Init()())
	return app
}

// send delivers msg and then every message its command chain produces
func send(app *App, msg tea.Msg) {
	for msg != nil {
		_, cmd := app.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		if _, ok := msg.(tea.BatchMsg); ok {
			return
		}
	}
}

func key(k string) tea.KeyMsg {
	if k == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestApp_ReaderAndBack(t *testing.T) {
	app := newTestApp(t)
	if !strings.Contains(app.View(), "Test Docs") {
		t.Fatalf("expected browser view, got:\n%s", app.View())
	}

	send(app, views.OpenDocumentMsg{Path: "intro"})
	if app.State() != ViewReader {
		t.Fatalf("expected reader, got %v", app.State())
	}
	if !strings.Contains(app.View(), "Welcome aboard") {
		t.Errorf("reader does not show the document:\n%s", app.View())
	}

	send(app, key("esc"))
	if app.State() != ViewBrowser {
		t.Errorf("expected browser after esc, got %v", app.State())
	}
}

func TestApp_HelpReturnsToPreviousView(t *testing.T) {
	app := newTestApp(t)
	send(app, views.OpenDocumentMsg{Path: "intro"})

	send(app, key("?"))
	if app.State() != ViewHelp {
		t.Fatalf("expected help, got %v", app.State())
	}

	send(app, key("esc"))
	if app.State() != ViewReader {
		t.Errorf("expected reader after closing help, got %v", app.State())
	}
}

func TestApp_SearchCancel(t *testing.T) {
	app := newTestApp(t)

	// Opening search starts the cursor blink loop, so stop after the switch
	_, cmd := app.Update(key("/"))
	app.Update(cmd())
	if app.State() != ViewSearch {
		t.Fatalf("expected search, got %v", app.State())
	}

	send(app, key("esc"))
	if app.State() != ViewBrowser {
		t.Errorf("expected browser after cancel, got %v", app.State())
	}
}

func TestApp_EditorFailureIsShown(t *testing.T) {
	app := newTestApp(t)

	app.Update(editorFinishedMsg{err: errors.New("no editor found")})
	if !strings.Contains(app.View(), "no editor found") {
		t.Errorf("expected editor error in view:\n%s", app.View())
	}
}

func TestApp_EditWithoutEditor(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(views.EditDocumentMsg{})
	if cmd != nil {
		t.Error("expected no command without an editor")
	}
}
