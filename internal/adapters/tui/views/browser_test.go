package views

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mdoc/internal/adapters/filesystem"
	"mdoc/internal/application"
	"mdoc/internal/domain"
	"mdoc/internal/logging"
)

func setupCatalog(t *testing.T) *application.Catalog {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"intro.md":              "# Intro\n\nWelcome.",
		"1_guides/1_install.md": "# Install\n\nRun the installer.",
		"1_guides/2_upgrade.md": "# Upgrade\n\nRun the upgrader.",
		"2_reference/api.md":    "# API",
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
	return application.NewCatalog(repo, application.CatalogOptions{Logger: logging.Discard()})
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func loadedBrowser(t *testing.T) *BrowserModel {
	t.Helper()
	m := NewBrowserModel(setupCatalog(t), "Docs")
	m.Update(m.Init()())
	if m.root == nil {
		t.Fatal("tree not loaded")
	}
	return m
}

func names(nodes []*domain.TreeNode) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBrowser_SectionsStartExpanded(t *testing.T) {
	m := loadedBrowser(t)

	got := strings.Join(names(m.flatNodes), ",")
	want := "Guides,Guides,Reference,Reference,Documentation,Intro"
	if got != want {
		t.Errorf("visible nodes = %s, want %s", got, want)
	}
}

func TestBrowser_ExpandAndOpen(t *testing.T) {
	m := loadedBrowser(t)

	m.Update(keyPress("j"))
	m.Update(keyPress("l"))
	if len(m.flatNodes) != 8 {
		t.Fatalf("expected 8 visible nodes after expanding, got %d", len(m.flatNodes))
	}

	m.Update(keyPress("j"))
	_, cmd := m.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(OpenDocumentMsg)
	if !ok || msg.Path != "1_guides/1_install" {
		t.Errorf("expected OpenDocumentMsg for install, got %#v", msg)
	}
}

func TestBrowser_EnterTogglesSection(t *testing.T) {
	m := loadedBrowser(t)

	_, cmd := m.Update(keyPress("enter"))
	if cmd != nil {
		t.Error("toggling a section should not return a command")
	}
	if len(m.flatNodes) != 5 {
		t.Errorf("expected 5 visible nodes after collapsing Guides, got %d", len(m.flatNodes))
	}
}

func TestBrowser_LeftGoesToParent(t *testing.T) {
	m := loadedBrowser(t)

	m.SelectPath("1_guides/2_upgrade")
	if node := m.selectedNode(); node == nil || node.Path != "1_guides/2_upgrade" {
		t.Fatalf("SelectPath did not select upgrade: %+v", node)
	}

	m.Update(keyPress("h"))
	if node := m.selectedNode(); node.Path != "1_guides" {
		t.Errorf("expected cursor on folder, got %q", node.Path)
	}
	m.Update(keyPress("h"))
	if node := m.selectedNode(); node.Path != "1_guides" || node.IsExpanded {
		t.Errorf("expected folder to collapse, got %+v", node)
	}
}

func TestBrowser_ReloadKeepsExpansion(t *testing.T) {
	m := loadedBrowser(t)
	m.SelectPath("2_reference/api")
	before := len(m.flatNodes)

	m.Update(m.Reload()())
	if len(m.flatNodes) != before {
		t.Errorf("expected %d visible nodes after reload, got %d", before, len(m.flatNodes))
	}
}

func TestBrowser_View(t *testing.T) {
	m := loadedBrowser(t)
	view := m.View()

	for _, want := range []string{"Docs", "4 documents in 3 sections", "Intro"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Install") {
		t.Error("children of a collapsed folder should not be shown")
	}
}

func TestBrowser_SearchAndHelpKeys(t *testing.T) {
	m := loadedBrowser(t)

	_, cmd := m.Update(keyPress("/"))
	if _, ok := cmd().(SwitchToSearchMsg); !ok {
		t.Error("expected SwitchToSearchMsg")
	}
	_, cmd = m.Update(keyPress("?"))
	if _, ok := cmd().(SwitchToHelpMsg); !ok {
		t.Error("expected SwitchToHelpMsg")
	}
}
