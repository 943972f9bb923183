package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupDocs(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	docs := filepath.Join(dir, "docs")
	files := map[string]string{
		"intro.md":              "# Intro\n\nWelcome.",
		"1_guides/1_install.md": "# Install\n\nRun the installer.",
		"1_guides/2_upgrade.md": "# Upgrade\n\nBack up first.",
	}
	for rel, content := range files {
		path := filepath.Join(docs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return docs
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flags are package globals; reset the ones tests touch
	listSection = ""
	jsonOutput = false
	showRender = false
	app = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "-q"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	docs := setupDocs(t)

	out, err := run(t, "list", "--docs", docs)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"1_guides/1_install", "1_guides", "[folder]", "intro"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = run(t, "list", "--docs", docs, "--section", "Guides")
	if err != nil {
		t.Fatalf("list --section failed: %v", err)
	}
	if strings.Contains(out, "intro") {
		t.Errorf("section filter leaked other sections:\n%s", out)
	}
}

func TestShowCommand(t *testing.T) {
	docs := setupDocs(t)

	out, err := run(t, "show", "1_guides", "--docs", docs)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if out != "# Install\n\nRun the installer." {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "show", "missing", "--docs", docs); err == nil {
		t.Error("expected error for a missing document")
	}
}

func TestNavCommand(t *testing.T) {
	docs := setupDocs(t)

	out, err := run(t, "nav", "1_guides/1_install", "--docs", docs)
	if err != nil {
		t.Fatalf("nav failed: %v", err)
	}
	if !strings.Contains(out, "Guides › Install") || !strings.Contains(out, "→ Upgrade (1_guides/2_upgrade)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHistoryCommand_Disabled(t *testing.T) {
	docs := setupDocs(t)

	_, err := run(t, "history", "intro", "--docs", docs)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Errorf("expected disabled error, got %v", err)
	}
}

func TestSearchAndIndexCommands(t *testing.T) {
	docs := setupDocs(t)

	out, err := run(t, "search", "installer", "--docs", docs)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "No results found") {
		t.Errorf("body text should not match before indexing:\n%s", out)
	}

	if out, err = run(t, "index", "--docs", docs); err != nil {
		t.Fatalf("index failed: %v", err)
	}
	if !strings.Contains(out, "4 added") {
		t.Errorf("unexpected index output:\n%s", out)
	}

	out, err = run(t, "search", "installer", "--docs", docs)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "1_guides/1_install") {
		t.Errorf("expected indexed body match:\n%s", out)
	}

	out, err = run(t, "search", "installer", "--json", "--docs", docs)
	if err != nil {
		t.Fatalf("search --json failed: %v", err)
	}
	for _, key := range []string{`"path": "1_guides/1_install"`, `"matched_text": `, `"score": `} {
		if !strings.Contains(out, key) {
			t.Errorf("expected %s in JSON output:\n%s", key, out)
		}
	}
}
