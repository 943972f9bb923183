package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mdoc/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		BaseURL: server.URL,
		Token:   "secret",
		Timeout: 5 * time.Second,
		Logger:  logging.Discard(),
	})
}

func commitsPayload(n int) string {
	var items []string
	for i := range n {
		items = append(items, fmt.Sprintf(`{
			"sha": "%040d",
			"html_url": "https://github.com/org/repo/commit/%d",
			"commit": {"author": {"name": "Ada", "date": "2026-03-0%dT10:00:00Z"}, "message": "Change %d\n\nDetails"},
			"author": {"login": "ada"}
		}`, i, i, 1+i%9, i))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestListCommits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/org/repo/commits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("path"); got != "docs/intro.md" {
			t.Errorf("unexpected path query %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "50" {
			t.Errorf("expected per_page=50, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		fmt.Fprint(w, commitsPayload(25))
	})

	commits, err := client.ListCommits(context.Background(), "org/repo", "docs/intro.md", 20)
	if err != nil {
		t.Fatalf("ListCommits failed: %v", err)
	}
	if len(commits) != 20 {
		t.Fatalf("expected 20 commits, got %d", len(commits))
	}

	first := commits[0]
	if first.ShortHash != "0000000" || len(first.Hash) != 40 {
		t.Errorf("unexpected hashes: %s / %s", first.Hash, first.ShortHash)
	}
	if first.Message != "Change 0" {
		t.Errorf("expected first message line only, got %q", first.Message)
	}
	if first.Author != "Ada" || first.AuthorUsername != "ada" {
		t.Errorf("unexpected author: %+v", first)
	}
	if !first.Date.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", first.Date)
	}
}

func TestListCommits_MissingAuthorAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sha":"abc","commit":{"author":{"name":"Ghost","date":"2026-03-01T10:00:00Z"},"message":"x"},"author":null}]`)
	})

	commits, err := client.ListCommits(context.Background(), "org/repo", "a.md", 20)
	if err != nil {
		t.Fatalf("ListCommits failed: %v", err)
	}
	if commits[0].AuthorUsername != "" || commits[0].ShortHash != "abc" {
		t.Errorf("unexpected commit: %+v", commits[0])
	}
}

func TestFileAtRevision(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/org/repo/contents/docs/intro.md" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ref") != "abc123" {
			t.Errorf("unexpected ref %q", r.URL.Query().Get("ref"))
		}
		if r.Header.Get("Accept") != "application/vnd.github.v3.raw" {
			t.Errorf("unexpected accept header %q", r.Header.Get("Accept"))
		}
		fmt.Fprint(w, "# Intro\n")
	})

	content, err := client.FileAtRevision(context.Background(), "org/repo", "docs/intro.md", "abc123")
	if err != nil {
		t.Fatalf("FileAtRevision failed: %v", err)
	}
	if content != "# Intro\n" {
		t.Errorf("unexpected content %q", content)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"forbidden is rate limiting", http.StatusForbidden, func(err error) bool {
			return errors.Is(err, ErrRateLimited)
		}},
		{"not found", http.StatusNotFound, func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode == 404 && se.Message == "Not Found"
		}},
		{"server error", http.StatusBadGateway, func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode == 502
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message":"Not Found"}`)
			})

			_, err := client.ListCommits(context.Background(), "org/repo", "a.md", 20)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestListCommits_MalformedPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"}`)
	})

	if _, err := client.ListCommits(context.Background(), "org/repo", "a.md", 20); err == nil {
		t.Error("expected decode error")
	}
}

func TestContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.ListCommits(ctx, "org/repo", "a.md", 20); err == nil {
		t.Error("expected error for cancelled context")
	}
}
