package application

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"mdoc/internal/adapters/jsoncache"
	"mdoc/internal/domain"
	"mdoc/internal/logging"
)

func commit(hash, user string, date time.Time) domain.Commit {
	return domain.Commit{
		Hash:           hash,
		ShortHash:      hash[:min(7, len(hash))],
		Author:         user,
		AuthorUsername: user,
		Date:           date,
		Message:        "update " + hash,
	}
}

func newTestHistory(source *fakeSource, clock *fakeClock, enabled bool) (*History, *memStore) {
	store := newMemStore(clock.Now)
	history := NewHistory(source, store, HistoryOptions{
		Repo:       "org/docs",
		Enabled:    enabled,
		Timeout:    time.Second,
		PathPrefix: "docs",
		Clock:      clock.Now,
		Logger:     logging.Discard(),
	})
	return history, store
}

func TestFetchHistory_CachedWithinWindow(t *testing.T) {
	clock := newFakeClock()
	source := &fakeSource{commits: map[string][]domain.Commit{
		"docs/intro.md": {commit("aaaaaaaaa", "ada", clock.Now())},
	}}
	history, _ := newTestHistory(source, clock, true)
	ctx := context.Background()

	first := history.FetchHistory(ctx, "docs/intro.md", "")
	clock.Advance(time.Minute)
	second := history.FetchHistory(ctx, "docs/intro.md", "")

	if source.listCalls != 1 {
		t.Errorf("expected a single remote call, got %d", source.listCalls)
	}
	if first.Status != domain.LookupFresh || second.Status != domain.LookupFresh {
		t.Errorf("expected fresh results, got %s and %s", first.Status, second.Status)
	}

	a, _ := json.Marshal(first.Value)
	b, _ := json.Marshal(second.Value)
	if string(a) != string(b) {
		t.Errorf("cached payload differs:\n%s\n%s", a, b)
	}
}

func TestFetchHistory_Disabled(t *testing.T) {
	clock := newFakeClock()
	source := &fakeSource{}
	history, store := newTestHistory(source, clock, false)

	result := history.FetchHistory(context.Background(), "docs/intro.md", "")
	if result.Status != domain.LookupEmpty {
		t.Errorf("expected empty result, got %s", result.Status)
	}
	if source.listCalls != 0 || store.puts != 0 {
		t.Error("a disabled history must not touch the remote or the cache")
	}

	noRepo := NewHistory(source, store, HistoryOptions{Enabled: true, Logger: logging.Discard()})
	if noRepo.FetchHistory(context.Background(), "docs/intro.md", "").OK() {
		t.Error("expected empty result without a repository")
	}
}

func TestFetchHistory_StaleOnRemoteFailure(t *testing.T) {
	clock := newFakeClock()
	source := &fakeSource{commits: map[string][]domain.Commit{
		"docs/intro.md": {commit("old", "ada", clock.Now())},
	}}
	history, _ := newTestHistory(source, clock, true)
	ctx := context.Background()

	history.FetchHistory(ctx, "docs/intro.md", "")

	clock.Advance(7 * time.Hour)
	source.err = errors.New("github: rate limited")

	result := history.FetchHistory(ctx, "docs/intro.md", "")
	if result.Status != domain.LookupStale {
		t.Fatalf("expected stale result, got %s", result.Status)
	}
	if len(result.Value) != 1 || result.Value[0].Hash != "old" {
		t.Errorf("expected previous value, got %+v", result.Value)
	}

	if history.FetchHistory(ctx, "docs/other.md", "").Status != domain.LookupEmpty {
		t.Error("expected empty result with nothing cached")
	}
}

func TestFetchHistory_RefreshesExpiredEntry(t *testing.T) {
	clock := newFakeClock()
	source := &fakeSource{commits: map[string][]domain.Commit{
		"docs/intro.md": {commit("old", "ada", clock.Now())},
	}}
	history, store := newTestHistory(source, clock, true)
	ctx := context.Background()

	history.FetchHistory(ctx, "docs/intro.md", "")

	clock.Advance(7 * time.Hour)
	source.commits["docs/intro.md"] = []domain.Commit{commit("new", "bob", clock.Now())}

	result := history.FetchHistory(ctx, "docs/intro.md", "")
	if result.Status != domain.LookupFresh || result.Value[0].Hash != "new" {
		t.Errorf("expected refreshed value, got %s %+v", result.Status, result.Value)
	}
	if source.listCalls != 2 || store.puts != 2 {
		t.Errorf("expected 2 remote calls and 2 writes, got %d and %d", source.listCalls, store.puts)
	}
}

func TestFetchHistory_KeepsTwentyCommits(t *testing.T) {
	clock := newFakeClock()
	var commits []domain.Commit
	for i := range 30 {
		commits = append(commits, commit(string(rune('a'+i%26))+"1234567", "ada", clock.Now().Add(-time.Duration(i)*time.Hour)))
	}
	source := &fakeSource{commits: map[string][]domain.Commit{"docs/a.md": commits}}
	history, _ := newTestHistory(source, clock, true)

	if got := len(history.FetchHistory(context.Background(), "docs/a.md", "").Value); got != domain.HistoryLimit {
		t.Errorf("expected %d commits, got %d", domain.HistoryLimit, got)
	}
}

func TestFetchFileAtRevision(t *testing.T) {
	clock := newFakeClock()
	source := &fakeSource{files: map[string]string{"docs/intro.md@abc": "# Old intro"}}
	history, _ := newTestHistory(source, clock, true)
	ctx := context.Background()

	result := history.FetchFileAtRevision(ctx, "docs/intro.md", "abc", "")
	if result.Status != domain.LookupFresh || result.Value != "# Old intro" {
		t.Fatalf("unexpected result: %+v", result)
	}

	history.FetchFileAtRevision(ctx, "docs/intro.md", "abc", "")
	if source.revisionCalls != 1 {
		t.Errorf("expected cached revision, got %d remote calls", source.revisionCalls)
	}

	// Expired revisions are not served after a failure
	clock.Advance(7 * time.Hour)
	source.err = errors.New("timeout")
	if got := history.FetchFileAtRevision(ctx, "docs/intro.md", "abc", ""); got.Status != domain.LookupEmpty {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestDocumentHistory_MergesSources(t *testing.T) {
	clock := newFakeClock()
	day := 24 * time.Hour
	source := &fakeSource{commits: map[string][]domain.Commit{
		"docs/guides/intro.md": {
			commit("c3", "ada", clock.Now().Add(-1*day)),
			commit("c1", "bob", clock.Now().Add(-5*day)),
		},
		"docs/guides/intro.html": {
			commit("c2", "cyd", clock.Now().Add(-3*day)),
			commit("c1", "bob", clock.Now().Add(-5*day)),
		},
	}}
	history, _ := newTestHistory(source, clock, true)
	ctx := context.Background()

	result := history.DocumentHistory(ctx, "guides/intro")
	var hashes []string
	for _, c := range result.Value {
		hashes = append(hashes, c.Hash)
	}
	if !slices.Equal(hashes, []string{"c3", "c2", "c1"}) {
		t.Errorf("expected merged newest-first history, got %v", hashes)
	}

	contributors := history.Contributors(ctx, "guides/intro")
	if len(contributors) != 3 || contributors[0].Username != "ada" {
		t.Errorf("unexpected contributors: %+v", contributors)
	}
	if author := history.Author(ctx, "guides/intro"); author != "bob" {
		t.Errorf("expected oldest author bob, got %q", author)
	}
	if last, ok := history.LastCommit(ctx, "guides/intro"); !ok || last.Hash != "c3" {
		t.Errorf("unexpected last commit: %+v", last)
	}
}

func TestDocumentAtRevision(t *testing.T) {
	clock := newFakeClock()
	source := &fakeSource{files: map[string]string{
		"docs/a.md@abc1234":   "# A",
		"docs/b.html@abc1234": "<p>b</p>",
	}}
	history, _ := newTestHistory(source, clock, true)
	ctx := context.Background()

	content, format, err := history.DocumentAtRevision(ctx, "a", "abc1234")
	if err != nil || content != "# A" || format != domain.FormatMarkdown {
		t.Errorf("unexpected markdown revision: %q %s %v", content, format, err)
	}

	content, format, err = history.DocumentAtRevision(ctx, "b", "abc1234")
	if err != nil || content != "<p>b</p>" || format != domain.FormatHTML {
		t.Errorf("unexpected html revision: %q %s %v", content, format, err)
	}

	if _, _, err := history.DocumentAtRevision(ctx, "c", "abc1234"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	disabled, _ := newTestHistory(source, clock, false)
	if _, _, err := disabled.DocumentAtRevision(ctx, "a", "abc1234"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestFindCommit(t *testing.T) {
	history := []domain.Commit{commit("abcdef0123", "ada", time.Now())}

	if c, ok := FindCommit(history, "abcdef0"); !ok || c.Hash != "abcdef0123" {
		t.Error("expected match by short hash")
	}
	if _, ok := FindCommit(history, "zzz"); ok {
		t.Error("expected no match")
	}
}

func TestFetchHistory_StaleWindowWithFileStore(t *testing.T) {
	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "cache.json")
	store := jsoncache.NewStore(path, jsoncache.WithClock(clock.Now), jsoncache.WithLogger(logging.Discard()))
	source := &fakeSource{commits: map[string][]domain.Commit{
		"docs/intro.md": {commit("old", "ada", clock.Now())},
	}}
	history := NewHistory(source, store, HistoryOptions{
		Repo:       "org/docs",
		Enabled:    true,
		PathPrefix: "docs",
		Clock:      clock.Now,
		Logger:     logging.Discard(),
	})
	ctx := context.Background()

	history.FetchHistory(ctx, "docs/intro.md", "")

	// Reloads the mirror while the entry is still fresh
	clock.Advance(domain.HistoryTTL - 2*time.Minute)
	if got := history.FetchHistory(ctx, "docs/intro.md", ""); got.Status != domain.LookupFresh {
		t.Fatalf("expected fresh result, got %s", got.Status)
	}
	if source.listCalls != 1 {
		t.Fatalf("expected the file cache to serve the lookup, got %d remote calls", source.listCalls)
	}

	// Expired, but the mirror has not been reloaded yet
	clock.Advance(3 * time.Minute)
	source.err = errors.New("github: rate limited")
	result := history.FetchHistory(ctx, "docs/intro.md", "")
	if result.Status != domain.LookupStale {
		t.Fatalf("expected stale result inside the mirror window, got %s", result.Status)
	}
	if len(result.Value) != 1 || result.Value[0].Hash != "old" {
		t.Errorf("expected previous value, got %+v", result.Value)
	}

	// The next reload prunes the expired entry
	clock.Advance(jsoncache.RefreshInterval)
	if got := history.FetchHistory(ctx, "docs/intro.md", ""); got.Status != domain.LookupEmpty {
		t.Errorf("expected empty result after the reload, got %s", got.Status)
	}

	reopened := NewHistory(source, jsoncache.NewStore(path, jsoncache.WithClock(clock.Now)), HistoryOptions{
		Repo:    "org/docs",
		Enabled: true,
		Clock:   clock.Now,
		Logger:  logging.Discard(),
	})
	if got := reopened.FetchHistory(ctx, "docs/intro.md", ""); got.Status != domain.LookupEmpty {
		t.Errorf("expected a fresh process to find nothing usable, got %s", got.Status)
	}
}
