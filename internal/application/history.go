package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"time"

	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// Lookup kinds reported to metrics
const (
	lookupCommits  = "commits"
	lookupRevision = "revision"
)

// HistoryOptions configures remote history lookups
type HistoryOptions struct {
	Repo       string        // e.g., "org/docs"
	Enabled    bool          // remote lookups are skipped when false
	Timeout    time.Duration // per remote call, 0 for none
	PathPrefix string        // location of the docs directory inside the repo
	Clock      func() time.Time
	Logger     *slog.Logger
	Metrics    ports.Metrics
}

// History serves commit metadata through the history cache, falling back
// to the remote source on a miss
type History struct {
	source ports.HistorySource
	store  ports.HistoryStore
	opts   HistoryOptions
}

// NewHistory creates a new History service
func NewHistory(source ports.HistorySource, store ports.HistoryStore, opts HistoryOptions) *History {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	return &History{source: source, store: store, opts: opts}
}

// Enabled reports whether remote lookups are configured
func (h *History) Enabled() bool {
	return h != nil && h.opts.Enabled && h.opts.Repo != "" && h.source != nil
}

// Repo returns the configured repository
func (h *History) Repo() string {
	return h.opts.Repo
}

// FetchHistory returns the commits touching a repository file, newest
// first. A fresh cache entry is served without a remote call. When the
// remote fails, an expired entry still held by the cache is returned as
// stale. Stores that prune on reload, like jsoncache, only hold expired
// entries until their next reload, so the stale fallback lasts at most
// one mirror interval past HistoryTTL.
func (h *History) FetchHistory(ctx context.Context, path, repo string) domain.LookupResult[[]domain.Commit] {
	if repo == "" {
		repo = h.opts.Repo
	}
	if !h.Enabled() || repo == "" {
		return domain.Empty[[]domain.Commit]()
	}

	key := domain.HistoryKey(repo, path)
	cached, hasCached := h.cachedCommits(key)
	if hasCached && !cached.expired {
		h.opts.Metrics.HistoryLookup(lookupCommits, domain.LookupFresh)
		return domain.Fresh(cached.commits)
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	commits, err := h.source.ListCommits(ctx, repo, path, domain.HistoryLimit)
	if err != nil {
		h.logRemoteError("failed to fetch history", path, err)
		if hasCached {
			h.opts.Metrics.HistoryLookup(lookupCommits, domain.LookupStale)
			return domain.Stale(cached.commits)
		}
		h.opts.Metrics.HistoryLookup(lookupCommits, domain.LookupEmpty)
		return domain.Empty[[]domain.Commit]()
	}

	if commits == nil {
		commits = []domain.Commit{}
	}
	if data, err := json.Marshal(commits); err == nil {
		h.store.Put(key, data)
	}

	h.opts.Metrics.HistoryLookup(lookupCommits, domain.LookupFresh)
	return domain.Fresh(commits)
}

// FetchFileAtRevision returns the raw content of a repository file at a
// revision. Failures yield an empty result; there is no stale fallback.
func (h *History) FetchFileAtRevision(ctx context.Context, path, revision, repo string) domain.LookupResult[string] {
	if repo == "" {
		repo = h.opts.Repo
	}
	if !h.Enabled() || repo == "" {
		return domain.Empty[string]()
	}

	key := domain.RevisionKey(repo, path, revision)
	if entry, ok := h.store.Get(key); ok && !entry.Expired(h.opts.Clock(), domain.HistoryTTL) {
		var content string
		if err := json.Unmarshal(entry.Data, &content); err == nil {
			h.opts.Metrics.HistoryLookup(lookupRevision, domain.LookupFresh)
			return domain.Fresh(content)
		}
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	content, err := h.source.FileAtRevision(ctx, repo, path, revision)
	if err != nil {
		h.logRemoteError("failed to fetch file at revision", path, err, "revision", revision)
		h.opts.Metrics.HistoryLookup(lookupRevision, domain.LookupEmpty)
		return domain.Empty[string]()
	}

	if data, err := json.Marshal(content); err == nil {
		h.store.Put(key, data)
	}

	h.opts.Metrics.HistoryLookup(lookupRevision, domain.LookupFresh)
	return domain.Fresh(content)
}

// DocumentHistory merges the histories of every source file a document
// may have, newest first
func (h *History) DocumentHistory(ctx context.Context, docPath string) domain.LookupResult[[]domain.Commit] {
	if !h.Enabled() {
		return domain.Empty[[]domain.Commit]()
	}

	var merged []domain.Commit
	seen := make(map[string]bool)
	status := domain.LookupEmpty

	for _, ext := range domain.Extensions {
		result := h.FetchHistory(ctx, h.repoPath(docPath+ext), "")
		if !result.OK() {
			continue
		}
		if status != domain.LookupStale {
			status = result.Status
		}
		for _, commit := range result.Value {
			if seen[commit.Hash] {
				continue
			}
			seen[commit.Hash] = true
			merged = append(merged, commit)
		}
	}

	if status == domain.LookupEmpty {
		return domain.Empty[[]domain.Commit]()
	}

	slices.SortStableFunc(merged, func(a, b domain.Commit) int {
		return b.Date.Compare(a.Date)
	})
	return domain.LookupResult[[]domain.Commit]{Status: status, Value: merged}
}

// Contributors returns the distinct authors of a document, most recent
// first
func (h *History) Contributors(ctx context.Context, docPath string) []domain.Contributor {
	return domain.ContributorsOf(h.DocumentHistory(ctx, docPath).Value)
}

// Author returns the username behind the oldest known commit of a document
func (h *History) Author(ctx context.Context, docPath string) string {
	history := h.DocumentHistory(ctx, docPath).Value
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].AuthorUsername
}

// LastCommit returns the newest commit of a document
func (h *History) LastCommit(ctx context.Context, docPath string) (domain.Commit, bool) {
	history := h.DocumentHistory(ctx, docPath).Value
	if len(history) == 0 {
		return domain.Commit{}, false
	}
	return history[0], true
}

// DocumentAtRevision returns a document source as it was at revision,
// trying Markdown before HTML
func (h *History) DocumentAtRevision(ctx context.Context, docPath, revision string) (string, domain.Format, error) {
	if !h.Enabled() {
		return "", "", ErrDisabled
	}
	if err := ValidateRevision(revision); err != nil {
		return "", "", err
	}

	for _, format := range []domain.Format{domain.FormatMarkdown, domain.FormatHTML} {
		result := h.FetchFileAtRevision(ctx, h.repoPath(docPath+format.Extension()), revision, "")
		if result.OK() && result.Value != "" {
			return result.Value, format, nil
		}
	}
	return "", "", ErrNotFound
}

// FindCommit returns the commit of a document history matching revision,
// by full or short hash
func FindCommit(history []domain.Commit, revision string) (domain.Commit, bool) {
	i := slices.IndexFunc(history, func(c domain.Commit) bool {
		return c.Hash == revision || c.ShortHash == revision
	})
	if i < 0 {
		return domain.Commit{}, false
	}
	return history[i], true
}

type cachedCommits struct {
	commits []domain.Commit
	expired bool
}

func (h *History) cachedCommits(key string) (cachedCommits, bool) {
	entry, ok := h.store.Get(key)
	if !ok {
		return cachedCommits{}, false
	}

	var commits []domain.Commit
	if err := json.Unmarshal(entry.Data, &commits); err != nil {
		h.opts.Logger.Warn("ignoring unreadable history cache entry", "key", key, "error", err)
		return cachedCommits{}, false
	}
	return cachedCommits{
		commits: commits,
		expired: entry.Expired(h.opts.Clock(), domain.HistoryTTL),
	}, true
}

func (h *History) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.opts.Timeout)
}

func (h *History) repoPath(file string) string {
	return domain.JoinPath(h.opts.PathPrefix, file)
}

// logRemoteError reports a swallowed remote failure. Cancellation by the
// caller is not worth a warning.
func (h *History) logRemoteError(msg, path string, err error, args ...any) {
	level := slog.LevelWarn
	if errors.Is(err, context.Canceled) {
		level = slog.LevelDebug
	}
	h.opts.Logger.Log(context.Background(), level, msg, append([]any{"path", path, "error", err}, args...)...)
}
