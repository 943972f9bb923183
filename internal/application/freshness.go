package application

import (
	"context"
	"time"

	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// DefaultRecentDays is the default "recently updated" threshold
const DefaultRecentDays = 7

// Freshness decides how recently a document changed, preferring local
// file times over remote history
type Freshness struct {
	repo       ports.DocumentRepository
	history    *History
	recentDays int
	now        func() time.Time
}

// NewFreshness creates a new Freshness calculator. history may be nil.
func NewFreshness(repo ports.DocumentRepository, history *History, recentDays int) *Freshness {
	if recentDays < 0 {
		recentDays = DefaultRecentDays
	}
	return &Freshness{
		repo:       repo,
		history:    history,
		recentDays: recentDays,
		now:        time.Now,
	}
}

// WithClock replaces the clock, for tests
func (f *Freshness) WithClock(now func() time.Time) *Freshness {
	f.now = now
	return f
}

// LastUpdated returns when a document last changed: the newest local
// source mtime, else the date of the newest remote commit
func (f *Freshness) LastUpdated(ctx context.Context, path string) (time.Time, bool) {
	if t, ok := f.repo.LastModified(path); ok {
		return t, true
	}
	if f.history == nil {
		return time.Time{}, false
	}
	if commit, ok := f.history.LastCommit(ctx, path); ok {
		return commit.Date, true
	}
	return time.Time{}, false
}

// AgeInDays returns the whole days since the document last changed
func (f *Freshness) AgeInDays(ctx context.Context, path string) (int, bool) {
	t, ok := f.LastUpdated(ctx, path)
	if !ok {
		return 0, false
	}
	return domain.AgeInDays(t, f.now()), true
}

// IsRecentlyUpdated reports whether a document changed within the
// configured number of days
func (f *Freshness) IsRecentlyUpdated(ctx context.Context, path string) bool {
	days, ok := f.AgeInDays(ctx, path)
	return ok && domain.IsRecent(days, f.recentDays)
}

// LastUpdatedLabel returns a label such as "3 days ago". There is no
// label for documents older than two weeks or with no known timestamp.
func (f *Freshness) LastUpdatedLabel(ctx context.Context, path string) (string, bool) {
	days, ok := f.AgeInDays(ctx, path)
	if !ok {
		return "", false
	}
	return domain.UpdatedLabel(days)
}
