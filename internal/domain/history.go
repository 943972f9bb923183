package domain

import (
	"encoding/json"
	"time"
)

// Commit is one revision touching a document source
type Commit struct {
	Hash           string    `json:"hash"`
	ShortHash      string    `json:"short_hash"`
	Author         string    `json:"author"`
	AuthorUsername string    `json:"author_username"`
	Date           time.Time `json:"date"`
	Message        string    `json:"message"` // first line only
	URL            string    `json:"url"`
}

// Contributor is a distinct author found in a document history
type Contributor struct {
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	LastCommit time.Time `json:"last_commit"`
}

const (
	// HistoryTTL is how long a cached remote lookup stays fresh
	HistoryTTL = 6 * time.Hour

	// HistoryLimit caps the commits kept per file
	HistoryLimit = 20
)

// CacheEntry is one remote lookup persisted in the history cache file
type CacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Expired reports whether the entry is older than ttl at now
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) > ttl
}

// LookupStatus tells where a history lookup result came from
type LookupStatus int

const (
	LookupEmpty LookupStatus = iota // nothing available
	LookupFresh                     // cache hit or successful remote fetch
	LookupStale                     // expired cache value served after a remote failure
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFresh:
		return "fresh"
	case LookupStale:
		return "stale"
	default:
		return "empty"
	}
}

// LookupResult carries a remote lookup payload and its provenance
type LookupResult[T any] struct {
	Status LookupStatus
	Value  T
}

// Fresh wraps a value obtained from the cache or the remote
func Fresh[T any](v T) LookupResult[T] {
	return LookupResult[T]{Status: LookupFresh, Value: v}
}

// Stale wraps an expired cached value
func Stale[T any](v T) LookupResult[T] {
	return LookupResult[T]{Status: LookupStale, Value: v}
}

// Empty returns a result with no data
func Empty[T any]() LookupResult[T] {
	return LookupResult[T]{Status: LookupEmpty}
}

// OK reports whether the result holds any data
func (r LookupResult[T]) OK() bool {
	return r.Status != LookupEmpty
}

// HistoryKey builds the cache key for a commit list
func HistoryKey(repo, path string) string {
	return repo + ":" + path
}

// RevisionKey builds the cache key for a file at a given revision
func RevisionKey(repo, path, revision string) string {
	return repo + ":" + path + ":" + revision
}

// ContributorsOf returns the distinct authors of a history, in history order
func ContributorsOf(history []Commit) []Contributor {
	seen := make(map[string]bool)
	var contributors []Contributor
	for _, c := range history {
		if c.AuthorUsername == "" || seen[c.AuthorUsername] {
			continue
		}
		seen[c.AuthorUsername] = true
		contributors = append(contributors, Contributor{
			Username:   c.AuthorUsername,
			Name:       c.Author,
			LastCommit: c.Date,
		})
	}
	return contributors
}
