// Package jsoncache persists remote history lookups in a single JSON file
// mirrored in memory.
package jsoncache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mdoc/internal/domain"
)

const (
	// RefreshInterval bounds how often the mirror is reloaded from disk
	RefreshInterval = 5 * time.Minute

	// EntryTTL is the age past which entries are dropped on load
	EntryTTL = domain.HistoryTTL
)

// Timestamps written by older tools carry no zone
var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// fileEntry is the on-disk form of a cache entry
type fileEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// Store implements ports.HistoryStore on top of a JSON file
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	entries  map[string]domain.CacheEntry
	loadedAt time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used to report swallowed failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a store backed by the file at path. The file is read
// lazily on first use.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Load returns a copy of the cache, reading the file when the mirror is
// older than RefreshInterval. Missing or corrupt files yield an empty cache.
func (s *Store) Load() map[string]domain.CacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.loadLocked())
}

// Get returns an entry regardless of its age; callers decide freshness
func (s *Store) Get(key string) (domain.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.loadLocked()[key]
	return entry, ok
}

// Put stores data under key, stamped with the current time, and writes
// the cache through to disk
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := maps.Clone(s.loadLocked())
	entries[key] = domain.CacheEntry{
		Data:      json.RawMessage(data),
		Timestamp: s.now(),
	}
	s.saveLocked(entries)
}

// Save replaces the whole cache. Write failures are logged and swallowed;
// the mirror is updated either way.
func (s *Store) Save(entries map[string]domain.CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(maps.Clone(entries))
}

// Clear empties the mirror and deletes the backing file
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]domain.CacheEntry)
	s.loadedAt = s.now()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) loadLocked() map[string]domain.CacheEntry {
	now := s.now()
	if s.entries != nil && now.Sub(s.loadedAt) < RefreshInterval {
		return s.entries
	}

	s.entries = s.readFile(now)
	s.loadedAt = now
	return s.entries
}

func (s *Store) readFile(now time.Time) map[string]domain.CacheEntry {
	entries := make(map[string]domain.CacheEntry)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read history cache", "path", s.path, "error", err)
		}
		return entries
	}

	var raw map[string]fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("ignoring corrupt history cache", "path", s.path, "error", err)
		return entries
	}

	pruned := 0
	for key, fe := range raw {
		ts, ok := parseTimestamp(fe.Timestamp)
		entry := domain.CacheEntry{Data: fe.Data, Timestamp: ts}
		if !ok || entry.Expired(now, EntryTTL) {
			pruned++
			continue
		}
		entries[key] = entry
	}

	s.logger.Debug("history cache loaded", "entries", len(entries), "pruned", pruned)
	return entries
}

func (s *Store) saveLocked(entries map[string]domain.CacheEntry) {
	s.entries = entries
	s.loadedAt = s.now()

	if err := s.writeFile(entries); err != nil {
		s.logger.Warn("failed to write history cache", "path", s.path, "error", err)
	}
}

// writeFile replaces the cache file through a temp file and rename
func (s *Store) writeFile(entries map[string]domain.CacheEntry) error {
	raw := make(map[string]fileEntry, len(entries))
	for key, entry := range entries {
		raw[key] = fileEntry{
			Data:      entry.Data,
			Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
		}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mdoc-cache-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func parseTimestamp(value string) (time.Time, bool) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, true
	}
	for _, layout := range legacyTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
