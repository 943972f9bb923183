package domain

import "time"

// IndexNode represents a catalog document persisted in the search index
type IndexNode struct {
	Path         string // Document path (primary key)
	Title        string
	Section      string
	SectionOrder int
	Order        int
	Parent       string
	IsVirtual    bool
	Body         string // Source text, empty for virtual entries
	Mtime        int64  // Unix nanoseconds for incremental sync
}

// SearchResult represents a search match
type SearchResult struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Section     string `json:"section"`
	MatchedText string `json:"matched_text"` // Snippet around the match
}

// SyncStats holds statistics from a sync operation
type SyncStats struct {
	NodesAdded   int
	NodesUpdated int
	NodesDeleted int
	FilesScanned int
	Duration     time.Duration
}
