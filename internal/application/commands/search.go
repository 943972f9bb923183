package commands

import (
	"context"
	"sort"
	"strings"

	"mdoc/internal/domain"
)

// DefaultSearchLimit caps the candidates fetched per search
const DefaultSearchLimit = 50

// SearchResult wraps domain.SearchResult with a relevance score
type SearchResult struct {
	domain.SearchResult
	Score int `json:"score"`
}

// Searcher finds candidate documents for a query
type Searcher interface {
	Search(query string, limit int) ([]domain.SearchResult, error)
}

// CatalogSearcher offers every catalog entry as a candidate, leaving the
// filtering to the fuzzy scorer. It serves when no search index is built.
type CatalogSearcher struct {
	Docs []domain.Document
}

// Search returns the catalog as search candidates
func (s CatalogSearcher) Search(query string, limit int) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(s.Docs))
	for _, doc := range s.Docs {
		results = append(results, domain.SearchResult{
			Path:        doc.Path,
			Title:       doc.Title,
			Section:     doc.Section,
			MatchedText: doc.Section + " " + doc.Title,
		})
	}
	return results, nil
}

// SearchCommand searches the documentation with fuzzy matching
type SearchCommand struct {
	searcher Searcher
	Query    string
	Limit    int
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(searcher Searcher, query string) *SearchCommand {
	return &SearchCommand{
		searcher: searcher,
		Query:    query,
		Limit:    DefaultSearchLimit,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	results, err := c.searcher.Search(c.Query, c.Limit)
	if err != nil {
		return nil, err
	}

	scored := FuzzySort(results, c.Query)
	if c.Limit > 0 && len(scored) > c.Limit {
		scored = scored[:c.Limit]
	}
	return scored, nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: chars must appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '/' || target[i-1] == '_') {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// FuzzySort scores results against the query, drops non-matches and sorts
// by relevance. Ties keep catalog order.
func FuzzySort(results []domain.SearchResult, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(results))

	for _, r := range results {
		best := max(
			FuzzyScore(r.Title, query),
			FuzzyScore(r.Path, query),
			FuzzyScore(r.MatchedText, query),
		)

		if best > 0 {
			scored = append(scored, SearchResult{
				SearchResult: r,
				Score:        best,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
