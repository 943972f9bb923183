package application

import (
	"time"

	"mdoc/internal/domain"
)

// Re-export domain types for use by adapters
type (
	Document    = domain.Document
	Section     = domain.Section
	Page        = domain.Page
	Breadcrumb  = domain.Breadcrumb
	Navigation  = domain.Navigation
	TreeNode    = domain.TreeNode
	Commit      = domain.Commit
	Contributor = domain.Contributor
)

// Breadcrumbs returns the trail leading to a document
func Breadcrumbs(path string) []Breadcrumb {
	return domain.Breadcrumbs(path)
}

// BuildTree arranges sections into a navigation tree
func BuildTree(sections []Section) *TreeNode {
	return domain.BuildTree(sections)
}

// nopMetrics is used when no metrics sink is configured
type nopMetrics struct{}

func (nopMetrics) CatalogBuilt(int, time.Duration, error) {}
func (nopMetrics) HistoryLookup(string, domain.LookupStatus) {}
