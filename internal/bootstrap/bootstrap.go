// Package bootstrap assembles the application services from configuration.
// Every binary builds its surface on top of an App.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"mdoc/internal/adapters/filesystem"
	"mdoc/internal/adapters/github"
	"mdoc/internal/adapters/jsoncache"
	"mdoc/internal/adapters/sqlite"
	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/config"
	"mdoc/internal/domain"
	"mdoc/internal/metrics"
)

// App holds the wired services
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Repo      *filesystem.Repository
	Store     *jsoncache.Store
	History   *application.History
	Freshness *application.Freshness
	Catalog   *application.Catalog

	mu    sync.Mutex
	index *sqlite.Index
}

// New wires the services described by cfg. Nothing touches the network
// or the disk until a service is used.
func New(cfg *config.Config, logger *slog.Logger, version string) *App {
	m := metrics.New(version, runtime.Version())
	repo := filesystem.NewRepository(cfg.DocsDir)
	store := jsoncache.NewStore(cfg.CacheFile, jsoncache.WithLogger(logger))

	client := github.NewClient(github.Options{
		BaseURL:           cfg.GitHub.APIURL,
		Token:             cfg.GitHub.Token,
		Timeout:           cfg.GitHub.Timeout(),
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Logger:            logger,
	})
	history := application.NewHistory(client, store, application.HistoryOptions{
		Repo:       cfg.GitHub.Repo,
		Enabled:    cfg.HistoryEnabled(),
		Timeout:    cfg.GitHub.Timeout(),
		PathPrefix: cfg.GitHub.PathPrefix,
		Logger:     logger,
		Metrics:    m,
	})
	freshness := application.NewFreshness(repo, history, cfg.RecentDays)
	catalog := application.NewCatalog(repo, application.CatalogOptions{
		TTL:       cfg.CatalogTTL(),
		Freshness: freshness,
		Logger:    logger,
		Metrics:   m,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Repo:      repo,
		Store:     store,
		History:   history,
		Freshness: freshness,
		Catalog:   catalog,
	}
}

// Index opens the search index on first use
func (a *App) Index() (*sqlite.Index, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index != nil {
		return a.index, nil
	}

	idx := sqlite.NewIndex(a.Repo.Root())
	if err := idx.Open(a.Config.IndexFile); err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	a.index = idx
	return idx, nil
}

// Searcher returns the search index when it holds documents, else a
// searcher over the in-memory catalog
func (a *App) Searcher(ctx context.Context) commands.Searcher {
	idx, err := a.Index()
	if err != nil {
		a.Logger.Warn("search index unavailable, searching titles only", "error", err)
		return commands.CatalogSearcher{Docs: a.Catalog.Documents(ctx)}
	}
	if n, err := idx.Count(); err != nil || n == 0 {
		return commands.CatalogSearcher{Docs: a.Catalog.Documents(ctx)}
	}
	return idx
}

// Search implements commands.Searcher, choosing the backend per call so a
// freshly synced index is picked up
func (a *App) Search(query string, limit int) ([]domain.SearchResult, error) {
	return a.Searcher(context.Background()).Search(query, limit)
}

// Close releases the search index
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index == nil {
		return nil
	}
	err := a.index.Close()
	a.index = nil
	return err
}
