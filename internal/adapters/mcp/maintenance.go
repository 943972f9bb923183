package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/ports"
)

// Maintenance holds what the cache maintenance tools act on. Index and
// Store may be nil, which leaves the matching tool unregistered.
type Maintenance struct {
	Catalog *application.Catalog
	Repo    ports.DocumentRepository
	Index   ports.SearchIndex
	Store   ports.HistoryStore
}

// RegisterMaintenanceTools adds tools that refresh the derived caches.
// None of them touch the documentation itself.
func RegisterMaintenanceTools(s *server.MCPServer, m Maintenance) {
	s.AddTool(refreshTool(), refreshHandler(m))
	if m.Index != nil {
		s.AddTool(syncIndexTool(), syncIndexHandler(m))
	}
	if m.Store != nil {
		s.AddTool(clearCacheTool(), clearCacheHandler(m))
	}
}

// --- refresh ---

func refreshTool() mcp.Tool {
	return mcp.NewTool("refresh",
		mcp.WithDescription("Rebuild the document catalog from disk, picking up added or removed pages."),
	)
}

func refreshHandler(m Maintenance) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m.Catalog.Invalidate()
		docs := m.Catalog.Documents(ctx)
		return mcp.NewToolResultText(fmt.Sprintf("Catalog rebuilt: %d entries.", len(docs))), nil
	}
}

// --- sync_index ---

func syncIndexTool() mcp.Tool {
	return mcp.NewTool("sync_index",
		mcp.WithDescription("Bring the full-text search index in line with the catalog."),
	)
}

func syncIndexHandler(m Maintenance) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := commands.NewSyncIndexCommand(m.Catalog, m.Index, m.Repo).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Index synced in %s: %d added, %d updated, %d removed.",
			stats.Duration.Round(time.Millisecond), stats.NodesAdded, stats.NodesUpdated, stats.NodesDeleted,
		)), nil
	}
}

// --- clear_cache ---

func clearCacheTool() mcp.Tool {
	return mcp.NewTool("clear_cache",
		mcp.WithDescription("Drop every cached history entry so the next lookup asks the remote again."),
	)
}

func clearCacheHandler(m Maintenance) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := m.Store.Clear(); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("History cache cleared."), nil
	}
}
