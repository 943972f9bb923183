package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/domain"
)

// Services are the application services exposed as tools
type Services struct {
	Catalog   *application.Catalog
	History   *application.History
	Freshness *application.Freshness

	// Searcher backs the search tool. The catalog is searched when nil.
	Searcher commands.Searcher

	// EditBaseURL prefixes source files for the edit link of read
	EditBaseURL string
}

// RegisterReadTools adds all read-only documentation tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc Services) {
	s.AddTool(listTool(), listHandler(svc))
	s.AddTool(sectionsTool(), sectionsHandler(svc))
	s.AddTool(treeTool(), treeHandler(svc))
	s.AddTool(readTool(), readHandler(svc))
	s.AddTool(navTool(), navHandler(svc))
	s.AddTool(searchTool(), searchHandler(svc))
	s.AddTool(recentTool(), recentHandler(svc))
	s.AddTool(historyTool(), historyHandler(svc))
	s.AddTool(versionTool(), versionHandler(svc))
}

// --- list ---

func listTool() mcp.Tool {
	return mcp.NewTool("list",
		mcp.WithDescription("List documentation pages in navigation order. Virtual entries are folders without a page of their own."),
		mcp.WithString("section",
			mcp.Description("Section name to list (e.g. Guides). Omit to list every document."),
		),
	)
}

func listHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := commands.NewListDocumentsCommand(svc.Catalog, req.GetString("section", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(docs, formatDocument)
	}
}

// --- sections ---

func sectionsTool() mcp.Tool {
	return mcp.NewTool("sections",
		mcp.WithDescription("List documentation sections with their document counts."),
	)
}

func sectionsHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sections, err := commands.NewListSectionsCommand(svc.Catalog).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(sections, func(s domain.Section) string {
			return fmt.Sprintf("%s  (%d documents)", s.Name, len(s.Documents))
		})
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the documentation structure as a tree."),
	)
}

func treeHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, err := commands.NewBuildTreeCommand(svc.Catalog).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		renderTree(&sb, root, "")
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func renderTree(sb *strings.Builder, node *domain.TreeNode, prefix string) {
	if node.Parent != nil {
		if node.Path != "" {
			fmt.Fprintf(sb, "%s%s  %s\n", prefix, node.Name, node.Path)
		} else {
			fmt.Fprintf(sb, "%s%s\n", prefix, node.Name)
		}
		prefix += "  "
	}
	for _, child := range node.Children {
		renderTree(sb, child, prefix)
	}
}

// --- read ---

func readTool() mcp.Tool {
	return mcp.NewTool("read",
		mcp.WithDescription("Read the source of a documentation page. A folder path reads its first page."),
		mcp.WithString("path",
			mcp.Description("Document path (e.g. 1_guides/2_install)"),
			mcp.Required(),
		),
	)
}

func readHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := req.GetString("path", "")
		if err := application.ValidateRequired("path", raw); err != nil {
			return toolError(err)
		}

		path, err := svc.Catalog.Resolve(ctx, raw)
		if err != nil {
			return toolError(err)
		}
		page, err := svc.Catalog.Page(ctx, path)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Title: %s\nPath: %s\nSection: %s\nFormat: %s\n", page.Title, page.Path, page.Section, page.Format)
		if svc.Freshness != nil {
			if label, ok := svc.Freshness.LastUpdatedLabel(ctx, path); ok {
				fmt.Fprintf(&sb, "Updated: %s\n", label)
			}
		}
		if edit := domain.EditURL(svc.EditBaseURL, page.SourceFile); edit != "" {
			fmt.Fprintf(&sb, "Edit: %s\n", edit)
		}
		sb.WriteString("\n")
		sb.WriteString(page.Content)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- nav ---

func navTool() mcp.Tool {
	return mcp.NewTool("nav",
		mcp.WithDescription("Show breadcrumbs, previous and next siblings, and subdocuments of a page."),
		mcp.WithString("path",
			mcp.Description("Document path"),
			mcp.Required(),
		),
	)
}

func navHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := application.SanitizePath(req.GetString("path", ""))
		if err != nil {
			return toolError(err)
		}
		if _, ok := svc.Catalog.Document(ctx, path); !ok {
			return toolError(fmt.Errorf("document %s: %w", path, application.ErrNotFound))
		}

		var sb strings.Builder
		var crumbs []string
		for _, c := range application.Breadcrumbs(path) {
			crumbs = append(crumbs, c.Name)
		}
		fmt.Fprintf(&sb, "Breadcrumbs: %s\n", strings.Join(crumbs, " > "))

		nav := svc.Catalog.SiblingNavigation(ctx, path)
		if nav.Previous != nil {
			fmt.Fprintf(&sb, "Previous: %s\n", formatDocument(*nav.Previous))
		}
		if nav.Next != nil {
			fmt.Fprintf(&sb, "Next: %s\n", formatDocument(*nav.Next))
		}
		for _, sub := range svc.Catalog.Subdocuments(ctx, path) {
			fmt.Fprintf(&sb, "Child: %s\n", formatDocument(sub))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search documentation by keyword. Returns matching pages with their paths."),
		mcp.WithString("query",
			mcp.Description("Search query, at least two characters"),
			mcp.Required(),
		),
	)
}

func searchHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if err := application.ValidateRequired("query", query); err != nil {
			return toolError(err)
		}

		searcher := svc.Searcher
		if searcher == nil {
			searcher = commands.CatalogSearcher{Docs: svc.Catalog.Documents(ctx)}
		}
		results, err := commands.NewSearchCommand(searcher, query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  %s  %s\n", r.Path, r.Title, r.MatchedText)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- recent ---

func recentTool() mcp.Tool {
	return mcp.NewTool("recent",
		mcp.WithDescription("List recently updated pages."),
	)
}

func recentHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return formatEntities(svc.Catalog.RecentlyUpdated(ctx), formatDocument)
	}
}

// --- history ---

func historyTool() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("List the commits that touched a page, newest first."),
		mcp.WithString("path",
			mcp.Description("Document path"),
			mcp.Required(),
		),
	)
}

func historyHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := application.SanitizePath(req.GetString("path", ""))
		if err != nil {
			return toolError(err)
		}
		if !svc.History.Enabled() {
			return toolError(application.ErrDisabled)
		}

		result := svc.History.DocumentHistory(ctx, path)
		if !result.OK() {
			return mcp.NewToolResultText("No history available."), nil
		}

		var sb strings.Builder
		if result.Status == domain.LookupStale {
			sb.WriteString("(cached, remote unavailable)\n")
		}
		for _, c := range result.Value {
			fmt.Fprintf(&sb, "%s  %s  %s  %s\n", c.ShortHash, c.Date.Format("2006-01-02"), c.AuthorUsername, c.Message)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- version ---

func versionTool() mcp.Tool {
	return mcp.NewTool("version",
		mcp.WithDescription("Read a page as it was at a past revision."),
		mcp.WithString("path",
			mcp.Description("Document path"),
			mcp.Required(),
		),
		mcp.WithString("revision",
			mcp.Description("Commit hash, full or short"),
			mcp.Required(),
		),
	)
}

func versionHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := application.SanitizePath(req.GetString("path", ""))
		if err != nil {
			return toolError(err)
		}

		content, _, err := svc.History.DocumentAtRevision(ctx, path, req.GetString("revision", ""))
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(content), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatDocument(d domain.Document) string {
	line := fmt.Sprintf("%s  %s", d.Path, d.Title)
	if d.IsVirtual {
		line += "  (folder)"
	}
	if d.RecentlyUpdated {
		line += "  (updated)"
	}
	return line
}
