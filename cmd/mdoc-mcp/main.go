package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	mcpadapter "mdoc/internal/adapters/mcp"
	"mdoc/internal/bootstrap"
	"mdoc/internal/config"
	"mdoc/internal/logging"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mdoc-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("mdoc-mcp", pflag.ExitOnError)
	configFile := flags.String("config", "", "config file (default: ./mdoc.yaml or $XDG_CONFIG_HOME/mdoc/mdoc.yaml)")
	flags.String("docs", "", "path to the docs directory")
	flags.String("repo", "", "GitHub repository holding the docs, as owner/name")
	flags.Parse(os.Args[1:])

	v := config.New()
	v.BindPFlag("docs_dir", flags.Lookup("docs"))
	v.BindPFlag("github.repo", flags.Lookup("repo"))

	cfg, err := config.Load(v, *configFile)
	if err != nil {
		return err
	}

	// stdout carries the protocol, logs go to stderr
	logger := logging.New(os.Stderr, logging.LevelFromString(cfg.Log.Level), logging.Format(cfg.Log.Format))

	a := bootstrap.New(cfg, logger, version)
	defer a.Close()

	mcpServer := server.NewMCPServer(
		"mdoc-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	maintenance := mcpadapter.Maintenance{
		Catalog: a.Catalog,
		Repo:    a.Repo,
		Store:   a.Store,
	}
	if idx, err := a.Index(); err != nil {
		logger.Warn("search index unavailable", "error", err)
	} else {
		maintenance.Index = idx
	}
	svc := mcpadapter.Services{
		Catalog:     a.Catalog,
		History:     a.History,
		Freshness:   a.Freshness,
		Searcher:    a,
		EditBaseURL: cfg.Site.EditBaseURL,
	}

	mcpadapter.RegisterReadTools(mcpServer, svc)
	mcpadapter.RegisterMaintenanceTools(mcpServer, maintenance)

	logger.Info("mdoc-mcp serving on stdio", "docs", cfg.DocsDir, "history", a.History.Enabled())
	return server.ServeStdio(mcpServer)
}
