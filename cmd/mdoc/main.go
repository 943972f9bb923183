package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"mdoc/internal/adapters/browser"
	"mdoc/internal/adapters/editor"
	"mdoc/internal/adapters/tui"
	"mdoc/internal/bootstrap"
	"mdoc/internal/config"
	"mdoc/internal/logging"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("mdoc", pflag.ExitOnError)
	configFile := flags.String("config", "", "config file (default: ./mdoc.yaml or $XDG_CONFIG_HOME/mdoc/mdoc.yaml)")
	logFile := flags.String("log-file", "", "write logs to this file (the terminal belongs to the UI)")
	flags.StringP("docs", "d", "", "path to the docs directory")
	flags.Bool("no-history", false, "do not query GitHub for revision history")
	flags.Parse(os.Args[1:])

	v := config.New()
	v.BindPFlag("docs_dir", flags.Lookup("docs"))

	cfg, err := config.Load(v, *configFile)
	if err != nil {
		return err
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		cfg.GitHub.Enabled = false
	}

	logger := logging.Discard()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger = logging.New(f, logging.LevelFromString(cfg.Log.Level), logging.Format(cfg.Log.Format))
	}
	slog.SetDefault(logger)

	a := bootstrap.New(cfg, logger, version)
	defer a.Close()

	app := tui.NewApp(tui.Services{
		Catalog:     a.Catalog,
		Freshness:   a.Freshness,
		Searcher:    a,
		Repo:        a.Repo,
		Editor:      editor.NewOpener(cfg.Editor),
		Browser:     browser.NewOpener(cfg.Site.BaseURL),
		Title:       cfg.Site.Title,
		EditBaseURL: cfg.Site.EditBaseURL,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
