package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mdoc/internal/bootstrap"
	"mdoc/internal/config"
	"mdoc/internal/logging"
)

var version = "0.1.0"

var (
	configFile string
	verbosity  int
	quiet      bool
	jsonOutput bool
	noHistory  bool

	v   = config.New()
	app *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "mdoc-cli",
	Short: "CLI for browsing a Markdown documentation tree",
	Long: `mdoc-cli reads a directory of Markdown and HTML pages laid out as a
documentation site: numbered folders become ordered sections, numbered
files become ordered pages.

It lists and renders pages, walks the navigation, searches, and shows
page history from GitHub through a local cache.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load(v, configFile)
		if err != nil {
			return err
		}

		if noHistory {
			cfg.GitHub.Enabled = false
		}

		// An explicit log level in the config file applies unless -v or -q is given
		level := logging.LevelFromVerbosity(verbosity, quiet)
		if !cmd.Flags().Changed("verbose") && !quiet && v.InConfig("log.level") {
			level = logging.LevelFromString(cfg.Log.Level)
		}
		logger := logging.New(os.Stderr, level, logging.Format(cfg.Log.Format))

		app = bootstrap.New(cfg, logger, version)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default: ./mdoc.yaml or $XDG_CONFIG_HOME/mdoc/mdoc.yaml)")
	flags.StringP("docs", "d", "", "path to the docs directory")
	flags.String("repo", "", "GitHub repository holding the docs, as owner/name")
	flags.BoolVar(&noHistory, "no-history", false, "never contact GitHub")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "disable logging")
	flags.BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	v.BindPFlag("docs_dir", flags.Lookup("docs"))
	v.BindPFlag("github.repo", flags.Lookup("repo"))
}

// GetApp returns the initialized services
func GetApp() *bootstrap.App {
	return app
}

func printJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
