package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mdoc/internal/application/commands"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or update the full-text search index",
	Long: `Bring the search index in line with the docs directory.

Only documents whose files changed since the last run are re-read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a := GetApp()

		idx, err := a.Index()
		if err != nil {
			return err
		}
		stats, err := commands.NewSyncIndexCommand(a.Catalog, idx, a.Repo).Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, stats)
		}
		fmt.Fprintf(out, "Indexed %d documents into %s: %d added, %d updated, %d removed (%s)\n",
			stats.FilesScanned, idx.Path(), stats.NodesAdded, stats.NodesUpdated, stats.NodesDeleted, stats.Duration.Round(time.Microsecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
