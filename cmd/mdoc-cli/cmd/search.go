package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mdoc/internal/application/commands"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the documentation",
	Long: `Search documents by title, path, or content.

Content is searched once the index has been built with "mdoc-cli index";
until then only titles and paths are matched. Results are ranked by
relevance using fuzzy matching.

Examples:
  mdoc-cli search install
  mdoc-cli search "config file"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		search := commands.NewSearchCommand(GetApp().Searcher(ctx), args[0])
		search.Limit = searchLimit
		results, err := search.Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, results)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "No results found")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%-40s %s\n", r.Path, r.Title)
			if r.MatchedText != "" && r.MatchedText != r.Title {
				fmt.Fprintf(out, "    %s\n", r.MatchedText)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", commands.DefaultSearchLimit, "maximum number of results")

	rootCmd.AddCommand(searchCmd)
}
