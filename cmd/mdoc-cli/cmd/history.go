package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mdoc/internal/application"
	"mdoc/internal/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history <path>",
	Short: "List the commits that touched a document",
	Long: `List the commits that touched a document, newest first.

Results come from the local history cache when it is fresh, else from
GitHub. When GitHub cannot be reached an expired cache entry is shown
and marked as stale.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		history, path, err := historyFor(args[0])
		if err != nil {
			return err
		}

		result := history.DocumentHistory(ctx, path)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"status": result.Status.String(), "commits": result.Value})
		}

		if !result.OK() {
			fmt.Fprintln(out, "No history available")
			return nil
		}
		if result.Status == domain.LookupStale {
			fmt.Fprintln(out, "(GitHub unreachable, showing cached history)")
		}
		for _, c := range result.Value {
			fmt.Fprintf(out, "%s %s %-16s %s\n", c.ShortHash, c.Date.Local().Format("2006-01-02"), c.AuthorUsername, c.Message)
		}
		return nil
	},
}

var contributorsCmd = &cobra.Command{
	Use:   "contributors <path>",
	Short: "List the people who edited a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		history, path, err := historyFor(args[0])
		if err != nil {
			return err
		}

		contributors := history.Contributors(ctx, path)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, contributors)
		}

		if author := history.Author(ctx, path); author != "" {
			fmt.Fprintf(out, "Author: %s\n", author)
		}
		for _, c := range contributors {
			fmt.Fprintf(out, "%-16s last commit %s\n", c.Username, c.LastCommit.Local().Format("2006-01-02"))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version <path> <revision>",
	Short: "Print a document as it was at a past revision",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		history, path, err := historyFor(args[0])
		if err != nil {
			return err
		}

		content, _, err := history.DocumentAtRevision(ctx, path, args[1])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	},
}

// historyFor validates path and checks that remote history is configured
func historyFor(raw string) (*application.History, string, error) {
	path, err := application.SanitizePath(raw)
	if err != nil {
		return nil, "", err
	}
	history := GetApp().History
	if !history.Enabled() {
		return nil, "", fmt.Errorf("%w: set github.repo or MDOC_GITHUB_REPO", application.ErrDisabled)
	}
	return history, path, nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(contributorsCmd)
	rootCmd.AddCommand(versionCmd)
}
