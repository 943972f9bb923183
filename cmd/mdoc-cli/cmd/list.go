package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mdoc/internal/application/commands"
	"mdoc/internal/domain"
)

var listSection string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in navigation order",
	Long: `List every document of the catalog, or the documents of one section.

Folders without a page of their own are listed as virtual entries.

Examples:
  mdoc-cli list
  mdoc-cli list --section Guides
  mdoc-cli list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		docs, err := commands.NewListDocumentsCommand(GetApp().Catalog, listSection).Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, docs)
		}
		for _, d := range docs {
			fmt.Fprintln(out, documentLine(d))
		}
		return nil
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List sections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sections, err := commands.NewListSectionsCommand(GetApp().Catalog).Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, sections)
		}
		for _, s := range sections {
			fmt.Fprintf(out, "%s (%d)\n", s.Name, len(s.Documents))
		}
		return nil
	},
}

func documentLine(d domain.Document) string {
	line := fmt.Sprintf("%-40s %s", d.Path, d.Title)
	switch {
	case d.IsVirtual:
		line += " [folder]"
	case d.RecentlyUpdated:
		line += " [updated]"
	}
	return line
}

func init() {
	listCmd.Flags().StringVarP(&listSection, "section", "s", "", "only list documents of this section")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sectionsCmd)
}
