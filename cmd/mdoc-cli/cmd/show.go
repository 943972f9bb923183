package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"mdoc/internal/domain"
)

var (
	showRender bool
	showWidth  int
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print a document",
	Long: `Print the source of a document. A folder prints its first page.

With --render, Markdown is rendered for the terminal.

Examples:
  mdoc-cli show 1_guides/2_install
  mdoc-cli show 1_guides --render`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a := GetApp()

		path, err := a.Catalog.Resolve(ctx, args[0])
		if err != nil {
			return err
		}
		page, err := a.Catalog.Page(ctx, path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, page)
		}

		if !showRender || page.Format != domain.FormatMarkdown {
			fmt.Fprint(out, page.Content)
			return nil
		}

		rendered, err := renderMarkdown(page.Content, showWidth)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		if label, ok := a.Freshness.LastUpdatedLabel(ctx, path); ok {
			fmt.Fprintf(out, "\n  Updated %s\n", label)
		}
		return nil
	},
}

func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	_, body := domain.SplitFrontmatter(content)
	return r.Render(body)
}

func init() {
	showCmd.Flags().BoolVarP(&showRender, "render", "r", false, "render Markdown for the terminal")
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 80, "wrap width when rendering")

	rootCmd.AddCommand(showCmd)
}
