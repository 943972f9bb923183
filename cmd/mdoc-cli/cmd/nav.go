package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mdoc/internal/application"
)

var navCmd = &cobra.Command{
	Use:   "nav <path>",
	Short: "Show breadcrumbs and neighbouring pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		catalog := GetApp().Catalog

		path, err := application.SanitizePath(args[0])
		if err != nil {
			return err
		}
		if _, ok := catalog.Document(ctx, path); !ok {
			return fmt.Errorf("document %s: %w", path, application.ErrNotFound)
		}

		crumbs := application.Breadcrumbs(path)
		nav := catalog.SiblingNavigation(ctx, path)
		subdocs := catalog.Subdocuments(ctx, path)

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"path":         path,
				"breadcrumbs":  crumbs,
				"navigation":   nav,
				"subdocuments": subdocs,
			})
		}

		names := make([]string, 0, len(crumbs))
		for _, c := range crumbs {
			names = append(names, c.Name)
		}
		fmt.Fprintln(out, strings.Join(names, " › "))
		if nav.Previous != nil {
			fmt.Fprintf(out, "← %s (%s)\n", nav.Previous.Title, nav.Previous.Path)
		}
		if nav.Next != nil {
			fmt.Fprintf(out, "→ %s (%s)\n", nav.Next.Title, nav.Next.Path)
		}
		for _, sub := range subdocs {
			fmt.Fprintf(out, "  • %s (%s)\n", sub.Title, sub.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(navCmd)
}
