package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mdoc/internal/application/commands"
	"mdoc/internal/domain"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	folderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the documentation tree",
	Long: `Display sections, pages and subpages as a tree.

Example:
  mdoc-cli tree`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		root, err := commands.NewBuildTreeCommand(GetApp().Catalog).Execute(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), treeJSON(root))
		}
		for _, section := range root.Children {
			printTree(cmd.OutOrStdout(), section, 0)
		}
		return nil
	},
}

func printTree(w io.Writer, node *domain.TreeNode, depth int) {
	if node == nil {
		return
	}

	indent := strings.Repeat("  ", depth)
	switch {
	case node.IsSection():
		fmt.Fprintf(w, "%s%s\n", indent, sectionStyle.Render(node.Name))
	case node.Doc != nil && node.Doc.IsVirtual:
		fmt.Fprintf(w, "%s%s %s\n", indent, folderStyle.Render(node.Name+"/"), pathStyle.Render(node.Path))
	default:
		fmt.Fprintf(w, "%s%s %s\n", indent, node.Name, pathStyle.Render(node.Path))
	}

	for _, child := range node.Children {
		printTree(w, child, depth+1)
	}
}

type treeEntry struct {
	Name     string      `json:"name"`
	Path     string      `json:"path,omitempty"`
	Children []treeEntry `json:"children,omitempty"`
}

func treeJSON(node *domain.TreeNode) treeEntry {
	entry := treeEntry{Name: node.Name, Path: node.Path}
	for _, child := range node.Children {
		entry.Children = append(entry.Children, treeJSON(child))
	}
	return entry
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
