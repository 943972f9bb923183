package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Format identifies the source format of a document
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Extension returns the file extension used for the format
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	default:
		return ".md"
	}
}

// Extensions lists the recognized source extensions, in lookup order
var Extensions = []string{".md", ".html"}

// Document is one entry of the catalog
type Document struct {
	Path            string `json:"path"`  // e.g., "2_guides/1_intro"
	Title           string `json:"title"` // e.g., "Getting Started"
	Section         string `json:"section"`
	SectionOrder    int    `json:"section_order"`
	Order           int    `json:"order"`
	IsSubdocument   bool   `json:"is_subdoc"`
	Parent          string `json:"parent,omitempty"` // empty for top-level documents
	RecentlyUpdated bool   `json:"recently_updated"`
	IsVirtual       bool   `json:"is_virtual"`
	SourceFile      string `json:"source_file,omitempty"` // relative to the docs root, empty when virtual
	Format          Format `json:"format,omitempty"`
}

// Section groups the documents sharing a top-level folder
type Section struct {
	Name      string     `json:"name"`
	Order     int        `json:"order"`
	Documents []Document `json:"documents"`
}

// Breadcrumb is one step of the trail leading to a document
type Breadcrumb struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	IsCurrent bool   `json:"is_current"`
}

// Navigation holds the siblings surrounding a document
type Navigation struct {
	Previous *Document `json:"previous,omitempty"`
	Next     *Document `json:"next,omitempty"`
}

// Page is a document with its source loaded
type Page struct {
	Document
	Content     string `json:"content"`
	Description string `json:"description"`
}

// CompareDocuments orders documents by section order, section, order,
// title and finally path so that the ordering is total
func CompareDocuments(a, b Document) int {
	return cmp.Or(
		cmp.Compare(a.SectionOrder, b.SectionOrder),
		cmp.Compare(a.Section, b.Section),
		cmp.Compare(a.Order, b.Order),
		cmp.Compare(a.Title, b.Title),
		cmp.Compare(a.Path, b.Path),
	)
}

// EditURL links a source file to its edit page under base, e.g.
// https://github.com/org/docs/edit/main/docs. It is empty when either
// part is unknown.
func EditURL(base, sourceFile string) string {
	base = strings.TrimRight(base, "/")
	sourceFile = strings.TrimLeft(sourceFile, "/")
	if base == "" || sourceFile == "" {
		return ""
	}
	return base + "/" + sourceFile
}

// SortDocuments sorts a catalog in place
func SortDocuments(docs []Document) {
	slices.SortFunc(docs, CompareDocuments)
}

// SortByOrder sorts siblings by their order within the parent, keeping
// catalog order for ties
func SortByOrder(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		return cmp.Compare(a.Order, b.Order)
	})
}

// TreeNode represents a node in the catalog tree for navigation
type TreeNode struct {
	Doc        *Document // nil for section and root nodes
	Name       string
	Path       string
	Children   []*TreeNode
	IsExpanded bool
	Parent     *TreeNode
}

// IsLeaf reports whether the node has no children to expand
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsSection reports whether the node groups a section
func (n *TreeNode) IsSection() bool {
	return n.Doc == nil && n.Parent != nil
}

// Flatten returns all visible nodes in the tree (for list rendering)
func (n *TreeNode) Flatten() []*TreeNode {
	var result []*TreeNode
	n.flattenRecursive(&result)
	return result
}

func (n *TreeNode) flattenRecursive(result *[]*TreeNode) {
	*result = append(*result, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			child.flattenRecursive(result)
		}
	}
}

// Depth returns the depth of this node in the tree
func (n *TreeNode) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// Toggle expands or collapses the node
func (n *TreeNode) Toggle() {
	n.IsExpanded = !n.IsExpanded
}

// Expand sets the node as expanded
func (n *TreeNode) Expand() {
	n.IsExpanded = true
}

// Collapse sets the node as collapsed
func (n *TreeNode) Collapse() {
	n.IsExpanded = false
}

// BuildTree arranges sections, top-level documents and their subdocuments
// into a tree rooted at a synthetic node
func BuildTree(sections []Section) *TreeNode {
	root := &TreeNode{Name: "Documentation", IsExpanded: true}

	for _, section := range sections {
		sectionNode := &TreeNode{Name: section.Name, Parent: root}
		byParent := make(map[string][]Document)
		for _, doc := range section.Documents {
			if doc.Parent != "" {
				byParent[doc.Parent] = append(byParent[doc.Parent], doc)
			}
		}

		nodes := make(map[string]*TreeNode)
		for _, doc := range section.Documents {
			if doc.Parent != "" {
				continue
			}
			node := newDocNode(doc, sectionNode)
			nodes[doc.Path] = node
			sectionNode.Children = append(sectionNode.Children, node)
		}

		// Attach children level by level so nested folders find their parent
		attached := true
		for attached {
			attached = false
			for parentPath, children := range byParent {
				parentNode, ok := nodes[parentPath]
				if !ok {
					continue
				}
				SortByOrder(children)
				for _, child := range children {
					node := newDocNode(child, parentNode)
					nodes[child.Path] = node
					parentNode.Children = append(parentNode.Children, node)
				}
				delete(byParent, parentPath)
				attached = true
			}
		}

		// Orphans whose parent is outside the section hang off the section
		for _, doc := range section.Documents {
			if _, pending := byParent[doc.Parent]; pending && doc.Parent != "" {
				sectionNode.Children = append(sectionNode.Children, newDocNode(doc, sectionNode))
			}
		}

		root.Children = append(root.Children, sectionNode)
	}

	return root
}

func newDocNode(doc Document, parent *TreeNode) *TreeNode {
	d := doc
	return &TreeNode{
		Doc:    &d,
		Name:   doc.Title,
		Path:   doc.Path,
		Parent: parent,
	}
}
