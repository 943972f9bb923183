package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mdoc/internal/adapters/tui/styles"
	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/domain"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Enter   key.Binding
	Edit    key.Binding
	Refresh key.Binding
	Search  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "read"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// BrowserModel is the model for the tree browser view
type BrowserModel struct {
	ViewState
	catalog   *application.Catalog
	title     string
	root      *domain.TreeNode
	flatNodes []*domain.TreeNode
	cursor    int
	expanded  map[string]bool // survives reloads
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(catalog *application.Catalog, title string) *BrowserModel {
	return &BrowserModel{
		catalog: catalog,
		title:   title,
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadTree
}

func (m *BrowserModel) loadTree() tea.Msg {
	root, err := commands.NewBuildTreeCommand(m.catalog).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return treeLoadedMsg{root}
}

type treeLoadedMsg struct {
	root *domain.TreeNode
}

type errMsg struct {
	err error
}

type statusMsg struct {
	message string
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case treeLoadedMsg:
		m.root = msg.root
		m.restoreExpansion()
		m.refreshFlatNodes()
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case statusMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()

		switch {
		case key.Matches(msg, BrowserKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, BrowserKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Down):
			if m.cursor < len(m.flatNodes)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Left):
			if node := m.selectedNode(); node != nil {
				if node.IsExpanded {
					m.setExpanded(node, false)
				} else if node.Parent != nil && node.Parent != m.root {
					m.selectNode(node.Parent)
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Right):
			if node := m.selectedNode(); node != nil && !node.IsLeaf() {
				m.setExpanded(node, true)
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Enter):
			node := m.selectedNode()
			if node == nil {
				return m, nil
			}
			if node.Doc == nil {
				m.setExpanded(node, !node.IsExpanded)
				return m, nil
			}
			path := node.Path
			return m, func() tea.Msg {
				return OpenDocumentMsg{Path: path}
			}

		case key.Matches(msg, BrowserKeys.Edit):
			if node := m.selectedNode(); node != nil && node.Doc != nil && !node.Doc.IsVirtual {
				doc := *node.Doc
				return m, func() tea.Msg {
					return EditDocumentMsg{Doc: doc}
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Refresh):
			m.catalog.Invalidate()
			return m, tea.Batch(m.Reload(), func() tea.Msg {
				return statusMsg{"Catalog refreshed"}
			})

		case key.Matches(msg, BrowserKeys.Search):
			return m, func() tea.Msg {
				return SwitchToSearchMsg{}
			}

		case key.Matches(msg, BrowserKeys.Help):
			return m, func() tea.Msg {
				return SwitchToHelpMsg{}
			}
		}
	}

	return m, nil
}

// nodeKey identifies a node across tree rebuilds
func nodeKey(node *domain.TreeNode) string {
	if node.Doc == nil {
		return "section:" + node.Name
	}
	return node.Path
}

func (m *BrowserModel) setExpanded(node *domain.TreeNode, expanded bool) {
	if expanded {
		node.Expand()
	} else {
		node.Collapse()
	}
	if m.expanded != nil {
		m.expanded[nodeKey(node)] = expanded
	}
	m.refreshFlatNodes()
}

// restoreExpansion reapplies the expansion state of the previous tree.
// Sections start expanded.
func (m *BrowserModel) restoreExpansion() {
	first := m.expanded == nil
	if first {
		m.expanded = make(map[string]bool)
	}

	var walk func(n *domain.TreeNode)
	walk = func(n *domain.TreeNode) {
		for _, child := range n.Children {
			if first && child.Doc == nil {
				m.expanded[nodeKey(child)] = true
			}
			if m.expanded[nodeKey(child)] {
				child.Expand()
			}
			walk(child)
		}
	}
	walk(m.root)
}

// SelectPath moves the cursor to a document, expanding its ancestors
func (m *BrowserModel) SelectPath(path string) {
	if m.root == nil {
		return
	}

	var target *domain.TreeNode
	var find func(n *domain.TreeNode)
	find = func(n *domain.TreeNode) {
		for _, child := range n.Children {
			if target != nil {
				return
			}
			if child.Doc != nil && child.Path == path {
				target = child
				return
			}
			find(child)
		}
	}
	find(m.root)
	if target == nil {
		return
	}

	for p := target.Parent; p != nil && p != m.root; p = p.Parent {
		p.Expand()
		m.expanded[nodeKey(p)] = true
	}
	m.refreshFlatNodes()
	m.selectNode(target)
}

func (m *BrowserModel) selectNode(node *domain.TreeNode) {
	for i, n := range m.flatNodes {
		if n == node {
			m.cursor = i
			return
		}
	}
}

func (m *BrowserModel) selectedNode() *domain.TreeNode {
	if m.cursor >= 0 && m.cursor < len(m.flatNodes) {
		return m.flatNodes[m.cursor]
	}
	return nil
}

func (m *BrowserModel) refreshFlatNodes() {
	if m.root == nil {
		return
	}
	m.flatNodes = m.root.Flatten()
	// Skip root node in display
	if len(m.flatNodes) > 0 {
		m.flatNodes = m.flatNodes[1:]
	}
	// Clamp cursor
	if m.cursor >= len(m.flatNodes) {
		m.cursor = len(m.flatNodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// visibleRange returns the window of flat nodes that fits the screen
func (m *BrowserModel) visibleRange() (start, end int) {
	end = len(m.flatNodes)
	// Title, subtitle, message and help take 8 lines
	rows := m.Height - 8
	if m.Height == 0 || rows <= 0 || end <= rows {
		return 0, end
	}
	start = m.cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > end {
		start = end - rows
	}
	return start, start + rows
}

// View renders the browser
func (m *BrowserModel) View() string {
	if m.root == nil {
		if m.Message != "" {
			return styles.App.Render(RenderMessage(m.Message, m.MessageErr))
		}
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(styles.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.subtitle()))
	b.WriteString("\n\n")

	if len(m.flatNodes) == 0 {
		b.WriteString(styles.MutedText.Render("No documents found"))
		b.WriteString("\n")
	}

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		b.WriteString(m.renderNode(m.flatNodes[i], i == m.cursor))
		b.WriteString("\n")
	}

	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
	}

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		BrowserKeys.Down, BrowserKeys.Right, BrowserKeys.Enter,
		BrowserKeys.Search, BrowserKeys.Help, BrowserKeys.Quit,
	))

	return styles.App.Render(b.String())
}

func (m *BrowserModel) subtitle() string {
	sections := len(m.root.Children)
	docs := 0
	var count func(n *domain.TreeNode)
	count = func(n *domain.TreeNode) {
		for _, child := range n.Children {
			if child.Doc != nil && !child.Doc.IsVirtual {
				docs++
			}
			count(child)
		}
	}
	count(m.root)
	return fmt.Sprintf("%d documents in %d sections", docs, sections)
}

func (m *BrowserModel) renderNode(node *domain.TreeNode, selected bool) string {
	indent := strings.Repeat("  ", node.Depth()-1)

	var prefix string
	if node.IsLeaf() {
		prefix = styles.TreeLeaf
	} else if node.IsExpanded {
		prefix = styles.TreeExpanded
	} else {
		prefix = styles.TreeCollapsed
	}

	var style lipgloss.Style
	switch {
	case node.Doc == nil:
		style = styles.NodeSection
	case node.Doc.IsVirtual:
		style = styles.NodeVirtual
	case !node.IsLeaf():
		style = styles.NodeFolder
	default:
		style = styles.NodeDocument
	}
	if selected {
		style = styles.NodeSelected
	}

	text := style.Render(node.Name)
	if node.Doc != nil && node.Doc.RecentlyUpdated {
		text += styles.RecentBadge.String()
	}

	return fmt.Sprintf("%s%s%s", indent, styles.TreeBranch.Render(prefix), text)
}

// Reload reloads the tree from the catalog
func (m *BrowserModel) Reload() tea.Cmd {
	m.root = nil
	m.flatNodes = nil
	return m.loadTree
}
