package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"mdoc/internal/adapters/tui/styles"
	"mdoc/internal/application"
	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// ReaderKeyMap defines key bindings for the reader view
type ReaderKeyMap struct {
	Back     key.Binding
	Next     key.Binding
	Previous key.Binding
	Parent   key.Binding
	CopyLink key.Binding
	CopyEdit key.Binding
	Browser  key.Binding
	Edit     key.Binding
	Help     key.Binding
}

var ReaderKeys = ReaderKeyMap{
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next"),
	),
	Previous: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "previous"),
	),
	Parent: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "up"),
	),
	CopyLink: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	CopyEdit: key.NewBinding(
		key.WithKeys("Y"),
		key.WithHelp("Y", "copy edit link"),
	),
	Browser: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open in browser"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// Header (breadcrumbs, title, edit link) and footer (navigation, help) lines
const (
	readerHeaderLines = 3
	readerFooterLines = 3
)

// ReaderModel shows one document rendered for the terminal
type ReaderModel struct {
	ViewState
	catalog   *application.Catalog
	freshness *application.Freshness
	urls      ports.URLOpener
	editBase  string
	copy      func(text string) error

	viewport viewport.Model
	renderer *glamour.TermRenderer
	page     *domain.Page
	nav      domain.Navigation
	updated  string
	loading  bool
}

// NewReaderModel creates a new reader. freshness and urls may be nil.
func NewReaderModel(catalog *application.Catalog, freshness *application.Freshness, urls ports.URLOpener) *ReaderModel {
	m := &ReaderModel{
		catalog:   catalog,
		freshness: freshness,
		urls:      urls,
		copy:      clipboard.WriteAll,
		viewport:  viewport.New(80, 20),
	}
	m.SetSize(80, 24)
	return m
}

// SetEditBase sets the prefix joined with source files to link their
// edit page
func (m *ReaderModel) SetEditBase(base string) {
	m.editBase = base
}

// EditURL returns the edit page of the document being shown, if any
func (m *ReaderModel) EditURL() string {
	if m.page == nil {
		return ""
	}
	return domain.EditURL(m.editBase, m.page.SourceFile)
}

// readerStatusMsg reports the outcome of a reader action
type readerStatusMsg struct {
	message string
	isErr   bool
}

type pageLoadedMsg struct {
	page    *domain.Page
	nav     domain.Navigation
	updated string
}

// Load fetches a document. Folders resolve to their first subdocument.
func (m *ReaderModel) Load(path string) tea.Cmd {
	m.loading = true
	m.ClearMessage()
	return func() tea.Msg {
		ctx := context.Background()

		resolved, err := m.catalog.Resolve(ctx, path)
		if err != nil {
			return readerStatusMsg{err.Error(), true}
		}
		page, err := m.catalog.Page(ctx, resolved)
		if err != nil {
			return readerStatusMsg{err.Error(), true}
		}

		msg := pageLoadedMsg{
			page: page,
			nav:  m.catalog.SiblingNavigation(ctx, resolved),
		}
		if m.freshness != nil {
			if label, ok := m.freshness.LastUpdatedLabel(ctx, resolved); ok {
				msg.updated = label
			}
		}
		return msg
	}
}

// Path returns the path of the document being shown
func (m *ReaderModel) Path() string {
	if m.page == nil {
		return ""
	}
	return m.page.Path
}

// Init initializes the reader
func (m *ReaderModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the reader
func (m *ReaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		m.page = msg.page
		m.nav = msg.nav
		m.updated = msg.updated
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case readerStatusMsg:
		m.loading = false
		m.SetMessage(msg.message, msg.isErr)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()

		switch {
		case key.Matches(msg, ReaderKeys.Back):
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}

		case key.Matches(msg, ReaderKeys.Next):
			if m.nav.Next != nil {
				return m, m.Load(m.nav.Next.Path)
			}
			return m, nil

		case key.Matches(msg, ReaderKeys.Previous):
			if m.nav.Previous != nil {
				return m, m.Load(m.nav.Previous.Path)
			}
			return m, nil

		case key.Matches(msg, ReaderKeys.Parent):
			if m.page != nil && m.page.Parent != "" {
				if doc, ok := m.catalog.Document(context.Background(), m.page.Parent); ok && !doc.IsVirtual {
					return m, m.Load(doc.Path)
				}
				m.SetMessage("Parent folder has no page of its own", false)
			}
			return m, nil

		case key.Matches(msg, ReaderKeys.CopyLink):
			if m.page != nil {
				return m, m.copyLink(m.page.Path)
			}
			return m, nil

		case key.Matches(msg, ReaderKeys.CopyEdit):
			if edit := m.EditURL(); edit != "" {
				return m, m.copyText(edit)
			}
			if m.page != nil {
				m.SetMessage("No edit link configured", false)
			}
			return m, nil

		case key.Matches(msg, ReaderKeys.Browser):
			if m.page != nil && m.urls != nil {
				return m, m.openInBrowser(m.page.Path)
			}
			return m, nil

		case key.Matches(msg, ReaderKeys.Edit):
			if m.page != nil {
				doc := m.page.Document
				return m, func() tea.Msg {
					return EditDocumentMsg{Doc: doc}
				}
			}
			return m, nil

		case key.Matches(msg, ReaderKeys.Help):
			return m, func() tea.Msg {
				return SwitchToHelpMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// copyLink puts the published URL of a document on the clipboard, or its
// path when no site URL is configured
func (m *ReaderModel) copyLink(path string) tea.Cmd {
	return func() tea.Msg {
		link := path
		if m.urls != nil {
			if u, err := m.urls.DocumentURL(path); err == nil {
				link = u
			}
		}
		return m.copyText(link)()
	}
}

func (m *ReaderModel) copyText(text string) tea.Cmd {
	return func() tea.Msg {
		if err := m.copy(text); err != nil {
			return readerStatusMsg{fmt.Sprintf("failed to copy link: %v", err), true}
		}
		return readerStatusMsg{message: "Copied " + text}
	}
}

func (m *ReaderModel) openInBrowser(path string) tea.Cmd {
	return func() tea.Msg {
		if err := m.urls.OpenDocument(path); err != nil {
			return readerStatusMsg{fmt.Sprintf("failed to open browser: %v", err), true}
		}
		return readerStatusMsg{message: "Opened in browser"}
	}
}

// SetSize updates the viewport and the Markdown renderer to the new width
func (m *ReaderModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)

	// App padding takes 2 rows and 4 columns
	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-2-readerHeaderLines-readerFooterLines, 3)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.viewport.Width-2),
	)
	if err == nil {
		m.renderer = r
	}
	if m.page != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m *ReaderModel) renderContent() string {
	if m.page == nil {
		return ""
	}
	if m.page.Format != domain.FormatMarkdown || m.renderer == nil {
		return m.page.Content
	}
	_, body := domain.SplitFrontmatter(m.page.Content)
	out, err := m.renderer.Render(body)
	if err != nil {
		return m.page.Content
	}
	return out
}

// View renders the reader
func (m *ReaderModel) View() string {
	vb := NewViewBuilder()

	switch {
	case m.page == nil && m.loading:
		return vb.Muted("Loading...").String()
	case m.page == nil:
		return vb.Message(m.Message, m.MessageErr).Help(ReaderKeys.Back).String()
	}

	vb.Line(RenderBreadcrumbs(application.Breadcrumbs(m.page.Path)))
	vb.Line(styles.Title.UnsetMarginBottom().Render(m.page.Title))
	if edit := m.EditURL(); edit != "" {
		vb.Muted("Edit: " + edit)
	} else {
		vb.BlankLine()
	}
	vb.Line(m.viewport.View())
	vb.Line(m.renderFooter())

	if m.Message != "" {
		vb.Line(RenderMessage(m.Message, m.MessageErr))
	} else {
		vb.Help(ReaderKeys.Previous, ReaderKeys.Next, ReaderKeys.Parent,
			ReaderKeys.CopyLink, ReaderKeys.Edit, ReaderKeys.Back)
	}
	return vb.String()
}

func (m *ReaderModel) renderFooter() string {
	var parts []string
	if m.nav.Previous != nil {
		parts = append(parts, "← "+m.nav.Previous.Title)
	}
	if m.nav.Next != nil {
		parts = append(parts, m.nav.Next.Title+" →")
	}
	if m.updated != "" {
		parts = append(parts, "Updated "+m.updated)
	}
	parts = append(parts, fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	return styles.StatusText.Render(strings.Join(parts, "   "))
}

