package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"mdoc/internal/adapters/tui/views"
	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewReader
	ViewSearch
	ViewHelp
)

// Services are the application services the TUI drives. Freshness,
// Editor and Browser may be nil.
type Services struct {
	Catalog   *application.Catalog
	Freshness *application.Freshness
	Searcher  commands.Searcher
	Repo      ports.DocumentRepository
	Editor    ports.EditorOpener
	Browser   ports.URLOpener
	Title     string

	// EditBaseURL links documents to their edit page in the reader
	EditBaseURL string
}

// App is the main TUI application model
type App struct {
	svc Services

	state   ViewState
	prev    ViewState
	browser *views.BrowserModel
	reader  *views.ReaderModel
	search  *views.SearchModel
	help    *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(svc Services) *App {
	title := svc.Title
	if title == "" {
		title = "Documentation"
	}
	reader := views.NewReaderModel(svc.Catalog, svc.Freshness, svc.Browser)
	reader.SetEditBase(svc.EditBaseURL)
	return &App{
		svc:     svc,
		state:   ViewBrowser,
		browser: views.NewBrowserModel(svc.Catalog, title),
		reader:  reader,
		search:  views.NewSearchModel(svc.Searcher),
		help:    views.NewHelpModel(),
	}
}

// State returns the view currently shown
func (a *App) State() ViewState {
	return a.state
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.reader.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.OpenDocumentMsg:
		a.switchTo(ViewReader)
		a.browser.SelectPath(msg.Path)
		return a, a.reader.Load(msg.Path)

	case views.SwitchToSearchMsg:
		a.switchTo(ViewSearch)
		a.search.Reset()
		return a, a.search.Init()

	case views.SwitchToHelpMsg:
		a.switchTo(ViewHelp)
		return a, nil

	case views.SwitchToBrowserMsg:
		if path := a.reader.Path(); path != "" {
			a.browser.SelectPath(path)
		}
		a.switchTo(ViewBrowser)
		return a, nil

	case views.SwitchBackMsg:
		a.state, a.prev = a.prev, ViewBrowser
		if a.state == ViewSearch || a.state == ViewHelp {
			a.state = ViewBrowser
		}
		return a, nil

	case views.EditDocumentMsg:
		return a, a.openEditor(msg.Doc.Path)

	case editorFinishedMsg:
		return a, a.editorFinished(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)
	}

	// Results of background work go to every view; each ignores the rest
	var cmds []tea.Cmd
	for _, m := range []tea.Model{a.browser, a.reader, a.search} {
		_, cmd := m.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) switchTo(state ViewState) {
	if a.state != state {
		a.prev = a.state
	}
	a.state = state
}

func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewReader:
		_, cmd = a.reader.Update(msg)
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}
	return cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(docPath string) tea.Cmd {
	if a.svc.Editor == nil || a.svc.Repo == nil {
		return nil
	}

	file, err := a.svc.Repo.FilePath(docPath)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	cmd, err := a.svc.Editor.Command(file)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// editorFinished reloads what the edit may have changed
func (a *App) editorFinished(msg editorFinishedMsg) tea.Cmd {
	if msg.err != nil {
		text := fmt.Sprintf("Editor: %v", msg.err)
		a.browser.SetMessage(text, true)
		a.reader.SetMessage(text, true)
		return nil
	}

	a.svc.Catalog.Invalidate()
	cmds := []tea.Cmd{a.browser.Reload()}
	if path := a.reader.Path(); path != "" {
		cmds = append(cmds, a.reader.Load(path))
	}
	return tea.Batch(cmds...)
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewReader:
		return a.reader.View()
	case ViewSearch:
		return a.search.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}

