package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mdoc/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchBackMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	vb := NewViewBuilder().Title("mdoc Help")

	vb.Line(styles.InputLabel.Render("Browser"))
	vb.Raw(helpLine("j / k / ↑ / ↓", "Move up/down"))
	vb.Raw(helpLine("h / ←", "Collapse / go to parent"))
	vb.Raw(helpLine("l / →", "Expand"))
	vb.Raw(helpLine("Enter", "Read document / toggle section"))
	vb.Raw(helpLine("r", "Rebuild the catalog"))
	vb.BlankLine()

	vb.Line(styles.InputLabel.Render("Reader"))
	vb.Raw(helpLine("j / k / PgUp / PgDn", "Scroll"))
	vb.Raw(helpLine("n / p", "Next / previous sibling"))
	vb.Raw(helpLine("u", "Parent document"))
	vb.Raw(helpLine("y", "Copy link"))
	vb.Raw(helpLine("Y", "Copy edit link"))
	vb.Raw(helpLine("o", "Open in web browser"))
	vb.Raw(helpLine("Esc", "Back to the tree"))
	vb.BlankLine()

	vb.Line(styles.InputLabel.Render("General"))
	vb.Raw(helpLine("/", "Search"))
	vb.Raw(helpLine("e", "Edit source in $EDITOR"))
	vb.Raw(helpLine("?", "Toggle help"))
	vb.Raw(helpLine("q / Ctrl+C", "Quit"))
	vb.BlankLine()

	vb.Line(styles.MutedText.Render("  " + styles.RecentBadge.String() + " marks recently updated documents"))
	vb.BlankLine()

	return vb.Help(HelpKeys.Close).String()
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 22)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}
