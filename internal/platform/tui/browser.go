package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matthewharwood/arenic-replay/internal/storage"
)

// maxBrowserRows caps how many timelines the browser loads at once.
const maxBrowserRows = 200

// BrowserKeyMap defines the key bindings for the timeline browser.
type BrowserKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Delete, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Delete, k.Refresh, k.Quit},
	}
}

// DefaultBrowserKeyMap returns default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete timeline"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowserModel is the Bubble Tea model for browsing stored timelines.
type BrowserModel struct {
	store    *storage.Store
	entries  []storage.TimelineEntry
	table    table.Model
	help     help.Model
	keys     BrowserKeyMap
	status   string
	quitting bool
}

// NewBrowserModel creates a timeline browser over the given store.
func NewBrowserModel(store *storage.Store, width, height int) BrowserModel {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Actor", Width: 14},
		{Title: "Archetype", Width: 10},
		{Title: "Ticks", Width: 7},
		{Title: "Fingerprint", Width: 18},
		{Title: "Created", Width: 17},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height-4),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("14")).Bold(true)
	t.SetStyles(styles)

	m := BrowserModel{
		store: store,
		table: t,
		help:  help.New(),
		keys:  DefaultBrowserKeyMap(),
	}
	m.reload()
	return m
}

// reload refreshes the table rows from the store.
func (m *BrowserModel) reload() {
	entries, err := m.store.ListTimelines()
	if err != nil {
		m.status = err.Error()
		return
	}
	if len(entries) > maxBrowserRows {
		entries = entries[:maxBrowserRows]
	}
	m.entries = entries

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.ID),
			e.Actor,
			string(e.Archetype),
			fmt.Sprintf("%d", e.Duration),
			fmt.Sprintf("%016x", e.Fingerprint),
			e.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
	m.status = fmt.Sprintf("%d timelines", len(entries))
}

// Init implements tea.Model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			m.deleteSelected()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// deleteSelected removes the highlighted timeline from the store.
func (m *BrowserModel) deleteSelected() {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.entries) {
		return
	}
	id := m.entries[cursor].ID
	if err := m.store.DeleteTimeline(id); err != nil {
		m.status = err.Error()
		return
	}
	m.reload()
	m.status = fmt.Sprintf("deleted timeline #%d", id)
}

// View renders the browser.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}
	title := lipgloss.NewStyle().Bold(true).Render("Stored timelines")
	return title + "\n" + m.table.View() + "\n" + m.status + "\n" + m.help.View(m.keys)
}

// RunBrowser starts the timeline browser program.
func RunBrowser(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewBrowserModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
