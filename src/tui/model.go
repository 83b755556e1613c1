// Package tui provides the terminal run-history viewer for the language detection step.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"langdetect-agent/src/contracts"
)

// Status is the loading state of the viewer.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
)

// RunMsg delivers a new or updated run to the viewer.
type RunMsg struct {
	Item Item
}

// updatesClosedMsg signals the run update channel was closed.
type updatesClosedMsg struct{}

// MainModel is the Bubble Tea model for the run-history viewer.
// Runs are listed on the left; the selected run's details and build log on the right.
type MainModel struct {
	header         Header
	listView       View
	detailViewport viewport.Model
	progress       ProgressModel
	status         Status
	styles         *StyleConfig

	items         []Item
	width, height int
	ready         bool
	detailFocused bool
	searchMode    bool
	searchQuery   string

	updates <-chan contracts.RunRecord
}

// NewMainModel creates a viewer over the given runs. When updates is non-nil the
// viewer keeps listening for run records until the channel is closed.
func NewMainModel(items []Item, updates <-chan contracts.RunRecord) MainModel {
	styles := DefaultStyles()
	m := MainModel{
		header:         NewHeaderWithStyles("Runs", styles),
		listView:       NewView(styles),
		detailViewport: viewport.New(0, 0),
		progress:       NewProgressModel(),
		styles:         styles,
		items:          items,
		updates:        updates,
		status:         StatusReady,
	}
	if updates != nil && len(items) == 0 {
		m.status = StatusLoading
	}
	m.updateTitle()
	m.listView.SetItems(items)
	return m
}

// Init starts the spinner and the update listener.
func (m MainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{SpinnerTick()}
	if m.updates != nil {
		cmds = append(cmds, waitForRun(m.updates))
	}
	return tea.Batch(cmds...)
}

func waitForRun(updates <-chan contracts.RunRecord) tea.Cmd {
	return func() tea.Msg {
		run, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return RunMsg{Item: Item{Run: run}}
	}
}

// Update handles messages and updates the model state.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case RunMsg:
		m.upsert(msg.Item)
		m.status = StatusReady
		m.applyFilter()
		if m.updates != nil {
			cmds = append(cmds, waitForRun(m.updates))
		}
		return m, tea.Batch(cmds...)

	case updatesClosedMsg:
		m.status = StatusReady
		m.updates = nil
		m.progress, _ = m.progress.Update(ProgressMsg{Stage: "complete"})
		return m, nil

	case ProgressMsg, SpinnerTickMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	if m.detailFocused {
		switch msg.String() {
		case "esc", "h", "left":
			m.detailFocused = false
			return m, nil
		}
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter", "l", "right":
		if _, ok := m.listView.GetSelectedItem(); ok {
			m.detailFocused = true
		}
		return m, nil
	case "tab":
		m.header.CycleFilter()
		m.applyFilter()
		return m, nil
	case "/":
		m.searchMode = true
		m.header.SetSearch(m.searchQuery, true)
		return m, nil
	case "esc":
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.header.SetSearch("", false)
			m.applyFilter()
		}
		return m, nil
	}

	before, _ := m.listView.GetSelectedItem()
	var cmd tea.Cmd
	m.listView, cmd = m.listView.Update(msg)
	if after, ok := m.listView.GetSelectedItem(); ok && after.Run.ID != before.Run.ID {
		m.updateDetailContent(after)
		m.detailViewport.GotoTop()
	}
	return m, cmd
}

func (m MainModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.searchMode = false
	case tea.KeyEsc:
		m.searchMode = false
		m.searchQuery = ""
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
	default:
		return m, nil
	}
	m.header.SetSearch(m.searchQuery, m.searchMode)
	m.applyFilter()
	return m, nil
}

// upsert replaces the run with the same ID or prepends a new one.
func (m *MainModel) upsert(item Item) {
	for i := range m.items {
		if m.items[i].Run.ID == item.Run.ID {
			if len(item.Log) == 0 {
				item.Log = m.items[i].Log
			}
			m.items[i] = item
			m.updateTitle()
			return
		}
	}
	m.items = append([]Item{item}, m.items...)
	m.updateTitle()
}

func (m *MainModel) updateTitle() {
	failed := 0
	for _, item := range m.items {
		if item.Run.Status == contracts.RunStatusFailed {
			failed++
		}
	}
	m.header.SetTitle(fmt.Sprintf("Runs: %d (%d failed)", len(m.items), failed))
}

// Start runs the viewer full-screen until the user quits.
func Start(items []Item, updates <-chan contracts.RunRecord) error {
	p := tea.NewProgram(NewMainModel(items, updates), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
