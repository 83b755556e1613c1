package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	// listRenderingOverhead accounts for padding added by bubbles/list and panel borders.
	listRenderingOverhead = 10

	statusWidth = 9 // "SUCCEEDED"
	timeWidth   = 11
)

// Delegate renders runs as table rows.
type Delegate struct {
	LanguageWidth int
	styles        *StyleConfig
}

// NewDelegate creates a new run table delegate with default styles
func NewDelegate() Delegate {
	return NewDelegateWithStyles(DefaultStyles())
}

// NewDelegateWithStyles creates a new delegate with custom styles
func NewDelegateWithStyles(styles *StyleConfig) Delegate {
	return Delegate{
		LanguageWidth: len("Language"),
		styles:        styles,
	}
}

// SetLanguageWidth sizes the language column to the longest language, within bounds.
func (d *Delegate) SetLanguageWidth(longest int) {
	d.LanguageWidth = max(len("Language"), min(longest, 16))
}

// Height returns the height of a list item
func (d Delegate) Height() int {
	return 1
}

// Spacing returns spacing between items
func (d Delegate) Spacing() int {
	return 0
}

// Update handles item updates
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a list item
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	statusCol := TruncateAndPad(entry.StatusLabel(), statusWidth, false)
	langCol := TruncateAndPad(entry.Run.Language, d.LanguageWidth, true)
	timeCol := TruncateAndPad(entry.Run.StartedAt.Local().Format("Jan 02 15:04"), timeWidth, false)

	// Fixed columns: status + language + time + separators (9)
	fixedWidth := statusWidth + d.LanguageWidth + timeWidth + 9
	availableWidth := m.Width() - fixedWidth - listRenderingOverhead

	var repo string
	if availableWidth > 0 {
		repo = TruncateAndPad(CleanLogText(entry.Run.RepoURL), availableWidth, true)
	}

	statusStyle := lipgloss.NewStyle().Foreground(d.styles.StatusColor(entry.Run.Status))
	style := lipgloss.NewStyle().Foreground(d.styles.TextSecondary)
	if isSelected {
		style = style.Bold(true).Foreground(d.styles.PrimaryBlue).Background(d.styles.SelectedColor)
		statusStyle = statusStyle.Bold(true).Background(d.styles.SelectedColor)
	}

	line := fmt.Sprintf(" │ %s │ %s │ %s", langCol, timeCol, repo)
	fmt.Fprint(w, ansi.Truncate(statusStyle.Render(statusCol)+style.Render(line), max(0, m.Width()), ""))
}
