package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderListPanel renders the left panel with the run list
func (m MainModel) renderListPanel(width, height int) string {
	listPanel := m.styles.PanelStyle(!m.detailFocused).
		Width(width - 2).
		Height(height).
		Render(m.listView.Render())

	delegate := m.listView.GetDelegate()
	headerText := fmt.Sprintf("%-*s │ %-*s │ %-*s │ Repository",
		statusWidth, "Status",
		delegate.LanguageWidth, "Language",
		timeWidth, "Started")
	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width-2).
		Padding(0, 1).
		Render(Truncate(headerText, width-4, true))

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, listPanel)
}
