package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderDetail renders the detail content for a run
func (m MainModel) renderDetail(item Item, maxWidth int) string {
	content := strings.Builder{}
	run := item.Run

	labelStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(m.styles.TextPrimary)

	field := func(label, value string) {
		if value == "" {
			return
		}
		line := Wrap(fmt.Sprintf("%-12s %s", label+":", CleanLogText(value)), maxWidth)
		fmt.Fprintln(&content, valueStyle.Render(line))
	}

	status := lipgloss.NewStyle().
		Foreground(m.styles.StatusColor(run.Status)).
		Bold(true).
		Render(item.StatusLabel())
	fmt.Fprintf(&content, "%s\n\n", status)

	field("Run", run.ID)
	field("Repository", run.RepoURL)
	field("Endpoint", run.Endpoint)
	field("Language", run.Language)
	if run.AgentProvisioned {
		field("Agent", "provisioned")
	}
	if run.NotifyStatus != 0 {
		field("Webhook", fmt.Sprintf("HTTP %d", run.NotifyStatus))
	}
	field("Started", run.StartedAt.Local().Format(time.RFC1123))
	if !run.FinishedAt.IsZero() {
		field("Duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String())
	}

	if run.Error != "" {
		fmt.Fprintln(&content)
		fmt.Fprintln(&content, lipgloss.NewStyle().Foreground(m.styles.FailureColor).Bold(true).Render("ERROR:"))
		errStyle := lipgloss.NewStyle().Foreground(m.styles.FailureColor)
		for _, line := range SplitLines(run.Error) {
			fmt.Fprintln(&content, errStyle.Render(Wrap(CleanLogText(line), maxWidth)))
		}
	}

	if len(item.Log) > 0 {
		fmt.Fprintln(&content)
		fmt.Fprintln(&content, labelStyle.Render("Build log:"))
		logStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Faint(true)
		for _, line := range item.Log {
			line = CleanLogText(line)
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Fprintln(&content, logStyle.Render(Wrap(line, maxWidth)))
		}
	}

	return content.String()
}

// updateDetailContent updates the viewport with content from the selected item
func (m *MainModel) updateDetailContent(item Item) {
	// 1 char padding on each side
	maxWidth := max(10, m.detailViewport.Width-2)
	m.detailViewport.SetContent(m.renderDetail(item, maxWidth))
}

// renderDetailPanel renders the right panel with detail viewport
func (m MainModel) renderDetailPanel(width, height int) string {
	if selectedItem, ok := m.listView.GetSelectedItem(); ok {
		headerRow := lipgloss.NewStyle().
			Foreground(m.styles.PrimaryBlue).
			Bold(true).
			Padding(0, 1).
			Render(Truncate(fmt.Sprintf("Run: %s", selectedItem.Run.ID), max(1, width-2), true))

		return lipgloss.JoinVertical(lipgloss.Left, headerRow,
			m.styles.PanelStyle(m.detailFocused).
				Width(width).
				Height(height).
				Render(m.detailViewport.View()))
	}

	placeholderRow := lipgloss.NewStyle().
		Foreground(m.styles.TextSecondary).
		Padding(0, 1).
		Render(" ")

	emptyStyle := m.styles.PanelStyle(false).
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(m.styles.TextSecondary).
		Faint(true)

	return lipgloss.JoinVertical(lipgloss.Left, placeholderRow, emptyStyle.Render("No runs match"))
}
