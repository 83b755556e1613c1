package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status filters cycled by the header.
var statusFilters = []string{"ALL", "SUCCEEDED", "FAILED", "RUNNING"}

// Header represents the top status bar component.
type Header struct {
	title          string
	selectedFilter string
	searchQuery    string
	searchMode     bool
	styles         *StyleConfig
}

// NewHeaderWithStyles creates a new header with custom styles
func NewHeaderWithStyles(title string, styles *StyleConfig) Header {
	return Header{
		title:          title,
		selectedFilter: "ALL",
		styles:         styles,
	}
}

// SetTitle replaces the status text on the left.
func (h *Header) SetTitle(title string) {
	h.title = title
}

// SetFilter sets the current filter
func (h *Header) SetFilter(filter string) {
	h.selectedFilter = strings.ToUpper(filter)
}

// GetFilter returns the current filter
func (h Header) GetFilter() string {
	return h.selectedFilter
}

// CycleFilter cycles to the next status filter
func (h *Header) CycleFilter() {
	currentIndex := 0
	for i, f := range statusFilters {
		if f == h.selectedFilter {
			currentIndex = i
			break
		}
	}
	h.selectedFilter = statusFilters[(currentIndex+1)%len(statusFilters)]
}

// SetSearch updates the search state
func (h *Header) SetSearch(query string, mode bool) {
	h.searchQuery = query
	h.searchMode = mode
}

// Render renders the header
func (h Header) Render(width int) string {
	sectionStyle := lipgloss.NewStyle().
		Foreground(h.styles.PrimaryBlue).
		Bold(true).
		Padding(0, 2)

	status := sectionStyle.Render(fmt.Sprintf("📊 %s", h.title))
	filter := sectionStyle.Render(fmt.Sprintf("⚙️ Status: %s", h.selectedFilter))

	var searchText string
	if h.searchMode {
		searchText = fmt.Sprintf("🔍 Search: %s█", h.searchQuery)
	} else if h.searchQuery != "" {
		searchText = fmt.Sprintf("🔍 Search: %s", h.searchQuery)
	} else {
		searchText = "🔍 [/] to search"
	}

	searchStyle := lipgloss.NewStyle().
		Foreground(h.styles.TextSecondary).
		Padding(0, 2)
	if h.searchMode {
		searchStyle = searchStyle.Foreground(h.styles.PrimaryBlue)
	}

	leftSection := lipgloss.JoinHorizontal(lipgloss.Left, status, filter, searchStyle.Render(searchText))

	headerStyle := lipgloss.NewStyle().
		Background(h.styles.DarkBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(h.styles.BorderColor).
		Width(width)

	spacer := lipgloss.NewStyle().Width(max(0, width-lipgloss.Width(leftSection))).Render("")

	return headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSection, spacer))
}
