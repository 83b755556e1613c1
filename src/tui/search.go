package tui

import (
	"strings"
)

// applyFilter filters items by status and search query.
func (m *MainModel) applyFilter() {
	filter := m.header.GetFilter()

	var filtered []Item
	query := strings.ToLower(strings.TrimSpace(m.searchQuery))
	for _, item := range m.items {
		if filter != "ALL" && item.StatusLabel() != filter {
			continue
		}
		if query != "" && !item.Matches(query) {
			continue
		}
		filtered = append(filtered, item)
	}

	m.listView.SetItems(filtered)
	if selectedItem, ok := m.listView.GetSelectedItem(); ok {
		m.updateDetailContent(selectedItem)
	} else {
		m.detailViewport.SetContent("")
	}
}
