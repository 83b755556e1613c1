package tui

import (
	"strings"

	"langdetect-agent/src/contracts"
)

// Item represents a run displayed in the history list.
// It wraps the domain RunRecord and implements bubbles/list.Item.
type Item struct {
	Run contracts.RunRecord
	// Log holds the build log lines when the run was performed in this process.
	Log []string
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Run.RepoURL + " " + i.Run.Language }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return i.Run.RepoURL }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string { return i.Run.Language }

// StatusLabel returns the upper-case run status.
func (i Item) StatusLabel() string {
	return strings.ToUpper(i.Run.Status)
}

// Matches reports whether the lower-cased query occurs in any displayed field or log line.
func (i Item) Matches(query string) bool {
	fields := []string{i.Run.ID, i.Run.RepoURL, i.Run.Endpoint, i.Run.Language, i.Run.Status, i.Run.Error}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	for _, line := range i.Log {
		if strings.Contains(strings.ToLower(line), query) {
			return true
		}
	}
	return false
}
