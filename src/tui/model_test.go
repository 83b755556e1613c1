package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langdetect-agent/src/contracts"
)

func testItems() []Item {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []Item{
		{
			Run: contracts.RunRecord{
				ID:           "run-3",
				RepoURL:      "https://github.com/acme/widget",
				Endpoint:     "https://hooks.example.com/lang",
				Language:     "Go",
				NotifyStatus: 200,
				Status:       contracts.RunStatusSucceeded,
				StartedAt:    started,
				FinishedAt:   started.Add(2 * time.Second),
			},
			Log: []string{"[INFO] Detected language: Go", "[INFO] Successful - Triggering API: https://hooks.example.com/lang?language=Go"},
		},
		{
			Run: contracts.RunRecord{
				ID:        "run-2",
				RepoURL:   "https://github.com/acme/gadget",
				Endpoint:  "https://hooks.example.com/lang",
				Language:  "unknown",
				Status:    contracts.RunStatusFailed,
				Error:     "detect: repository not found",
				StartedAt: started.Add(-time.Hour),
			},
		},
		{
			Run: contracts.RunRecord{
				ID:        "run-1",
				RepoURL:   "https://github.com/acme/gizmo",
				Status:    contracts.RunStatusRunning,
				StartedAt: started.Add(-2 * time.Hour),
			},
		},
	}
}

func sized(t *testing.T, m MainModel, width, height int) MainModel {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	out, ok := updated.(MainModel)
	require.True(t, ok)
	return out
}

func key(t *testing.T, m MainModel, msg tea.KeyMsg) MainModel {
	t.Helper()
	updated, _ := m.Update(msg)
	out, ok := updated.(MainModel)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMainModel_ViewBeforeResize(t *testing.T) {
	m := NewMainModel(testItems(), nil)
	assert.Contains(t, m.View(), "Initializing")
}

func TestMainModel_RendersRunsAndDetail(t *testing.T) {
	m := sized(t, NewMainModel(testItems(), nil), 140, 30)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Runs: 3 (1 failed)")
	assert.Contains(t, view, "SUCCEEDED")
	assert.Contains(t, view, "Run: run-3")

	detail := ansi.Strip(m.detailViewport.View())
	assert.Contains(t, detail, "Language:")
	assert.Contains(t, detail, "HTTP 200")
	assert.Contains(t, detail, "Build log:")
}

func TestMainModel_StatusFilterCycles(t *testing.T) {
	m := sized(t, NewMainModel(testItems(), nil), 140, 30)
	require.Equal(t, 3, m.listView.Len())

	m = key(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "SUCCEEDED", m.header.GetFilter())
	assert.Equal(t, 1, m.listView.Len())

	m = key(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "FAILED", m.header.GetFilter())
	selected, ok := m.listView.GetSelectedItem()
	require.True(t, ok)
	assert.Equal(t, "run-2", selected.Run.ID)
	assert.Contains(t, ansi.Strip(m.detailViewport.View()), "repository not found")

	m = key(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = key(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "ALL", m.header.GetFilter())
	assert.Equal(t, 3, m.listView.Len())
}

func TestMainModel_Search(t *testing.T) {
	m := sized(t, NewMainModel(testItems(), nil), 140, 30)

	m = key(t, m, runes("/"))
	require.True(t, m.searchMode)
	m = key(t, m, runes("gad"))
	assert.Equal(t, 1, m.listView.Len())

	m = key(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "ga", m.searchQuery)

	m = key(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searchMode)
	assert.Equal(t, "ga", m.searchQuery)

	// matches log lines too
	m = key(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = key(t, m, runes("/"))
	m = key(t, m, runes("triggering"))
	require.Equal(t, 1, m.listView.Len())
	selected, _ := m.listView.GetSelectedItem()
	assert.Equal(t, "run-3", selected.Run.ID)

	m = key(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.searchQuery)
	assert.Equal(t, 3, m.listView.Len())
}

func TestMainModel_DetailFocus(t *testing.T) {
	m := sized(t, NewMainModel(testItems(), nil), 140, 30)

	m = key(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.detailFocused)
	assert.Contains(t, ansi.Strip(m.View()), "Back")

	m = key(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.detailFocused)
}

func TestMainModel_RunUpdates(t *testing.T) {
	updates := make(chan contracts.RunRecord, 1)
	m := sized(t, NewMainModel(nil, updates), 120, 30)
	assert.Equal(t, StatusLoading, m.status)
	assert.Contains(t, ansi.Strip(m.View()), "Waiting for runs")

	updates <- contracts.RunRecord{ID: "req-1", RepoURL: "https://github.com/acme/widget", Status: contracts.RunStatusRunning, StartedAt: time.Now()}
	msg := waitForRun(updates)()
	updated, cmd := m.Update(msg)
	m = updated.(MainModel)
	assert.NotNil(t, cmd, "viewer keeps listening")
	assert.Equal(t, StatusReady, m.status)
	require.Len(t, m.items, 1)

	// same ID replaces the running record
	updated, _ = m.Update(RunMsg{Item: Item{Run: contracts.RunRecord{ID: "req-1", Status: contracts.RunStatusSucceeded, Language: "Go"}}})
	m = updated.(MainModel)
	require.Len(t, m.items, 1)
	assert.Equal(t, contracts.RunStatusSucceeded, m.items[0].Run.Status)

	close(updates)
	_, ok := waitForRun(updates)().(updatesClosedMsg)
	assert.True(t, ok)
}

func TestMainModel_NoLineExceedsTerminalWidth(t *testing.T) {
	items := testItems()
	long := strings.Repeat("The quick brown fox jumps over the lazy dog again and again ", 6)
	items[0].Run.Error = long
	items[0].Run.RepoURL = "https://github.com/acme/" + strings.Repeat("very-long-repository-name-", 8)
	items[0].Log = append(items[0].Log, long, "\x1b[31m"+long+"\x1b[0m", "https://hooks.example.com/"+strings.Repeat("x", 200))

	for _, width := range []int{80, 100, 160} {
		t.Run(fmt.Sprintf("width=%d", width), func(t *testing.T) {
			m := sized(t, NewMainModel(items, nil), width, 30)
			for i, line := range strings.Split(m.View(), "\n") {
				assert.LessOrEqual(t, ansi.StringWidth(line), width, "line %d: %q", i, ansi.Strip(line))
			}
		})
	}
}

func TestRenderDetail_MultiLineErrorKeepsLineBreaks(t *testing.T) {
	m := NewMainModel(nil, nil)
	item := Item{Run: contracts.RunRecord{
		ID:     "run-9",
		Status: contracts.RunStatusFailed,
		Error:  "notify: webhook returned 502\nretry later",
	}}

	detail := ansi.Strip(m.renderDetail(item, 80))
	assert.Contains(t, detail, "notify: webhook returned 502\nretry later")
}
