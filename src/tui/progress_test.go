package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestProgressModel_InitialState(t *testing.T) {
	model := NewProgressModel()

	assert.Empty(t, model.stage)
	assert.False(t, model.done, "expected not done initially")
}

func TestProgressModel_UpdateWithStage(t *testing.T) {
	model := NewProgressModel()

	model, _ = model.Update(ProgressMsg{Stage: "Connecting to run topic"})

	assert.Equal(t, "Connecting to run topic", model.stage)
	assert.Contains(t, model.View(), "Connecting to run topic")
}

func TestProgressModel_UpdateWithProgress(t *testing.T) {
	model := NewProgressModel()

	model, _ = model.Update(ProgressMsg{Stage: "Loading history", Current: 3, Total: 5})

	view := model.View()
	assert.Contains(t, view, "3/5")
	assert.Contains(t, view, "60%")
}

func TestProgressModel_Complete(t *testing.T) {
	model := NewProgressModel()

	model, _ = model.Update(ProgressMsg{Stage: "complete"})

	assert.True(t, model.done, "expected model to be done after 'complete' stage")
	assert.Contains(t, model.View(), "No more updates")
}

func TestProgressModel_ImplementsUpdate(t *testing.T) {
	var _ interface {
		Update(tea.Msg) (ProgressModel, tea.Cmd)
	} = ProgressModel{}
}
