package tui

import (
	"github.com/charmbracelet/lipgloss"

	"langdetect-agent/src/contracts"
)

// StyleConfig holds all customizable style colors for the history UI.
type StyleConfig struct {
	// Primary colors
	PrimaryBlue    lipgloss.Color
	AccentBlue     lipgloss.Color
	DarkBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color

	// Status colors
	SuccessColor lipgloss.Color
	FailureColor lipgloss.Color
	RunningColor lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		AccentBlue:     lipgloss.Color("#4285F4"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		SuccessColor:   lipgloss.Color("#34A853"),
		FailureColor:   lipgloss.Color("#EA4335"),
		RunningColor:   lipgloss.Color("#FBBC04"),
	}
}

// StatusColor returns the color for a run status.
func (s *StyleConfig) StatusColor(status string) lipgloss.Color {
	switch status {
	case contracts.RunStatusSucceeded:
		return s.SuccessColor
	case contracts.RunStatusFailed:
		return s.FailureColor
	default:
		return s.RunningColor
	}
}

// TitleStyle returns a title lipgloss style using this config
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// PanelStyle returns a bordered panel style; focused panels use the accent color.
func (s *StyleConfig) PanelStyle(focused bool) lipgloss.Style {
	border := s.BorderColor
	if focused {
		border = s.AccentBlue
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}
