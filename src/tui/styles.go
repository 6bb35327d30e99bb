package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds all customizable style colors for the runs dashboard.
type StyleConfig struct {
	PrimaryBlue    lipgloss.Color
	DarkBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color

	// Status colors
	SuccessColor lipgloss.Color
	FailureColor lipgloss.Color
	RunningColor lipgloss.Color
	SkippedColor lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		SuccessColor:   lipgloss.Color("#34A853"),
		FailureColor:   lipgloss.Color("#EA4335"),
		RunningColor:   lipgloss.Color("#FBBC04"),
		SkippedColor:   lipgloss.Color("#9AA0A6"),
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

// StatusStyle returns the style for a run or stage status string.
func (s *StyleConfig) StatusStyle(status string) lipgloss.Style {
	color := s.TextSecondary
	switch status {
	case "succeeded", "success":
		color = s.SuccessColor
	case "failed", "failure", "aborted":
		color = s.FailureColor
	case "running", "pending":
		color = s.RunningColor
	case "skipped":
		color = s.SkippedColor
	}
	return lipgloss.NewStyle().Foreground(color)
}
