package tui

import "github.com/charmbracelet/lipgloss"

var (
	brandPrimary = lipgloss.Color("#7C3AED")
	brandAccent  = lipgloss.Color("#10B981")
	brandWarning = lipgloss.Color("#F59E0B")
	textMuted    = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(brandAccent).
			Bold(true).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brandAccent)

	previewStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(brandWarning)

	dimStyle = lipgloss.NewStyle().
			Foreground(textMuted)
)
