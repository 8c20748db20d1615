// Package theme holds the colors and styles used by the command output.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, warm paper tones with a few bright accents
var (
	Primary   = lipgloss.Color("#B45309") // Amber
	Secondary = lipgloss.Color("#0D9488") // Teal
	Accent    = lipgloss.Color("#7C3AED") // Violet
	Success   = lipgloss.Color("#16A34A") // Green
	Error     = lipgloss.Color("#DC2626") // Red
	Warning   = lipgloss.Color("#D97706") // Orange
	Text      = lipgloss.Color("#F5F5F4") // Stone
	TextDim   = lipgloss.Color("#A8A29E") // Warm gray
	Border    = lipgloss.Color("#57534E") // Dark stone
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Value = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	AtRisk = lipgloss.NewStyle().
		Foreground(Warning)

	Celebrate = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)
