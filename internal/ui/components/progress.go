package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bookquest/internal/ui/theme"
)

const (
	filledCell = "█"
	emptyCell  = "░"
)

// ProgressBar displays a horizontal progress bar built from block glyphs,
// so it stays readable when colors are stripped.
type ProgressBar struct {
	Label   string
	Percent float64
	Suffix  string // printed after the bar, e.g. "320/383 XP"
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, suffix string, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Suffix:  suffix,
		Width:   width,
	}
}

// Cells returns how many of width cells are filled.
func (p ProgressBar) Cells(width int) int {
	filled := int(float64(width) * p.Percent)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return filled
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Label.Render(p.Label) + "  "
	}

	suffix := p.Suffix
	if suffix == "" {
		suffix = fmt.Sprintf("%d%%", int(p.Percent*100))
	}
	suffix = "  " + suffix

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := p.Cells(barWidth)

	result += theme.ProgressFilled.Render(strings.Repeat(filledCell, filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(emptyCell, barWidth-filled))
	result += theme.Hint.Render(suffix)

	return result
}
