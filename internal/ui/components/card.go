package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bookquest/internal/ui/theme"
)

// Field is one labelled value of a Card.
type Field struct {
	Label string
	Value string
}

// Fields renders label/value pairs with the labels padded to one column.
func Fields(fields []Field) string {
	width := 0
	for _, f := range fields {
		if w := lipgloss.Width(f.Label); w > width {
			width = w
		}
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		pad := strings.Repeat(" ", width-lipgloss.Width(f.Label))
		lines = append(lines, theme.Label.Render(f.Label+pad)+"  "+theme.Value.Render(f.Value))
	}
	return strings.Join(lines, "\n")
}

// Card wraps a title and body in a rounded border.
func Card(title, body string) string {
	content := body
	if title != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, theme.Title.Render(title), "", body)
	}
	return theme.Card.Render(content)
}
