// Package theme holds the terminal styles used by the lingodeck commands.
package theme

import (
	"fmt"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(12)

	Value = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Review outcomes
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Streak = lipgloss.NewStyle().
		Foreground(Accent)
)

// Containers
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)

	Front = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	Back = lipgloss.NewStyle().
		Foreground(Secondary)
)

// Field renders a "label value" line.
func Field(label string, value any) string {
	return Label.Render(label) + " " + Value.Render(fmt.Sprint(value))
}

// Delta renders a signed rating change, green when it is a gain.
func Delta(d float64) string {
	s := fmt.Sprintf("%+.1f", d)
	switch {
	case d > 0:
		return Correct.Render(s)
	case d < 0:
		return Incorrect.Render(s)
	}
	return Hint.Render(s)
}

// Outcome renders a 0/5 review rating as a word.
func Outcome(score int) string {
	if score == 5 {
		return Correct.Render("correct")
	}
	return Incorrect.Render("incorrect")
}
