// Package components renders composite terminal widgets.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingodeck/internal/rating"
	"github.com/abhisek/lingodeck/internal/ui/theme"
)

// RatingGauge shows where a rating sits between the rating bounds.
type RatingGauge struct {
	Label  string
	Rating float64
	Width  int
}

// NewRatingGauge creates a gauge of the given total width.
func NewRatingGauge(label string, r float64, width int) RatingGauge {
	return RatingGauge{Label: label, Rating: r, Width: width}
}

// Fraction returns the rating's position in [0, 1] between the bounds.
func (g RatingGauge) Fraction() float64 {
	f := (g.Rating - rating.MinRating) / (rating.MaxRating - rating.MinRating)
	return min(max(f, 0), 1)
}

// View renders the gauge.
func (g RatingGauge) View() string {
	var b strings.Builder
	if g.Label != "" {
		b.WriteString(theme.Label.Render(g.Label) + " ")
	}

	suffix := fmt.Sprintf("  %4.0f", g.Rating)
	barWidth := max(g.Width-lipgloss.Width(b.String())-len(suffix), 4)
	filled := int(float64(barWidth) * g.Fraction())

	b.WriteString(lipgloss.NewStyle().
		Background(theme.Secondary).
		Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", barWidth-filled)))
	b.WriteString(theme.Value.Render(suffix))
	return b.String()
}
