package spacedrep

import "time"

// Card holds the spaced repetition state for a single flashcard.
type Card struct {
	EaseFactor     float64   `json:"ease_factor"`
	Interval       int       `json:"interval"`
	Repetitions    int       `json:"repetitions"`
	NextDueDate    time.Time `json:"next_due_date"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
}

// NewCard returns the state of a card that has never been reviewed.
func NewCard(now time.Time) Card {
	return Card{EaseFactor: DefaultEaseFactor, NextDueDate: now}
}

// IsNew reports whether the card has never been reviewed.
func (c *Card) IsNew() bool {
	return c.LastReviewedAt.IsZero()
}

// IsDue returns true if the card is due for review (at or past the due date).
func (c *Card) IsDue(now time.Time) bool {
	return !now.Before(c.NextDueDate)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func (c *Card) OverdueDays(now time.Time) float64 {
	if now.Before(c.NextDueDate) {
		return 0
	}
	return now.Sub(c.NextDueDate).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (c *Card) DaysUntilReview(now time.Time) int {
	if c.IsDue(now) {
		return 0
	}
	return int(c.NextDueDate.Sub(now).Hours()/24.0) + 1
}

// CardStatus describes a card's review status for display.
type CardStatus string

const (
	CardNew       CardStatus = "new"
	CardScheduled CardStatus = "scheduled"
	CardDue       CardStatus = "due"
	CardOverdue   CardStatus = "overdue"
)

// Status returns the review status for display. A card is overdue once it
// has been due for longer than half its current interval.
func (c *Card) Status(now time.Time) CardStatus {
	if c.IsNew() {
		return CardNew
	}
	if !c.IsDue(now) {
		return CardScheduled
	}
	grace := float64(max(c.Interval, 1)) * 0.5
	if c.OverdueDays(now) > grace {
		return CardOverdue
	}
	return CardDue
}
