package spacedrep

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidRating is returned when a rating falls outside [0, 5].
var ErrInvalidRating = errors.New("spacedrep: rating must be within [0, 5]")

// Scheduler computes the next review state of a card. It holds no mutable
// state and is safe for concurrent use.
type Scheduler struct {
	Ease     EaseRule
	Interval IntervalRule
}

// NewScheduler creates a scheduler using the SM-2 rules.
func NewScheduler() *Scheduler {
	return &Scheduler{Ease: SM2Ease, Interval: SM2Interval}
}

// Schedule applies one review to card. The next due date is measured from
// the card's current due date, or from now for a card without one.
func (s *Scheduler) Schedule(card Card, rating float64, now time.Time) (Card, error) {
	if math.IsNaN(rating) || rating < 0 || rating > MaxRating {
		return Card{}, fmt.Errorf("%w: got %v", ErrInvalidRating, rating)
	}

	repetitions := 0
	if rating >= PassingRating {
		repetitions = card.Repetitions + 1
	}

	interval := max(s.Interval(card, rating), 0)

	anchor := card.NextDueDate
	if anchor.IsZero() {
		anchor = now
	}

	return Card{
		EaseFactor:     s.Ease(card.EaseFactor, rating),
		Interval:       interval,
		Repetitions:    repetitions,
		NextDueDate:    anchor.AddDate(0, 0, interval),
		LastReviewedAt: now,
	}, nil
}
