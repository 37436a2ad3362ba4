package rating

import (
	"errors"
	"fmt"
	"math"
)

// KFactor is the maximum swing of a single ELO update.
const KFactor = 32

// Rating domain shared by users and sentences.
const (
	DefaultRating = 1200.0
	MinRating     = 800.0
	MaxRating     = 2000.0
)

var (
	ErrInvalidScore     = errors.New("rating: score must be 0 or 1")
	ErrInvalidStreak    = errors.New("rating: streak position must be non-negative")
	ErrInvalidTimestamp = errors.New("rating: invalid timestamp")
)

// Score is the binary outcome of a review as seen by the ELO model.
type Score int

const (
	Incorrect Score = 0
	Correct   Score = 1
)

// Review ratings as stored in review logs (0 = missed, 5 = recalled).
const (
	ReviewIncorrect = 0
	ReviewCorrect   = 5
)

// ScoreFromRating converts a stored review rating (0 or 5) into a Score.
func ScoreFromRating(r int) (Score, error) {
	switch r {
	case ReviewIncorrect:
		return Incorrect, nil
	case ReviewCorrect:
		return Correct, nil
	}
	return 0, fmt.Errorf("%w: review rating %d is not %d or %d", ErrInvalidScore, r, ReviewIncorrect, ReviewCorrect)
}

// ExpectedScore is the probability that subject beats opponent.
func ExpectedScore(subject, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-subject)/400))
}

// BaseChange returns the unscaled ELO delta for subject after a single
// outcome against opponent.
func BaseChange(subject, opponent float64, actual Score) (float64, error) {
	if actual != Incorrect && actual != Correct {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidScore, actual)
	}
	return KFactor * (float64(actual) - ExpectedScore(subject, opponent)), nil
}

// Clamp forces r into [MinRating, MaxRating].
func Clamp(r float64) float64 {
	return math.Max(MinRating, math.Min(MaxRating, r))
}
