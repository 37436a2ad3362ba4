package spacedrep

import "math"

// SM-2 parameters.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	// PassingRating is the lowest rating counted as a successful recall.
	PassingRating = 3.0
	MaxRating     = 5.0

	FirstInterval  = 1
	SecondInterval = 6
)

// EaseRule derives the next ease factor from the current one and a rating in [0, 5].
type EaseRule func(currentEase, rating float64) float64

// IntervalRule derives the next interval in days from the card as it was
// before the review.
type IntervalRule func(card Card, rating float64) int

// SM2Ease is the classic SuperMemo-2 ease update:
// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q)*0.02)), never below 1.3.
func SM2Ease(currentEase, rating float64) float64 {
	if currentEase <= 0 {
		currentEase = DefaultEaseFactor
	}
	miss := MaxRating - rating
	next := currentEase + (0.1 - miss*(0.08+miss*0.02))
	return math.Max(MinEaseFactor, next)
}

// SM2Interval restarts at one day on a failed recall, then grows
// 1 → 6 → ceil(interval * ease).
func SM2Interval(card Card, rating float64) int {
	if rating < PassingRating {
		return FirstInterval
	}
	switch card.Repetitions {
	case 0:
		return FirstInterval
	case 1:
		return SecondInterval
	}
	ease := card.EaseFactor
	if ease <= 0 {
		ease = DefaultEaseFactor
	}
	interval := max(card.Interval, FirstInterval)
	return int(math.Ceil(float64(interval) * ease))
}
