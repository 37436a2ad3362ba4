package rating

import (
	"fmt"
	"math"
)

const (
	StreakBonusStart = 3
	StreakBonus      = 1.2
	ProgressiveStep  = 0.05
	ProgressiveCap   = 1.5
)

// StreakCurve selects how a run of correct answers amplifies a rating delta.
type StreakCurve int

const (
	// StreakFlat pays a single 1.2x bonus from the third correct answer on.
	StreakFlat StreakCurve = iota
	// StreakProgressive starts at 1.2x and grows 0.05 per position up to 1.5x.
	StreakProgressive
)

func (c StreakCurve) String() string {
	switch c {
	case StreakFlat:
		return "flat"
	case StreakProgressive:
		return "progressive"
	}
	return fmt.Sprintf("StreakCurve(%d)", int(c))
}

// Multiplier returns the delta multiplier for the given streak position.
// Fractional positions are floored.
func (c StreakCurve) Multiplier(position float64) (float64, error) {
	if position < 0 || math.IsNaN(position) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidStreak, position)
	}

	p := math.Floor(position)
	if p < StreakBonusStart {
		return 1.0, nil
	}

	switch c {
	case StreakProgressive:
		bonus := math.Min(ProgressiveStep*(p-StreakBonusStart), ProgressiveCap-StreakBonus)
		return StreakBonus + bonus, nil
	default:
		return StreakBonus, nil
	}
}
