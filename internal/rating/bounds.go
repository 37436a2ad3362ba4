package rating

import (
	"fmt"
	"math"
)

const (
	LinearDampeningZone    = 50.0
	LinearMinFactor        = 0.1
	QuadraticDampeningZone = 100.0
	QuadraticMinFactor     = 0.05
)

// Dampening selects how deltas shrink as a rating approaches a bound.
type Dampening int

const (
	// DampenLinear shrinks proportionally inside a 50 point zone, floor 10%.
	DampenLinear Dampening = iota
	// DampenQuadratic shrinks by the squared distance inside a 100 point zone, floor 5%.
	DampenQuadratic
)

func (d Dampening) String() string {
	switch d {
	case DampenLinear:
		return "linear"
	case DampenQuadratic:
		return "quadratic"
	}
	return fmt.Sprintf("Dampening(%d)", int(d))
}

func (d Dampening) zone() float64 {
	if d == DampenQuadratic {
		return QuadraticDampeningZone
	}
	return LinearDampeningZone
}

func (d Dampening) factor(distance float64) float64 {
	normalized := distance / d.zone()
	if d == DampenQuadratic {
		return math.Max(QuadraticMinFactor, normalized*normalized)
	}
	return math.Max(LinearMinFactor, normalized)
}

// Bound returns the portion of proposed that may be applied to current
// without leaving [MinRating, MaxRating].
func (d Dampening) Bound(current, proposed float64) float64 {
	if current <= MinRating && proposed < 0 {
		return 0
	}
	if current >= MaxRating && proposed > 0 {
		return 0
	}

	target := current + proposed
	if target > MaxRating {
		return MaxRating - current
	}
	if target < MinRating {
		return MinRating - current
	}

	zone := d.zone()
	if target >= MinRating+zone && target <= MaxRating-zone {
		return proposed
	}

	factor := 1.0
	switch {
	case proposed > 0 && current > MaxRating-zone:
		factor = d.factor(MaxRating - current)
	case proposed < 0 && current < MinRating+zone:
		factor = d.factor(current - MinRating)
	}
	return proposed * factor
}
