package rating

import (
	"fmt"
	"strings"
	"time"
)

// Engine is one fixed combination of streak, recency and bounds strategies.
// The zero value is the live configuration (flat, daily, linear).
type Engine struct {
	Streak  StreakCurve
	Recency RecencyMode
	Bounds  Dampening
}

// DefaultEngine returns the configuration used by review sessions.
func DefaultEngine() Engine {
	return Engine{Streak: StreakFlat, Recency: RecencyDaily, Bounds: DampenLinear}
}

// ParseEngine builds an Engine from strategy names. Empty names keep the default.
func ParseEngine(streak, recency, bounds string) (Engine, error) {
	e := DefaultEngine()

	switch strings.ToLower(strings.TrimSpace(streak)) {
	case "", "flat":
	case "progressive":
		e.Streak = StreakProgressive
	default:
		return Engine{}, fmt.Errorf("unknown streak curve %q", streak)
	}

	switch strings.ToLower(strings.TrimSpace(recency)) {
	case "", "daily":
	case "granular":
		e.Recency = RecencyGranular
	default:
		return Engine{}, fmt.Errorf("unknown recency mode %q", recency)
	}

	switch strings.ToLower(strings.TrimSpace(bounds)) {
	case "", "linear":
	case "quadratic", "exponential":
		e.Bounds = DampenQuadratic
	default:
		return Engine{}, fmt.Errorf("unknown bounds dampening %q", bounds)
	}

	return e, nil
}

func (e Engine) String() string {
	return fmt.Sprintf("streak=%s recency=%s bounds=%s", e.Streak, e.Recency, e.Bounds)
}

// Input is a single review as the engine sees it.
type Input struct {
	Rating         float64 // subject rating before the review
	Opponent       float64 // sentence difficulty rating
	Score          Score
	StreakPosition int // streak including this review
	SessionStart   time.Time
	Now            time.Time
}

// Outcome carries every intermediate value of the pipeline.
type Outcome struct {
	Base       float64
	Multiplier float64
	Weight     float64
	// Scaled is the streak- and recency-adjusted delta before bounding.
	Scaled float64
	// Bounded is the delta actually applied to Rating.
	Bounded   float64
	NewRating float64
}

// Apply runs base change, streak multiplier, recency weight and bounds
// enforcement in order.
func (e Engine) Apply(in Input) (Outcome, error) {
	base, err := BaseChange(in.Rating, in.Opponent, in.Score)
	if err != nil {
		return Outcome{}, err
	}
	mult, err := e.Streak.Multiplier(float64(in.StreakPosition))
	if err != nil {
		return Outcome{}, err
	}
	weight, err := e.Recency.Weight(in.SessionStart, in.Now)
	if err != nil {
		return Outcome{}, err
	}

	scaled := base * mult * weight
	bounded := e.Bounds.Bound(in.Rating, scaled)

	return Outcome{
		Base:       base,
		Multiplier: mult,
		Weight:     weight,
		Scaled:     scaled,
		Bounded:    bounded,
		NewRating:  in.Rating + bounded,
	}, nil
}
