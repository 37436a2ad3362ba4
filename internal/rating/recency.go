package rating

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// DailyDecay is the weight lost per elapsed day.
	DailyDecay = 0.95
	// GranularEpsilonDays is the window in which granular weighting still returns 1.
	GranularEpsilonDays = 0.01
)

const day = 24 * time.Hour

// RecencyMode selects how elapsed time since session start decays a delta.
type RecencyMode int

const (
	// RecencyDaily decays by whole elapsed days; anything under a day weighs 1.
	RecencyDaily RecencyMode = iota
	// RecencyGranular decays by fractional days past a small epsilon.
	RecencyGranular
)

func (m RecencyMode) String() string {
	switch m {
	case RecencyDaily:
		return "daily"
	case RecencyGranular:
		return "granular"
	}
	return fmt.Sprintf("RecencyMode(%d)", int(m))
}

// Weight returns a factor in (0, 1] for a session that began at start,
// evaluated at now. A session start in the future is not penalised.
func (m RecencyMode) Weight(start, now time.Time) (float64, error) {
	if start.IsZero() || now.IsZero() {
		return 0, ErrInvalidTimestamp
	}

	days := float64(now.Sub(start)) / float64(day)
	if days < 0 {
		return 1.0, nil
	}

	switch m {
	case RecencyGranular:
		if days < GranularEpsilonDays {
			return 1.0, nil
		}
		return math.Pow(DailyDecay, days), nil
	default:
		if days < 1 {
			return 1.0, nil
		}
		return math.Pow(DailyDecay, math.Floor(days)), nil
	}
}

// ParseInstant normalises the timestamp shapes accepted at the boundary
// (time.Time, unix milliseconds, RFC 3339 strings) into a time.Time.
func ParseInstant(v any) (time.Time, error) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return time.Time{}, ErrInvalidTimestamp
		}
		t = *x
	case int64:
		t = time.UnixMilli(x)
	case int:
		t = time.UnixMilli(int64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, x)
		}
		t = time.UnixMilli(int64(x))
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		t = parsed
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, v)
	}
	if t.IsZero() {
		return time.Time{}, ErrInvalidTimestamp
	}
	return t, nil
}
