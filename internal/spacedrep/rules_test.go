package spacedrep

import (
	"math"
	"testing"
)

func TestSM2Ease(t *testing.T) {
	tests := []struct {
		ease   float64
		rating float64
		want   float64
	}{
		{2.5, 5, 2.6},
		{2.5, 4, 2.5},
		{2.5, 3, 2.36},
		{2.5, 0, 1.7},
		{1.3, 0, 1.3},
		{0, 5, 2.6},
	}
	for _, tt := range tests {
		got := SM2Ease(tt.ease, tt.rating)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SM2Ease(%v, %v) = %v, want %v", tt.ease, tt.rating, got, tt.want)
		}
	}
}

func TestSM2Ease_NeverBelowFloor(t *testing.T) {
	ease := DefaultEaseFactor
	for i := 0; i < 20; i++ {
		ease = SM2Ease(ease, 0)
		if ease < MinEaseFactor {
			t.Fatalf("ease fell to %v", ease)
		}
	}
}

func TestSM2Interval(t *testing.T) {
	tests := []struct {
		name   string
		card   Card
		rating float64
		want   int
	}{
		{"failure resets", Card{Repetitions: 4, Interval: 30, EaseFactor: 2.5}, 0, 1},
		{"first success", Card{EaseFactor: 2.5}, 5, 1},
		{"second success", Card{Repetitions: 1, Interval: 1, EaseFactor: 2.5}, 5, 6},
		{"third success", Card{Repetitions: 2, Interval: 6, EaseFactor: 2.5}, 5, 15},
		{"growing", Card{Repetitions: 3, Interval: 15, EaseFactor: 2.0}, 4, 30},
		{"unset ease", Card{Repetitions: 2, Interval: 6}, 5, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SM2Interval(tt.card, tt.rating); got != tt.want {
				t.Errorf("SM2Interval() = %d, want %d", got, tt.want)
			}
		})
	}
}
