package spacedrep

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestSchedule_Success(t *testing.T) {
	s := NewScheduler()
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	now := due.Add(5 * time.Hour)
	card := Card{EaseFactor: 2.5, Interval: 1, Repetitions: 1, NextDueDate: due}

	got, err := s.Schedule(card, 5, now)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.Repetitions != 2 {
		t.Errorf("Repetitions = %d, want 2", got.Repetitions)
	}
	if got.Interval != 6 {
		t.Errorf("Interval = %d, want 6", got.Interval)
	}
	if math.Abs(got.EaseFactor-2.6) > 1e-9 {
		t.Errorf("EaseFactor = %v, want 2.6", got.EaseFactor)
	}
	if want := due.AddDate(0, 0, 6); !got.NextDueDate.Equal(want) {
		t.Errorf("NextDueDate = %v, want %v", got.NextDueDate, want)
	}
	if !got.LastReviewedAt.Equal(now) {
		t.Errorf("LastReviewedAt = %v, want %v", got.LastReviewedAt, now)
	}
}

func TestSchedule_Failure(t *testing.T) {
	s := NewScheduler()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	card := Card{EaseFactor: 2.5, Interval: 15, Repetitions: 3, NextDueDate: now}

	got, err := s.Schedule(card, 0, now)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.Repetitions != 0 || got.Interval != 1 {
		t.Errorf("got repetitions %d interval %d, want 0 and 1", got.Repetitions, got.Interval)
	}
	if got.EaseFactor >= card.EaseFactor {
		t.Errorf("EaseFactor = %v, want below %v", got.EaseFactor, card.EaseFactor)
	}
}

func TestSchedule_NoDueDateAnchorsOnNow(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	got, err := NewScheduler().Schedule(Card{}, 5, now)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if want := now.AddDate(0, 0, 1); !got.NextDueDate.Equal(want) {
		t.Errorf("NextDueDate = %v, want %v", got.NextDueDate, want)
	}
}

func TestSchedule_InvalidRating(t *testing.T) {
	s := NewScheduler()
	for _, r := range []float64{-1, 5.5, math.NaN()} {
		if _, err := s.Schedule(Card{}, r, time.Now()); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %v: err = %v, want ErrInvalidRating", r, err)
		}
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	s := NewScheduler()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	card := Card{EaseFactor: 2.2, Interval: 6, Repetitions: 2, NextDueDate: now}
	a, _ := s.Schedule(card, 4, now)
	b, _ := s.Schedule(card, 4, now)
	if a != b {
		t.Errorf("Schedule not deterministic: %+v vs %+v", a, b)
	}
}

func TestSchedule_CustomRules(t *testing.T) {
	s := &Scheduler{
		Ease:     func(e, _ float64) float64 { return e },
		Interval: func(Card, float64) int { return -3 },
	}
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := s.Schedule(Card{EaseFactor: 2, NextDueDate: now}, 4, now)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.Interval != 0 || !got.NextDueDate.Equal(now) {
		t.Errorf("negative interval not clamped: %+v", got)
	}
}
