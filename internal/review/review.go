// Package review ties a card review to the user's rating session and the
// card's spaced repetition schedule.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/lingodeck/internal/logger"
	"github.com/abhisek/lingodeck/internal/rating"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/spacedrep"
	"github.com/abhisek/lingodeck/internal/store"
)

var ErrCardNotFound = errors.New("card not found")

// Result is the outcome of reviewing one card.
type Result struct {
	Review *session.ReviewResult
	Card   store.Card
	Status spacedrep.CardStatus
}

// Reviewer records card reviews.
type Reviewer struct {
	cards     store.CardRepo
	sessions  *session.Service
	scheduler *spacedrep.Scheduler
	log       *logger.Logger
	now       func() time.Time
}

// NewReviewer creates a Reviewer. A nil log discards output.
func NewReviewer(cards store.CardRepo, sessions *session.Service, log *logger.Logger) *Reviewer {
	if log == nil {
		log = logger.Nop()
	}
	return &Reviewer{
		cards:     cards,
		sessions:  sessions,
		scheduler: spacedrep.NewScheduler(),
		log:       log,
		now:       time.Now,
	}
}

// ReviewCard submits a 0/5 review of cardID into the owner's active
// session, starting one if needed, and reschedules the card.
//
// The new schedule is written before the review is logged. If logging the
// review fails the previous schedule is restored, so a failed call leaves
// neither the card nor the rating changed and can be retried.
func (r *Reviewer) ReviewCard(ctx context.Context, cardID string, score int) (*Result, error) {
	if _, err := rating.ScoreFromRating(score); err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrInvalidArgs, err)
	}

	card, err := r.cards.FindCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("find card: %w", err)
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	opponent, err := r.opponentRating(ctx, card)
	if err != nil {
		return nil, err
	}

	sess, err := r.activeSession(ctx, card.UserID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	next, err := r.scheduler.Schedule(ScheduleOf(card), float64(score), now)
	if err != nil {
		return nil, fmt.Errorf("schedule card: %w", err)
	}
	prev := *card
	withSchedule(card, next)
	if err := r.cards.UpdateCardSchedule(ctx, card); err != nil {
		return nil, err
	}

	res, err := r.sessions.SubmitReview(ctx, session.ReviewInput{
		SessionID:      sess.ID,
		CardID:         card.ID,
		UserID:         card.UserID,
		Rating:         score,
		OpponentRating: &opponent,
	})
	if err != nil {
		if restoreErr := r.cards.UpdateCardSchedule(context.WithoutCancel(ctx), &prev); restoreErr != nil {
			r.log.Error("restore card schedule", "card", card.ID, "error", restoreErr)
		}
		return nil, err
	}

	r.log.Debug("card reviewed",
		"session_id", res.SessionID,
		"card", card.ID,
		"interval", card.Interval,
		"next_due", card.NextDueDate,
	)
	return &Result{Review: res, Card: *card, Status: next.Status(now)}, nil
}

func withSchedule(c *store.Card, s spacedrep.Card) {
	c.EaseFactor = s.EaseFactor
	c.Interval = s.Interval
	c.Repetitions = s.Repetitions
	c.NextDueDate = s.NextDueDate
	c.LastReviewedAt = &s.LastReviewedAt
}

func (r *Reviewer) opponentRating(ctx context.Context, card *store.Card) (float64, error) {
	if card.SentenceID == "" {
		return rating.DefaultRating, nil
	}
	s, err := r.cards.FindSentence(ctx, card.SentenceID)
	if err != nil {
		return 0, fmt.Errorf("find sentence: %w", err)
	}
	if s == nil || s.DifficultyRating == 0 {
		return rating.DefaultRating, nil
	}
	return rating.Clamp(s.DifficultyRating), nil
}

func (r *Reviewer) activeSession(ctx context.Context, userID string) (*session.Summary, error) {
	sess, err := r.sessions.Active(ctx, userID)
	if err != nil || sess != nil {
		return sess, err
	}
	sess, err = r.sessions.Start(ctx, userID)
	if errors.Is(err, session.ErrActiveSessionExists) {
		// Lost a race with another reviewer for the same user.
		sess, err = r.sessions.Active(ctx, userID)
		if err == nil && sess == nil {
			err = session.ErrSessionNotFound
		}
	}
	return sess, err
}

// ScheduleOf returns the spaced repetition state stored on c.
func ScheduleOf(c *store.Card) spacedrep.Card {
	out := spacedrep.Card{
		EaseFactor:  c.EaseFactor,
		Interval:    c.Interval,
		Repetitions: c.Repetitions,
		NextDueDate: c.NextDueDate,
	}
	if c.LastReviewedAt != nil {
		out.LastReviewedAt = *c.LastReviewedAt
	}
	return out
}
