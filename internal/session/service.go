package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/lingodeck/internal/logger"
	"github.com/abhisek/lingodeck/internal/metrics"
	"github.com/abhisek/lingodeck/internal/rating"
	"github.com/abhisek/lingodeck/internal/store"
)

const (
	// MinReviewsToFinalize is the number of reviews a session needs before
	// its rating can be committed to the user.
	MinReviewsToFinalize = 3

	// StreakWindow is how many recent review logs are scanned when deriving
	// the current streak.
	StreakWindow = 10

	// DefaultOpponentRating is used when a review has no sentence rating.
	DefaultOpponentRating = rating.DefaultRating
)

// Summary describes a session as seen by callers.
type Summary struct {
	ID             string
	UserID         string
	Status         store.SessionStatus
	StartingRating float64
	EndingRating   float64
	ReviewCount    int
	StartedAt      time.Time
	EndedAt        *time.Time
}

// ReviewInput is a single review submission.
type ReviewInput struct {
	SessionID      string   `validate:"required"`
	CardID         string   `validate:"required"`
	UserID         string   `validate:"required"`
	Rating         int      `validate:"oneof=0 5"`
	OpponentRating *float64 `validate:"omitempty,gt=0"`
}

// ReviewResult is returned by SubmitReview.
type ReviewResult struct {
	ReviewID            string
	SessionID           string
	StreakPosition      int
	EloImpact           float64
	AppliedChange       float64
	SessionEndingRating float64
}

// FinalizeResult is returned by Finalize.
type FinalizeResult struct {
	SessionID      string
	StartingRating float64
	EndingRating   float64
	ReviewCount    int
	EndedAt        time.Time
}

// RatingChange is the net rating movement over the session.
func (r *FinalizeResult) RatingChange() float64 {
	return r.EndingRating - r.StartingRating
}

// Config holds the collaborators of Service. Zero fields get defaults.
type Config struct {
	Engine  rating.Engine
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

// Service runs the session lifecycle: start, review, finalize. It keeps no
// session state in memory; every operation is a transaction against the
// repository, so concurrent callers are serialized by the store.
type Service struct {
	repo     store.ReviewRepo
	engine   rating.Engine
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	validate *validator.Validate
}

// NewService creates a session service backed by repo.
func NewService(repo store.ReviewRepo, cfg Config) *Service {
	s := &Service{
		repo:     repo,
		engine:   cfg.Engine,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
		now:      cfg.Clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Start opens a new ACTIVE session for userID, seeded with the user's
// current rating.
func (s *Service) Start(ctx context.Context, userID string) (*Summary, error) {
	if userID == "" {
		return nil, s.fail("start", fmt.Errorf("%w: user id is required", ErrInvalidArgs))
	}

	now := s.now()
	var sess *store.Session
	err := s.repo.InTx(ctx, func(tx store.ReviewRepo) error {
		u, err := tx.FindUser(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUserNotFound
		}

		active, err := tx.FindActiveSession(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrActiveSessionExists
		}

		sess = &store.Session{
			UserID:         userID,
			Status:         store.SessionActive,
			StartingRating: u.CurrentRating,
			EndingRating:   u.CurrentRating,
			StartedAt:      now,
		}
		if err := tx.CreateSession(ctx, sess); err != nil {
			if errors.Is(err, store.ErrActiveSessionConflict) {
				return ErrActiveSessionExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("start", err, "user_id", userID)
	}

	s.metrics.SessionStarted()
	s.log.Info("session started", "user_id", userID, "session_id", sess.ID, "rating", sess.StartingRating)
	return summarize(sess, 0), nil
}

// Active returns the user's ACTIVE session, or nil if there is none.
func (s *Service) Active(ctx context.Context, userID string) (*Summary, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgs)
	}
	sess, err := s.repo.FindActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	n, err := s.repo.CountReviewLogs(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	return summarize(sess, n), nil
}

// History lists the user's sessions, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]Summary, error) {
	list, err := s.repo.ListSessions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]Summary, 0, len(list))
	for _, ss := range list {
		out = append(out, *summarize(&ss.Session, ss.ReviewCount))
	}
	return out, nil
}

// SubmitReview scores one review against the session's running rating and
// persists the log and new ending rating in a single transaction.
func (s *Service) SubmitReview(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, s.fail("review", fmt.Errorf("%w: %v", ErrInvalidArgs, err))
	}
	score, err := rating.ScoreFromRating(in.Rating)
	if err != nil {
		return nil, s.fail("review", err)
	}
	opponent := DefaultOpponentRating
	if in.OpponentRating != nil {
		opponent = *in.OpponentRating
		if math.IsNaN(opponent) || math.IsInf(opponent, 0) {
			return nil, s.fail("review", fmt.Errorf("%w: opponent rating %v", ErrInvalidArgs, opponent))
		}
	}

	now := s.now()
	var result *ReviewResult
	err = s.repo.InTx(ctx, func(tx store.ReviewRepo) error {
		sess, err := tx.LockActiveSession(ctx, in.SessionID, in.UserID, now)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrSessionNotFound
		}

		recent, err := tx.FindRecentReviewLogs(ctx, sess.ID, StreakWindow)
		if err != nil {
			return err
		}
		streak := 0
		if score == rating.Correct {
			streak = currentStreak(recent) + 1
		}

		out, err := s.engine.Apply(rating.Input{
			Rating:         sess.EndingRating,
			Opponent:       opponent,
			Score:          score,
			StreakPosition: streak,
			SessionStart:   sess.StartedAt,
			Now:            now,
		})
		if err != nil {
			return err
		}

		entry := &store.ReviewLog{
			SessionID:      sess.ID,
			CardID:         in.CardID,
			UserID:         in.UserID,
			Rating:         in.Rating,
			StreakPosition: streak,
			EloImpact:      out.Scaled,
			OpponentRating: opponent,
			RatingBefore:   sess.EndingRating,
			RatingAfter:    out.NewRating,
			CreatedAt:      now,
		}
		if err := tx.CreateReviewLog(ctx, entry); err != nil {
			return err
		}
		if err := tx.UpdateSessionEndingRating(ctx, sess.ID, out.NewRating, now); err != nil {
			return err
		}

		result = &ReviewResult{
			ReviewID:            entry.ID,
			SessionID:           sess.ID,
			StreakPosition:      streak,
			EloImpact:           out.Scaled,
			AppliedChange:       out.Bounded,
			SessionEndingRating: out.NewRating,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("review", err, "session_id", in.SessionID, "user_id", in.UserID)
	}

	s.metrics.ObserveReview(score == rating.Correct, result.EloImpact)
	s.log.Debug("review recorded",
		"session_id", result.SessionID,
		"streak", result.StreakPosition,
		"elo_impact", result.EloImpact,
		"rating", result.SessionEndingRating,
	)
	return result, nil
}

// Finalize completes an ACTIVE session and commits its ending rating to the
// user.
func (s *Service) Finalize(ctx context.Context, sessionID, userID string) (*FinalizeResult, error) {
	if sessionID == "" || userID == "" {
		return nil, s.fail("finalize", fmt.Errorf("%w: session id and user id are required", ErrInvalidArgs))
	}

	now := s.now()
	var result *FinalizeResult
	err := s.repo.InTx(ctx, func(tx store.ReviewRepo) error {
		sess, err := tx.LockActiveSession(ctx, sessionID, userID, now)
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrSessionNotFound
		}

		n, err := tx.CountReviewLogs(ctx, sess.ID)
		if err != nil {
			return err
		}
		if n < MinReviewsToFinalize {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientReviews, n, MinReviewsToFinalize)
		}

		if err := tx.CompleteSession(ctx, sess.ID, now); err != nil {
			return err
		}
		if err := tx.UpdateUserRating(ctx, userID, sess.EndingRating, now); err != nil {
			return err
		}

		result = &FinalizeResult{
			SessionID:      sess.ID,
			StartingRating: sess.StartingRating,
			EndingRating:   sess.EndingRating,
			ReviewCount:    n,
			EndedAt:        now,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("finalize", err, "session_id", sessionID, "user_id", userID)
	}

	s.metrics.SessionFinalized(result.RatingChange())
	s.log.Info("session finalized",
		"session_id", result.SessionID,
		"user_id", userID,
		"reviews", result.ReviewCount,
		"rating", result.EndingRating,
		"change", result.RatingChange(),
	)
	return result, nil
}

// currentStreak counts the run of correct reviews at the head of logs,
// which are ordered most recent first.
func currentStreak(logs []store.ReviewLog) int {
	n := 0
	for _, l := range logs {
		if l.Rating != rating.ReviewCorrect {
			break
		}
		n++
	}
	return n
}

// fail logs and records err, wrapping internal failures with the operation
// name. Domain errors are returned unchanged.
func (s *Service) fail(op string, err error, keysAndValues ...any) error {
	code := Code(err)
	s.metrics.ObserveError(code)
	kv := append([]any{"op", op, "code", code, "error", err}, keysAndValues...)
	if code == CodeInternal {
		s.log.Error("session operation failed", kv...)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Warn("session operation rejected", kv...)
	return err
}

func summarize(sess *store.Session, reviews int) *Summary {
	return &Summary{
		ID:             sess.ID,
		UserID:         sess.UserID,
		Status:         sess.Status,
		StartingRating: sess.StartingRating,
		EndingRating:   sess.EndingRating,
		ReviewCount:    reviews,
		StartedAt:      sess.StartedAt,
		EndedAt:        sess.EndedAt,
	}
}
