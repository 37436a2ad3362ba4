package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var (
	userColumns      = []string{"id", "email", "native_language", "current_rating", "last_session_at", "created_at"}
	sessionColumns   = []string{"id", "user_id", "status", "starting_rating", "ending_rating", "started_at", "ended_at", "updated_at"}
	reviewLogColumns = []string{
		"id", "sequence", "session_id", "card_id", "user_id", "rating", "streak_position",
		"elo_impact", "opponent_rating", "rating_before", "rating_after", "created_at",
	}
)

// reviewRepo implements ReviewRepo. drv is nil when the repo is bound to a
// transaction.
type reviewRepo struct {
	drv *entsql.Driver
	q   dialect.ExecQuerier
	seq *sequenceCounter
}

func (r *reviewRepo) InTx(ctx context.Context, fn func(ReviewRepo) error) error {
	if r.drv == nil {
		return fn(r)
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(&reviewRepo{q: tx, seq: r.seq}); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- users ---

func (r *reviewRepo) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC()

	query, args := builder.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.NativeLanguage, u.CurrentRating, nullableTime(u.LastSessionAt), u.CreatedAt).
		Query()
	if err := r.q.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *reviewRepo) FindUser(ctx context.Context, id string) (*User, error) {
	return r.findUser(ctx, entsql.EQ("id", id))
}

func (r *reviewRepo) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findUser(ctx, entsql.EQ("email", email))
}

func (r *reviewRepo) findUser(ctx context.Context, p *entsql.Predicate) (*User, error) {
	query, args := builder.Select(userColumns...).
		From(builder.Table("users")).
		Where(p).
		Limit(1).
		Query()

	var found *User
	err := queryRows(ctx, r.q, query, args, func(rows *entsql.Rows) error {
		var (
			u    User
			last sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.NativeLanguage, &u.CurrentRating, &last, &u.CreatedAt); err != nil {
			return err
		}
		u.LastSessionAt = timePtr(last)
		u.CreatedAt = u.CreatedAt.UTC()
		found = &u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return found, nil
}

func (r *reviewRepo) UpdateUserRating(ctx context.Context, userID string, rating float64, lastSessionAt time.Time) error {
	query, args := builder.Update("users").
		Set("current_rating", rating).
		Set("last_session_at", lastSessionAt.UTC()).
		Where(entsql.EQ("id", userID)).
		Query()
	n, err := execAffected(ctx, r.q, query, args)
	if err != nil {
		return fmt.Errorf("update user rating: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update user rating: user %s: %w", userID, sql.ErrNoRows)
	}
	return nil
}

// --- sessions ---

func (r *reviewRepo) CreateSession(ctx context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SessionActive
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	s.StartedAt = s.StartedAt.UTC()
	s.UpdatedAt = s.StartedAt

	var active any
	if s.Status == SessionActive {
		active = s.UserID
	}

	query, args := builder.Insert("sessions").
		Columns(append(sessionColumns, "active_user_id")...).
		Values(s.ID, s.UserID, string(s.Status), s.StartingRating, s.EndingRating,
			s.StartedAt, nullableTime(s.EndedAt), s.UpdatedAt, active).
		Query()
	if err := r.q.Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err, "active_user_id") {
			return ErrActiveSessionConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *reviewRepo) FindSession(ctx context.Context, id string) (*Session, error) {
	return r.findSession(ctx, entsql.EQ("id", id))
}

func (r *reviewRepo) FindActiveSession(ctx context.Context, userID string) (*Session, error) {
	return r.findSession(ctx, entsql.EQ("active_user_id", userID))
}

func (r *reviewRepo) LockActiveSession(ctx context.Context, sessionID, userID string, now time.Time) (*Session, error) {
	query, args := builder.Update("sessions").
		Set("updated_at", now.UTC()).
		Where(entsql.And(
			entsql.EQ("id", sessionID),
			entsql.EQ("user_id", userID),
			entsql.EQ("status", string(SessionActive)),
		)).
		Query()
	n, err := execAffected(ctx, r.q, query, args)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return r.FindSession(ctx, sessionID)
}

func (r *reviewRepo) findSession(ctx context.Context, p *entsql.Predicate) (*Session, error) {
	query, args := builder.Select(sessionColumns...).
		From(builder.Table("sessions")).
		Where(p).
		Limit(1).
		Query()

	var found *Session
	err := queryRows(ctx, r.q, query, args, func(rows *entsql.Rows) error {
		s, err := scanSession(rows)
		if err != nil {
			return err
		}
		found = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return found, nil
}

func scanSession(rows *entsql.Rows, extra ...any) (*Session, error) {
	var (
		s      Session
		status string
		ended  sql.NullTime
	)
	dest := []any{&s.ID, &s.UserID, &status, &s.StartingRating, &s.EndingRating, &s.StartedAt, &ended, &s.UpdatedAt}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	s.Status = SessionStatus(status)
	s.StartedAt = s.StartedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	s.EndedAt = timePtr(ended)
	return &s, nil
}

func (r *reviewRepo) UpdateSessionEndingRating(ctx context.Context, sessionID string, rating float64, now time.Time) error {
	query, args := builder.Update("sessions").
		Set("ending_rating", rating).
		Set("updated_at", now.UTC()).
		Where(entsql.EQ("id", sessionID)).
		Query()
	n, err := execAffected(ctx, r.q, query, args)
	if err != nil {
		return fmt.Errorf("update session rating: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update session rating: session %s: %w", sessionID, sql.ErrNoRows)
	}
	return nil
}

func (r *reviewRepo) CompleteSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	endedAt = endedAt.UTC()
	query, args := builder.Update("sessions").
		Set("status", string(SessionCompleted)).
		Set("ended_at", endedAt).
		Set("updated_at", endedAt).
		SetNull("active_user_id").
		Where(entsql.And(
			entsql.EQ("id", sessionID),
			entsql.EQ("status", string(SessionActive)),
		)).
		Query()
	n, err := execAffected(ctx, r.q, query, args)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("complete session: no active session %s: %w", sessionID, sql.ErrNoRows)
	}
	return nil
}

func (r *reviewRepo) ListSessions(ctx context.Context, userID string, limit int) ([]SessionSummary, error) {
	s := builder.Table("sessions")
	l := builder.Table("review_logs").As("l")

	columns := make([]string, 0, len(sessionColumns)+1)
	for _, c := range sessionColumns {
		columns = append(columns, s.C(c))
	}
	columns = append(columns, entsql.Count(l.C("id")))

	sel := builder.Select(columns...).
		From(s).
		LeftJoin(l).
		On(s.C("id"), l.C("session_id")).
		Where(entsql.EQ(s.C("user_id"), userID)).
		GroupBy(s.C("id")).
		OrderBy(entsql.Desc(s.C("started_at")))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	var out []SessionSummary
	err := queryRows(ctx, r.q, query, args, func(rows *entsql.Rows) error {
		var count int
		sess, err := scanSession(rows, &count)
		if err != nil {
			return err
		}
		out = append(out, SessionSummary{Session: *sess, ReviewCount: count})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// --- review logs ---

func (r *reviewRepo) CreateReviewLog(ctx context.Context, l *ReviewLog) error {
	seqNum, err := r.seq.Next(ctx, r.q)
	if err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.Sequence = seqNum

	query, args := builder.Insert("review_logs").
		Columns(reviewLogColumns...).
		Values(l.ID, l.Sequence, l.SessionID, l.CardID, l.UserID, l.Rating, l.StreakPosition,
			l.EloImpact, l.OpponentRating, l.RatingBefore, l.RatingAfter, l.CreatedAt).
		Query()
	if err := r.q.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert review log: %w", err)
	}
	return nil
}

func (r *reviewRepo) FindRecentReviewLogs(ctx context.Context, sessionID string, limit int) ([]ReviewLog, error) {
	sel := builder.Select(reviewLogColumns...).
		From(builder.Table("review_logs")).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	var out []ReviewLog
	err := queryRows(ctx, r.q, query, args, func(rows *entsql.Rows) error {
		var l ReviewLog
		if err := rows.Scan(&l.ID, &l.Sequence, &l.SessionID, &l.CardID, &l.UserID, &l.Rating, &l.StreakPosition,
			&l.EloImpact, &l.OpponentRating, &l.RatingBefore, &l.RatingAfter, &l.CreatedAt); err != nil {
			return err
		}
		l.CreatedAt = l.CreatedAt.UTC()
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query review logs: %w", err)
	}
	return out, nil
}

func (r *reviewRepo) CountReviewLogs(ctx context.Context, sessionID string) (int, error) {
	n, err := countRows(ctx, r.q, builder.Select(entsql.Count("*")).
		From(builder.Table("review_logs")).
		Where(entsql.EQ("session_id", sessionID)))
	if err != nil {
		return 0, fmt.Errorf("count review logs: %w", err)
	}
	return n, nil
}
