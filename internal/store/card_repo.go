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
	sentenceColumns = []string{"id", "content", "translation", "language", "native_language", "difficulty_rating", "created_at"}
	cardColumns     = []string{
		"id", "user_id", "sentence_id", "front", "back", "language", "ease_factor",
		"interval_days", "repetitions", "next_due_date", "last_reviewed_at", "created_at",
	}
)

// cardRepo implements CardRepo.
type cardRepo struct {
	q dialect.ExecQuerier
}

func (r *cardRepo) CreateSentence(ctx context.Context, s *Sentence) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = s.CreatedAt.UTC()

	query, args := builder.Insert("sentences").
		Columns(sentenceColumns...).
		Values(s.ID, s.Content, s.Translation, s.Language, s.NativeLanguage, s.DifficultyRating, s.CreatedAt).
		Query()
	if err := r.q.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert sentence: %w", err)
	}
	return nil
}

func (r *cardRepo) FindSentence(ctx context.Context, id string) (*Sentence, error) {
	out, err := r.querySentences(ctx, builder.Select(sentenceColumns...).
		From(builder.Table("sentences")).
		Where(entsql.EQ("id", id)).
		Limit(1))
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func (r *cardRepo) ListSentences(ctx context.Context, language, nativeLanguage string, limit int) ([]Sentence, error) {
	sel := builder.Select(sentenceColumns...).
		From(builder.Table("sentences")).
		Where(entsql.And(
			entsql.EQ("language", language),
			entsql.EQ("native_language", nativeLanguage),
		)).
		OrderBy("created_at", "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	return r.querySentences(ctx, sel)
}

func (r *cardRepo) querySentences(ctx context.Context, sel *entsql.Selector) ([]Sentence, error) {
	query, args := sel.Query()
	var out []Sentence
	err := queryRows(ctx, r.q, query, args, func(rows *entsql.Rows) error {
		var s Sentence
		if err := rows.Scan(&s.ID, &s.Content, &s.Translation, &s.Language, &s.NativeLanguage,
			&s.DifficultyRating, &s.CreatedAt); err != nil {
			return err
		}
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query sentences: %w", err)
	}
	return out, nil
}

func (r *cardRepo) CreateCard(ctx context.Context, c *Card) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()
	if c.NextDueDate.IsZero() {
		c.NextDueDate = c.CreatedAt
	}
	c.NextDueDate = c.NextDueDate.UTC()

	query, args := builder.Insert("cards").
		Columns(cardColumns...).
		Values(c.ID, c.UserID, nullableString(c.SentenceID), c.Front, c.Back, c.Language, c.EaseFactor,
			c.Interval, c.Repetitions, c.NextDueDate, nullableTime(c.LastReviewedAt), c.CreatedAt).
		Query()
	if err := r.q.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (r *cardRepo) FindCard(ctx context.Context, id string) (*Card, error) {
	out, err := r.queryCards(ctx, builder.Select(cardColumns...).
		From(builder.Table("cards")).
		Where(entsql.EQ("id", id)).
		Limit(1))
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func (r *cardRepo) UpdateCardSchedule(ctx context.Context, c *Card) error {
	query, args := builder.Update("cards").
		Set("ease_factor", c.EaseFactor).
		Set("interval_days", c.Interval).
		Set("repetitions", c.Repetitions).
		Set("next_due_date", c.NextDueDate.UTC()).
		Set("last_reviewed_at", nullableTime(c.LastReviewedAt)).
		Where(entsql.EQ("id", c.ID)).
		Query()
	n, err := execAffected(ctx, r.q, query, args)
	if err != nil {
		return fmt.Errorf("update card schedule: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update card schedule: card %s: %w", c.ID, sql.ErrNoRows)
	}
	return nil
}

func (r *cardRepo) DueCards(ctx context.Context, userID string, now time.Time, limit int) ([]Card, error) {
	sel := builder.Select(cardColumns...).
		From(builder.Table("cards")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.LTE("next_due_date", now.UTC()),
		)).
		OrderBy("next_due_date", "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	return r.queryCards(ctx, sel)
}

func (r *cardRepo) CountCards(ctx context.Context, userID string) (int, error) {
	n, err := countRows(ctx, r.q, builder.Select(entsql.Count("*")).
		From(builder.Table("cards")).
		Where(entsql.EQ("user_id", userID)))
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

func (r *cardRepo) queryCards(ctx context.Context, sel *entsql.Selector) ([]Card, error) {
	query, args := sel.Query()
	var out []Card
	err := queryRows(ctx, r.q, query, args, func(rows *entsql.Rows) error {
		var (
			c        Card
			sentence sql.NullString
			reviewed sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.UserID, &sentence, &c.Front, &c.Back, &c.Language, &c.EaseFactor,
			&c.Interval, &c.Repetitions, &c.NextDueDate, &reviewed, &c.CreatedAt); err != nil {
			return err
		}
		c.SentenceID = sentence.String
		c.LastReviewedAt = timePtr(reviewed)
		c.NextDueDate = c.NextDueDate.UTC()
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	return out, nil
}
