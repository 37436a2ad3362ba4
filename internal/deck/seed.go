// Package deck builds a user's cards from the sentence catalogue.
package deck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/lingodeck/internal/logger"
	"github.com/abhisek/lingodeck/internal/rating"
	"github.com/abhisek/lingodeck/internal/sentencegen"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/spacedrep"
	"github.com/abhisek/lingodeck/internal/store"
)

// DefaultSeedAmount is the number of first cards created for a user.
const DefaultSeedAmount = 5

// DefaultNativeLanguage is assumed when neither caller nor user names one.
const DefaultNativeLanguage = "en"

var (
	ErrSameLanguage = errors.New("language to practice must differ from the native language")
	ErrNoSentences  = errors.New("no sentences available for this language pair")
	ErrNoGenerator  = errors.New("sentence generation is not configured")
)

// Seeder creates cards from catalogue sentences, generating new sentences
// when the catalogue is empty and a generator is available.
type Seeder struct {
	cards store.CardRepo
	users store.ReviewRepo
	gen   sentencegen.Generator
	log   *logger.Logger
	now   func() time.Time
}

// NewSeeder creates a Seeder. gen may be nil.
func NewSeeder(cards store.CardRepo, users store.ReviewRepo, gen sentencegen.Generator, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{cards: cards, users: users, gen: gen, log: log, now: time.Now}
}

// SeedFirstCards creates up to amount cards for userID, one per catalogue
// sentence of the language pair. An empty native language falls back to the
// user's native language.
func (s *Seeder) SeedFirstCards(ctx context.Context, userID, language, native string, amount int) ([]store.Card, error) {
	if amount <= 0 {
		amount = DefaultSeedAmount
	}
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, session.ErrUserNotFound
	}
	if native == "" {
		native = user.NativeLanguage
	}
	if native == "" {
		native = DefaultNativeLanguage
	}
	if SameLanguage(language, native) {
		return nil, ErrSameLanguage
	}
	language, native = normalizeLanguage(language), normalizeLanguage(native)

	sentences, err := s.cards.ListSentences(ctx, language, native, amount)
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	if len(sentences) == 0 && s.gen != nil {
		sentences, err = s.Generate(ctx, language, native, amount, user.CurrentRating)
		if err != nil {
			return nil, err
		}
	}
	if len(sentences) == 0 {
		return nil, ErrNoSentences
	}

	now := s.now()
	cards := make([]store.Card, 0, len(sentences))
	for _, sent := range sentences {
		c := store.Card{
			UserID:      userID,
			SentenceID:  sent.ID,
			Front:       sent.Content,
			Back:        sent.Translation,
			Language:    language,
			EaseFactor:  spacedrep.DefaultEaseFactor,
			NextDueDate: now,
			CreatedAt:   now,
		}
		if err := s.cards.CreateCard(ctx, &c); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}

	s.log.Info("seeded cards", "user_id", userID, "language", language, "native", native, "cards", len(cards))
	return cards, nil
}

// Generate asks the generator for count new sentences near target and adds
// them to the catalogue.
func (s *Seeder) Generate(ctx context.Context, language, native string, count int, target float64) ([]store.Sentence, error) {
	if s.gen == nil {
		return nil, ErrNoGenerator
	}
	if SameLanguage(language, native) {
		return nil, ErrSameLanguage
	}
	language, native = normalizeLanguage(language), normalizeLanguage(native)

	existing, err := s.cards.ListSentences(ctx, language, native, 0)
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	avoid := make([]string, 0, len(existing))
	for _, e := range existing {
		avoid = append(avoid, e.Content)
	}

	generated, err := s.gen.Generate(ctx, sentencegen.Input{
		Language:       language,
		NativeLanguage: native,
		Count:          count,
		TargetRating:   target,
		Avoid:          avoid,
	})
	if err != nil {
		return nil, fmt.Errorf("generate sentences: %w", err)
	}

	out := make([]store.Sentence, 0, len(generated))
	for _, g := range generated {
		sent := store.Sentence{
			Content:          g.Content,
			Translation:      g.Translation,
			Language:         language,
			NativeLanguage:   native,
			DifficultyRating: rating.Clamp(g.DifficultyRating),
		}
		if err := s.cards.CreateSentence(ctx, &sent); err != nil {
			return nil, err
		}
		out = append(out, sent)
	}
	s.log.Info("generated sentences", "language", language, "native", native, "count", len(out))
	return out, nil
}
