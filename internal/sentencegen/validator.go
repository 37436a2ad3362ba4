package sentencegen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/lingodeck/internal/rating"
)

// Validator checks one generated sentence. Implementations may normalise
// fields in place.
type Validator interface {
	Name() string
	Validate(s *Sentence, in Input) *ValidationError
}

// ValidationError describes why a sentence was dropped.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

const maxSentenceRunes = 200

// StructuralValidator rejects empty, oversized or untranslated sentences.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(s *Sentence, _ Input) *ValidationError {
	switch {
	case s.Content == "":
		return &ValidationError{Validator: v.Name(), Message: "content is empty"}
	case s.Translation == "":
		return &ValidationError{Validator: v.Name(), Message: "translation is empty"}
	case utf8.RuneCountInString(s.Content) > maxSentenceRunes:
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("content exceeds %d characters", maxSentenceRunes)}
	case utf8.RuneCountInString(s.Translation) > maxSentenceRunes:
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("translation exceeds %d characters", maxSentenceRunes)}
	case strings.EqualFold(s.Content, s.Translation):
		return &ValidationError{Validator: v.Name(), Message: "translation is identical to content"}
	}
	return nil
}

// DifficultyValidator defaults a missing rating and clamps the rest into
// the rating domain. It never rejects.
type DifficultyValidator struct{}

func (v *DifficultyValidator) Name() string { return "difficulty" }

func (v *DifficultyValidator) Validate(s *Sentence, _ Input) *ValidationError {
	if s.DifficultyRating <= 0 {
		s.DifficultyRating = rating.DefaultRating
	}
	s.DifficultyRating = rating.Clamp(s.DifficultyRating)
	return nil
}

// seenSet matches sentences ignoring case, punctuation and spacing.
type seenSet map[string]struct{}

func newSeenSet(items []string) seenSet {
	s := make(seenSet, len(items))
	for _, it := range items {
		s.add(it)
	}
	return s
}

func (s seenSet) add(v string) { s[dedupKey(v)] = struct{}{} }

func (s seenSet) has(v string) bool {
	_, ok := s[dedupKey(v)]
	return ok
}

func dedupKey(v string) string {
	v = strings.ToLower(v)
	v = strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:¡¿\"'«»", r) {
			return -1
		}
		return r
	}, v)
	return normalizeSpace(v)
}

func normalizeSpace(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
