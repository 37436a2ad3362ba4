package deck

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/lingodeck/internal/rating"
	"github.com/abhisek/lingodeck/internal/store"
)

// File is a sentence deck as written in YAML:
//
//	language: de
//	native_language: en
//	sentences:
//	  - content: Wo ist der Bahnhof?
//	    translation: Where is the train station?
//	    difficulty: 950
type File struct {
	Language       string  `yaml:"language" validate:"required,min=2,max=16"`
	NativeLanguage string  `yaml:"native_language" validate:"required,min=2,max=16"`
	Sentences      []Entry `yaml:"sentences" validate:"required,min=1,dive"`
}

// Entry is one sentence of a deck. A zero difficulty means the default rating.
type Entry struct {
	Content     string  `yaml:"content" validate:"required,max=200"`
	Translation string  `yaml:"translation" validate:"required,max=200"`
	Difficulty  float64 `yaml:"difficulty" validate:"omitempty,gte=800,lte=2000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseFile reads and validates a deck file.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a deck. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d File
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("deck is empty")
		}
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}
	if SameLanguage(d.Language, d.NativeLanguage) {
		return nil, ErrSameLanguage
	}
	return &d, nil
}

// ImportResult counts what Import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// Import adds the deck's sentences to the catalogue, skipping sentences
// already present for the language pair.
func Import(ctx context.Context, cards store.CardRepo, d *File) (ImportResult, error) {
	var res ImportResult
	language, native := normalizeLanguage(d.Language), normalizeLanguage(d.NativeLanguage)

	existing, err := cards.ListSentences(ctx, language, native, 0)
	if err != nil {
		return res, fmt.Errorf("list sentences: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[strings.ToLower(e.Content)] = true
	}

	for _, e := range d.Sentences {
		key := strings.ToLower(strings.TrimSpace(e.Content))
		if seen[key] {
			res.Skipped++
			continue
		}
		difficulty := e.Difficulty
		if difficulty == 0 {
			difficulty = rating.DefaultRating
		}
		s := store.Sentence{
			Content:          strings.TrimSpace(e.Content),
			Translation:      strings.TrimSpace(e.Translation),
			Language:         language,
			NativeLanguage:   native,
			DifficultyRating: difficulty,
		}
		if err := cards.CreateSentence(ctx, &s); err != nil {
			return res, err
		}
		seen[key] = true
		res.Imported++
	}
	return res, nil
}
