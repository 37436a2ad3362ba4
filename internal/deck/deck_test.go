package deck

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingodeck/internal/sentencegen"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "deck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func addUser(t *testing.T, st *store.Store, native string) *store.User {
	t.Helper()
	u := &store.User{Email: uuid.NewString() + "@example.com", NativeLanguage: native, CurrentRating: 1300}
	require.NoError(t, st.ReviewRepo().CreateUser(context.Background(), u))
	return u
}

type fakeGenerator struct {
	calls []sentencegen.Input
	out   []sentencegen.Sentence
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, in sentencegen.Input) ([]sentencegen.Sentence, error) {
	f.calls = append(f.calls, in)
	return f.out, f.err
}

func TestSameLanguage(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"en", "en", true},
		{"EN", "en", true},
		{" de", "DE ", true},
		{"de", "en", false},
		{"", "", false},
		{"en", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SameLanguage(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSeedFirstCardsFromCatalogue(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	u := addUser(t, st, "en")

	_, err := Import(ctx, st.CardRepo(), &File{
		Language:       "es",
		NativeLanguage: "en",
		Sentences: []Entry{
			{Content: "Hola", Translation: "Hello"},
			{Content: "¿Dónde está el baño?", Translation: "Where is the bathroom?", Difficulty: 950},
			{Content: "Me gusta leer", Translation: "I like reading"},
		},
	})
	require.NoError(t, err)

	gen := &fakeGenerator{}
	seeder := NewSeeder(st.CardRepo(), st.ReviewRepo(), gen, nil)

	cards, err := seeder.SeedFirstCards(ctx, u.ID, "ES", "", 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Empty(t, gen.calls, "catalogue had sentences")

	backs := map[string]string{"Hola": "Hello", "¿Dónde está el baño?": "Where is the bathroom?", "Me gusta leer": "I like reading"}
	for _, c := range cards {
		assert.Equal(t, backs[c.Front], c.Back)
		assert.Equal(t, "es", c.Language)
		assert.NotEmpty(t, c.SentenceID)
	}

	n, err := st.CardRepo().CountCards(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSeedFirstCardsGeneratesWhenEmpty(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	u := addUser(t, st, "en")

	gen := &fakeGenerator{out: []sentencegen.Sentence{
		{Content: "Bonjour", Translation: "Hello", DifficultyRating: 850},
		{Content: "Merci beaucoup", Translation: "Thank you very much", DifficultyRating: 900},
	}}
	seeder := NewSeeder(st.CardRepo(), st.ReviewRepo(), gen, nil)

	cards, err := seeder.SeedFirstCards(ctx, u.ID, "fr", "en", 0)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, DefaultSeedAmount, gen.calls[0].Count)
	assert.Equal(t, 1300.0, gen.calls[0].TargetRating)

	catalogue, err := st.CardRepo().ListSentences(ctx, "fr", "en", 0)
	require.NoError(t, err)
	require.Len(t, catalogue, 2)
	ratings := []float64{catalogue[0].DifficultyRating, catalogue[1].DifficultyRating}
	assert.ElementsMatch(t, []float64{850, 900}, ratings)
}

func TestSeedFirstCardsErrors(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	u := addUser(t, st, "de")

	seeder := NewSeeder(st.CardRepo(), st.ReviewRepo(), nil, nil)

	_, err := seeder.SeedFirstCards(ctx, u.ID, "DE", "", 5)
	assert.ErrorIs(t, err, ErrSameLanguage, "native language taken from user")

	_, err = seeder.SeedFirstCards(ctx, u.ID, "it", "", 5)
	assert.ErrorIs(t, err, ErrNoSentences)

	_, err = seeder.SeedFirstCards(ctx, uuid.NewString(), "it", "en", 5)
	assert.ErrorIs(t, err, session.ErrUserNotFound)

	failing := NewSeeder(st.CardRepo(), st.ReviewRepo(), &fakeGenerator{err: errors.New("quota")}, nil)
	_, err = failing.SeedFirstCards(ctx, u.ID, "it", "", 5)
	assert.ErrorContains(t, err, "quota")

	_, err = seeder.Generate(ctx, "it", "de", 3, 1200)
	assert.ErrorIs(t, err, ErrNoGenerator)
}

func TestGeneratePassesExistingSentences(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	_, err := Import(ctx, st.CardRepo(), &File{
		Language: "de", NativeLanguage: "en",
		Sentences: []Entry{{Content: "Guten Tag", Translation: "Good day"}},
	})
	require.NoError(t, err)

	gen := &fakeGenerator{out: []sentencegen.Sentence{{Content: "Gute Nacht", Translation: "Good night", DifficultyRating: 2500}}}
	seeder := NewSeeder(st.CardRepo(), st.ReviewRepo(), gen, nil)

	out, err := seeder.Generate(ctx, "de", "en", 1, 1500)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2000.0, out[0].DifficultyRating)
	assert.Equal(t, []string{"Guten Tag"}, gen.calls[0].Avoid)
}

const sampleDeck = `
language: de
native_language: en
sentences:
  - content: Wo ist der Bahnhof?
    translation: Where is the train station?
    difficulty: 950
  - content: Ich hätte gern einen Kaffee.
    translation: I would like a coffee.
  - content: "  wo ist der bahnhof?  "
    translation: Duplicate in another case.
`

func TestParseAndImport(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	d, err := Parse(strings.NewReader(sampleDeck))
	require.NoError(t, err)
	assert.Equal(t, "de", d.Language)
	require.Len(t, d.Sentences, 3)

	res, err := Import(ctx, st.CardRepo(), d)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2, Skipped: 1}, res)

	again, err := Import(ctx, st.CardRepo(), d)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 0, Skipped: 3}, again)

	list, err := st.CardRepo().ListSentences(ctx, "de", "en", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byContent := map[string]float64{}
	for _, s := range list {
		byContent[s.Content] = s.DifficultyRating
	}
	assert.Equal(t, map[string]float64{
		"Wo ist der Bahnhof?":          950,
		"Ich hätte gern einen Kaffee.": 1200,
	}, byContent)
}

func TestParseRejectsInvalidDecks(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"no sentences", "language: de\nnative_language: en\n"},
		{"missing translation", "language: de\nnative_language: en\nsentences:\n  - content: Hallo\n"},
		{"difficulty out of range", "language: de\nnative_language: en\nsentences:\n  - content: Hallo\n    translation: Hi\n    difficulty: 2400\n"},
		{"unknown field", "language: de\nnative_language: en\nlevel: A1\nsentences:\n  - content: Hallo\n    translation: Hi\n"},
		{"same language", "language: en\nnative_language: EN\nsentences:\n  - content: Hi\n    translation: Hello\n"},
		{"malformed", "language: [de\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}
