package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingodeck/internal/review"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/store"
)

const germanDeck = `language: de
native_language: en
sentences:
  - content: Ich trinke Kaffee.
    translation: I drink coffee.
    difficulty: 900
  - content: Wo ist der Bahnhof?
    translation: Where is the train station?
  - content: Das Wetter ist heute schön.
    translation: The weather is nice today.
    difficulty: 1100
  - content: Ich habe meinen Schlüssel verloren.
    translation: I lost my key.
    difficulty: 1300
`

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, k := range []string{
		"LINGODECK_DB", "LINGODECK_LLM_PROVIDER", "LINGODECK_LOG_LEVEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

// resetFlags restores every flag to its default so runs in one process
// do not see each other's arguments.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lingodeck")
}

func TestReviewWorkflow(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "lingodeck.db")
	metricsFile := filepath.Join(dir, "lingodeck.prom")
	deckFile := filepath.Join(dir, "de.yaml")
	require.NoError(t, os.WriteFile(deckFile, []byte(germanDeck), 0o600))

	const email = "learner@example.com"

	out, err := run(t, "user", "add", "--email", email, "--native", "en", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Learner created")

	_, err = run(t, "user", "add", "--email", email, "--db", db)
	assert.ErrorIs(t, err, session.ErrInvalidArgs)

	out, err = run(t, "sentences", "import", deckFile, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "4 imported, 0 skipped")

	out, err = run(t, "sentences", "import", deckFile, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "0 imported, 4 skipped")

	out, err = run(t, "cards", "seed", email, "--language", "de", "--amount", "3", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Created 3 card(s)")

	userID, cards := dueCards(t, db, email)
	require.Len(t, cards, 3)

	out, err = run(t, "due", email, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, cards[0].ID)

	for _, c := range cards {
		out, err = run(t, "review", c.ID, "--rating", "5", "--db", db, "--metrics-textfile", metricsFile)
		require.NoError(t, err)
		assert.Contains(t, out, "correct")
		assert.Contains(t, out, "Next due")
	}

	out, err = run(t, "session", "show", email, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Active session")

	out, err = run(t, "session", "finalize", userID, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Session complete")

	_, err = run(t, "session", "finalize", userID, "--db", db)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	out, err = run(t, "session", "history", email, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLETED")

	out, err = run(t, "user", "show", email, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, email)

	st, err := store.Open(db)
	require.NoError(t, err)
	u, err := st.ReviewRepo().FindUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Greater(t, u.CurrentRating, 1200.0)
	require.NoError(t, st.Close())

	body, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "lingodeck_reviews_total")
}

func TestReviewErrors(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "lingodeck.db")

	_, err := run(t, "review", "no-such-card", "--rating", "5", "--db", db)
	assert.ErrorIs(t, err, review.ErrCardNotFound)

	_, err = run(t, "review", "no-such-card", "--rating", "3", "--db", db)
	assert.ErrorIs(t, err, session.ErrInvalidArgs)

	_, err = run(t, "session", "start", "nobody@example.com", "--db", db)
	assert.ErrorIs(t, err, session.ErrUserNotFound)

	_, err = run(t, "cards", "seed", "nobody@example.com", "--db", db, "--language", "")
	assert.ErrorIs(t, err, session.ErrInvalidArgs)
}

func TestLLMStatsEmpty(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "lingodeck.db")

	out, err := run(t, "llm", "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM usage recorded yet.")
}

func dueCards(t *testing.T, db, email string) (string, []store.Card) {
	t.Helper()
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	u, err := st.ReviewRepo().FindUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, u)
	cards, err := st.CardRepo().DueCards(ctx, u.ID, time.Now(), 0)
	require.NoError(t, err)
	return u.ID, cards
}
