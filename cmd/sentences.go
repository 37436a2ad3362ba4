package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/deck"
	"github.com/abhisek/lingodeck/internal/rating"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/ui/theme"
)

var sentencesCmd = &cobra.Command{
	Use:   "sentences",
	Short: "Manage the sentence catalogue",
}

var sentencesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a YAML sentence deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deck.ParseFile(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := deck.Import(cmd.Context(), a.Store.CardRepo(), d)
		if err != nil {
			return err
		}
		outf(cmd, "%s %d imported, %d skipped (%s → %s)\n",
			theme.Title.Render("Import complete:"), res.Imported, res.Skipped, d.Language, d.NativeLanguage)
		return nil
	},
}

var sentencesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate sentences with the configured LLM provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		native, _ := cmd.Flags().GetString("native")
		count, _ := cmd.Flags().GetInt("count")
		target, _ := cmd.Flags().GetFloat64("target")
		if language == "" {
			return fmt.Errorf("%w: --language is required", session.ErrInvalidArgs)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if native == "" {
			native = a.Config.Deck.NativeLanguage
		}

		ctx, cancel := a.LLMContext(cmd.Context())
		defer cancel()

		sentences, err := a.Seeder.Generate(ctx, language, native, count, target)
		if err != nil {
			return err
		}

		outln(cmd, theme.Title.Render(fmt.Sprintf("Generated %d sentence(s)", len(sentences))))
		t := table.New().Headers("Sentence", "Translation", "Difficulty")
		for _, s := range sentences {
			t.Row(s.Content, s.Translation, fmt.Sprintf("%.0f", s.DifficultyRating))
		}
		outln(cmd, t.Render())
		return nil
	},
}

var sentencesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogue sentences for a language pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		native, _ := cmd.Flags().GetString("native")
		limit, _ := cmd.Flags().GetInt("limit")
		if language == "" {
			return fmt.Errorf("%w: --language is required", session.ErrInvalidArgs)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if native == "" {
			native = a.Config.Deck.NativeLanguage
		}
		sentences, err := a.Store.CardRepo().ListSentences(cmd.Context(),
			strings.ToLower(strings.TrimSpace(language)), strings.ToLower(strings.TrimSpace(native)), limit)
		if err != nil {
			return err
		}
		if len(sentences) == 0 {
			outln(cmd, theme.Hint.Render("No sentences for this language pair."))
			return nil
		}

		t := table.New().Headers("ID", "Sentence", "Translation", "Difficulty")
		for _, s := range sentences {
			t.Row(s.ID, s.Content, s.Translation, fmt.Sprintf("%.0f", s.DifficultyRating))
		}
		outln(cmd, t.Render())
		return nil
	},
}

func init() {
	sentencesGenerateCmd.Flags().StringP("language", "l", "", "Language of the sentences (e.g. de)")
	sentencesGenerateCmd.Flags().String("native", "", "Language of the translations (default from config)")
	sentencesGenerateCmd.Flags().IntP("count", "c", deck.DefaultSeedAmount, "Number of sentences to request")
	sentencesGenerateCmd.Flags().Float64("target", rating.DefaultRating, "Target difficulty rating")

	sentencesListCmd.Flags().StringP("language", "l", "", "Language of the sentences (e.g. de)")
	sentencesListCmd.Flags().String("native", "", "Language of the translations (default from config)")
	sentencesListCmd.Flags().IntP("limit", "n", 50, "Number of sentences to show")

	sentencesCmd.AddCommand(sentencesImportCmd)
	sentencesCmd.AddCommand(sentencesGenerateCmd)
	sentencesCmd.AddCommand(sentencesListCmd)
}
