package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/ui/theme"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Manage a learner's flashcards",
}

var cardsSeedCmd = &cobra.Command{
	Use:   "seed <user>",
	Short: "Create a learner's first cards for a language",
	Long: "Create cards from catalogue sentences of the language pair. When the\n" +
		"catalogue is empty and an LLM provider is configured, sentences are\n" +
		"generated first.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		native, _ := cmd.Flags().GetString("native")
		amount, _ := cmd.Flags().GetInt("amount")
		if language == "" {
			return fmt.Errorf("%w: --language is required", session.ErrInvalidArgs)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if !cmd.Flags().Changed("amount") {
			amount = a.Config.Deck.SeedAmount
		}

		ctx, cancel := a.LLMContext(cmd.Context())
		defer cancel()

		u, err := resolveUser(ctx, a.Store.ReviewRepo(), args[0])
		if err != nil {
			return err
		}
		cards, err := a.Seeder.SeedFirstCards(ctx, u.ID, language, native, amount)
		if err != nil {
			return err
		}

		outln(cmd, theme.Title.Render(fmt.Sprintf("Created %d card(s)", len(cards))))
		t := table.New().Headers("ID", "Front", "Back")
		for _, c := range cards {
			t.Row(c.ID, c.Front, c.Back)
		}
		outln(cmd, t.Render())
		return nil
	},
}

func init() {
	cardsSeedCmd.Flags().StringP("language", "l", "", "Language to practice (e.g. de)")
	cardsSeedCmd.Flags().String("native", "", "Native language (default: the learner's)")
	cardsSeedCmd.Flags().Int("amount", 5, "Number of cards to create (default from config)")

	cardsCmd.AddCommand(cardsSeedCmd)
}
