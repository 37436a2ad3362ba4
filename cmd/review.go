package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review <card-id>",
	Short: "Record a review of a card (rating 0 = incorrect, 5 = correct)",
	Long: "Record a review of a card. The review joins the learner's active\n" +
		"session, starting one if needed, and reschedules the card.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, _ := cmd.Flags().GetInt("rating")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Reviewer.ReviewCard(cmd.Context(), args[0], score)
		if err != nil {
			return err
		}

		r := res.Review
		outln(cmd, theme.Front.Render(res.Card.Front)+"  "+theme.Back.Render(res.Card.Back))
		outln(cmd, theme.Field("Outcome", theme.Outcome(score)))
		if r.StreakPosition > 0 {
			outln(cmd, theme.Field("Streak", theme.Streak.Render(fmt.Sprintf("%d", r.StreakPosition))))
		}
		outln(cmd, theme.Field("Impact", theme.Delta(r.AppliedChange)))
		outln(cmd, theme.Field("Rating", fmt.Sprintf("%.1f", r.SessionEndingRating)))
		outln(cmd, theme.Field("Next due", fmt.Sprintf("%s (in %d day(s))",
			res.Card.NextDueDate.Local().Format("2006-01-02"), res.Card.Interval)))
		return nil
	},
}

func init() {
	reviewCmd.Flags().IntP("rating", "r", 0, "Review rating: 0 (incorrect) or 5 (correct)")
	_ = reviewCmd.MarkFlagRequired("rating")
}
