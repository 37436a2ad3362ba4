package cmd

import (
	"strconv"
	"time"

	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/review"
	"github.com/abhisek/lingodeck/internal/ui/theme"
)

var dueCmd = &cobra.Command{
	Use:   "due <user>",
	Short: "List cards due for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		u, err := resolveUser(ctx, a.Store.ReviewRepo(), args[0])
		if err != nil {
			return err
		}
		now := time.Now()
		cards, err := a.Store.CardRepo().DueCards(ctx, u.ID, now, limit)
		if err != nil {
			return err
		}
		if len(cards) == 0 {
			outln(cmd, theme.Hint.Render("Nothing due. Come back later."))
			return nil
		}

		t := table.New().Headers("ID", "Front", "Status", "Interval")
		for _, c := range cards {
			sched := review.ScheduleOf(&c)
			t.Row(c.ID, c.Front, string(sched.Status(now)), strconv.Itoa(c.Interval)+"d")
		}
		outln(cmd, t.Render())
		return nil
	},
}

func init() {
	dueCmd.Flags().IntP("limit", "n", 20, "Number of cards to show")
}
