package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/ui/components"
	"github.com/abhisek/lingodeck/internal/ui/theme"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start, inspect and finalize review sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <user>",
	Short: "Start a review session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		s, err := a.Sessions.Start(ctx, u.ID)
		if err != nil {
			return err
		}

		outln(cmd, theme.Title.Render("Session started"))
		outln(cmd, theme.Field("ID", s.ID))
		outln(cmd, theme.Field("Rating", fmt.Sprintf("%.1f", s.StartingRating)))
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Show the active session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		s, err := a.Sessions.Active(ctx, u.ID)
		if err != nil {
			return err
		}
		if s == nil {
			outln(cmd, theme.Hint.Render("No active session."))
			return nil
		}

		outln(cmd, theme.Title.Render("Active session"))
		outln(cmd, theme.Field("ID", s.ID))
		outln(cmd, theme.Field("Started", s.StartedAt.Local().Format("2006-01-02 15:04")))
		outln(cmd, theme.Field("Reviews", s.ReviewCount))
		outln(cmd, components.NewRatingGauge("Rating", s.EndingRating, 48).View())
		outln(cmd, theme.Field("Change", theme.Delta(s.EndingRating-s.StartingRating)))
		if s.ReviewCount < session.MinReviewsToFinalize {
			outln(cmd, theme.Hint.Render(fmt.Sprintf("%d more review(s) before the session can be finalized.",
				session.MinReviewsToFinalize-s.ReviewCount)))
		}
		return nil
	},
}

var sessionFinalizeCmd = &cobra.Command{
	Use:   "finalize <user>",
	Short: "Finalize the active session and keep its rating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		s, err := a.Sessions.Active(ctx, u.ID)
		if err != nil {
			return err
		}
		if s == nil {
			return session.ErrSessionNotFound
		}
		res, err := a.Sessions.Finalize(ctx, s.ID, u.ID)
		if err != nil {
			return err
		}

		outln(cmd, theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("Session complete"),
			theme.Field("Reviews", res.ReviewCount),
			theme.Field("Start", fmt.Sprintf("%.1f", res.StartingRating)),
			theme.Field("End", fmt.Sprintf("%.1f", res.EndingRating)),
			theme.Field("Change", theme.Delta(res.RatingChange())),
		)))
		return nil
	},
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history <user>",
	Short: "List recent sessions",
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
		sessions, err := a.Sessions.History(ctx, u.ID, limit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			outln(cmd, theme.Hint.Render("No sessions yet."))
			return nil
		}

		t := table.New().Headers("Started", "Status", "Reviews", "Start", "End", "Change")
		for _, s := range sessions {
			t.Row(
				s.StartedAt.Local().Format("2006-01-02 15:04"),
				string(s.Status),
				strconv.Itoa(s.ReviewCount),
				fmt.Sprintf("%.1f", s.StartingRating),
				fmt.Sprintf("%.1f", s.EndingRating),
				fmt.Sprintf("%+.1f", s.EndingRating-s.StartingRating),
			)
		}
		outln(cmd, t.Render())
		return nil
	},
}

func init() {
	sessionHistoryCmd.Flags().IntP("limit", "n", 10, "Number of sessions to show")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionFinalizeCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
}
