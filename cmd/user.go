package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/rating"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/store"
	"github.com/abhisek/lingodeck/internal/ui/components"
	"github.com/abhisek/lingodeck/internal/ui/theme"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learners",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		native, _ := cmd.Flags().GetString("native")
		email = strings.TrimSpace(email)
		if email == "" {
			return fmt.Errorf("%w: --email is required", session.ErrInvalidArgs)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if native == "" {
			native = a.Config.Deck.NativeLanguage
		}

		ctx := cmd.Context()
		users := a.Store.ReviewRepo()
		existing, err := users.FindUserByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: a user with email %s already exists", session.ErrInvalidArgs, email)
		}

		u := &store.User{
			Email:          email,
			NativeLanguage: native,
			CurrentRating:  rating.DefaultRating,
			CreatedAt:      time.Now(),
		}
		if err := users.CreateUser(ctx, u); err != nil {
			return err
		}
		a.Log.Info("user created", "user_id", u.ID)

		outln(cmd, theme.Title.Render("Learner created"))
		outln(cmd, theme.Field("ID", u.ID))
		outln(cmd, theme.Field("Email", u.Email))
		outln(cmd, theme.Field("Native", u.NativeLanguage))
		outln(cmd, theme.Field("Rating", fmt.Sprintf("%.0f", u.CurrentRating)))
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Show a learner's rating, cards and active session",
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
		cards, err := a.Store.CardRepo().CountCards(ctx, u.ID)
		if err != nil {
			return err
		}
		due, err := a.Store.CardRepo().DueCards(ctx, u.ID, time.Now(), 0)
		if err != nil {
			return err
		}
		active, err := a.Sessions.Active(ctx, u.ID)
		if err != nil {
			return err
		}

		outln(cmd, theme.Title.Render(u.Email))
		outln(cmd, theme.Field("ID", u.ID))
		outln(cmd, theme.Field("Native", u.NativeLanguage))
		outln(cmd, components.NewRatingGauge("Rating", u.CurrentRating, 48).View())
		outln(cmd, theme.Field("Cards", fmt.Sprintf("%d (%d due)", cards, len(due))))
		if u.LastSessionAt != nil {
			outln(cmd, theme.Field("Last session", u.LastSessionAt.Local().Format("2006-01-02 15:04")))
		}
		if active != nil {
			outln(cmd, theme.Field("Active", fmt.Sprintf("%s (%d reviews)", active.ID, active.ReviewCount)))
		}
		return nil
	},
}

// resolveUser looks a learner up by id, or by email when ref contains "@".
func resolveUser(ctx context.Context, users store.ReviewRepo, ref string) (*store.User, error) {
	var (
		u   *store.User
		err error
	)
	if strings.Contains(ref, "@") {
		u, err = users.FindUserByEmail(ctx, ref)
	} else {
		u, err = users.FindUser(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, session.ErrUserNotFound
	}
	return u, nil
}

func init() {
	userAddCmd.Flags().String("email", "", "Learner email (unique)")
	userAddCmd.Flags().String("native", "", "Native language code (default from config)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userShowCmd)
}
