package cmd

import (
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingodeck/internal/app"
	"github.com/abhisek/lingodeck/internal/config"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lingodeck",
	Short: "Adaptive flashcards for language learners",
	Long: "lingodeck rates every review session with an ELO model and schedules\n" +
		"flashcards with SM-2 spaced repetition.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	if session.IsDomainError(err) {
		fmt.Fprintf(os.Stderr, "Error: %v (%s)\n", err, session.Code(err))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	def := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (default $XDG_CONFIG_HOME/lingodeck/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides LINGODECK_DB env var)")
	pf.String("log-mode", def.Log.Mode, "Log encoding: dev or prod")
	pf.String("log-level", def.Log.Level, "Log level: debug, info, warn or error")
	pf.String("streak", def.Rating.Streak, "Streak curve: flat or progressive")
	pf.String("recency", def.Rating.Recency, "Recency decay: daily or granular")
	pf.String("bounds", def.Rating.Bounds, "Bounds dampening: linear, quadratic or exponential")
	pf.String("llm-provider", "", "LLM provider for sentence generation")
	pf.String("metrics-textfile", "", "Write Prometheus metrics to this file after each command")

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(sentencesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// openApp loads the configuration and opens the application. Callers must
// Close the returned App.
func openApp(cmd *cobra.Command) (*app.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: path, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return app.New(cmd.Context(), app.Options{Config: cfg, DBPath: dbPath})
}

// resolveDBPath returns the configured database path (--db flag, then
// LINGODECK_DB, then the config file), falling back to the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// outf writes styled output to the command's stdout, downsampling colors
// to what the writer supports.
func outf(cmd *cobra.Command, format string, a ...any) {
	lipgloss.Fprintf(cmd.OutOrStdout(), format, a...)
}

func outln(cmd *cobra.Command, a ...any) {
	lipgloss.Fprintln(cmd.OutOrStdout(), a...)
}
