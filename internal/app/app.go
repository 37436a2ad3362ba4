// Package app wires the configured store, logger, metrics and services used
// by the lingodeck commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/lingodeck/internal/config"
	"github.com/abhisek/lingodeck/internal/deck"
	"github.com/abhisek/lingodeck/internal/llm"
	"github.com/abhisek/lingodeck/internal/logger"
	"github.com/abhisek/lingodeck/internal/metrics"
	"github.com/abhisek/lingodeck/internal/review"
	"github.com/abhisek/lingodeck/internal/sentencegen"
	"github.com/abhisek/lingodeck/internal/session"
	"github.com/abhisek/lingodeck/internal/store"
)

// App holds the dependencies of one command invocation.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Metrics *metrics.Metrics
	Store   *store.Store

	Sessions *session.Service
	Reviewer *review.Reviewer
	Seeder   *deck.Seeder

	// Generator is nil when no LLM provider is configured.
	Generator sentencegen.Generator
}

// Options configures New.
type Options struct {
	Config *config.Config
	DBPath string
	// Logger overrides the logger built from Config.Log.
	Logger *logger.Logger
}

// New opens the store and builds the services. Sentence generation is left
// disabled, with a warning, when the LLM provider cannot be initialized.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}

	log := opts.Logger
	if log == nil {
		var err error
		log, err = logger.New(logger.Options{
			Mode:     cfg.Log.Mode,
			Level:    cfg.Log.Level,
			HashSalt: cfg.Log.HashSalt,
		})
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	engine, err := cfg.Engine()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(),
		Store:   st,
	}
	a.Sessions = session.NewService(st.ReviewRepo(), session.Config{
		Engine:  engine,
		Logger:  log,
		Metrics: a.Metrics,
	})
	a.Reviewer = review.NewReviewer(st.CardRepo(), a.Sessions, log)

	if cfg.LLM.Enabled() {
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			log.Warn("LLM provider not configured, sentence generation unavailable", "error", err)
		} else {
			a.Generator = sentencegen.New(provider, sentencegen.DefaultConfig())
		}
	}
	a.Seeder = deck.NewSeeder(st.CardRepo(), st.ReviewRepo(), a.Generator, log)

	log.Debug("app ready", "db", opts.DBPath, "engine", engine.String(), "llm", cfg.LLM.Provider)
	return a, nil
}

// LLMContext bounds ctx by the configured LLM timeout.
func (a *App) LLMContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.LLM.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.Config.LLM.Timeout)
}

// Close writes the metrics textfile, if configured, and releases the store.
func (a *App) Close() error {
	var errs []error
	if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		errs = append(errs, fmt.Errorf("write metrics: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	a.Log.Sync()
	return errors.Join(errs...)
}
