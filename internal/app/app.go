// Package app assembles the store and the managers from a Config.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/budgeting"
	"budget-tracker/internal/config"
	"budget-tracker/internal/events"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/logging"
	"budget-tracker/internal/seed"
	"budget-tracker/internal/storage"
)

// App is one open store with its managers.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *storage.Store
	Bus       *events.Bus
	Auth      *auth.Manager
	Budgeting *budgeting.Manager
	Seeded    bool

	unsubscribe func()
}

// Options overrides the ambient sources. Zero fields use the wall clock, the
// global random generator and a logger built from the config.
type Options struct {
	Now    func() time.Time
	Rand   finance.Rand
	Logger *slog.Logger
}

// New opens the store named by cfg, seeds it when configured and builds the
// managers on a shared bus.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(cfg.LogLevel, cfg.Production())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = finance.DefaultRand()
	}

	scheme, err := auth.NewPasswordScheme(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewDB(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Store: store, Bus: events.NewBus()}

	if cfg.SeedOnStart {
		a.Seeded = seed.NewLoader(store, now, rnd, logger).Initialize()
	}

	a.Auth = auth.NewManager(store,
		auth.WithBus(a.Bus),
		auth.WithClock(now),
		auth.WithLogger(logger),
		auth.WithPasswordScheme(scheme))
	a.Budgeting = budgeting.NewManager(store,
		budgeting.WithBus(a.Bus),
		budgeting.WithClock(now),
		budgeting.WithRand(rnd),
		budgeting.WithLogger(logger))

	// Account deletion rewrites the expenses collection behind the budgeting mirror.
	a.unsubscribe = a.Bus.Subscribe(func(e events.Event) {
		if e.Kind == events.AccountDeleted {
			a.Budgeting.Reload()
		}
	})

	return a, nil
}

// Close detaches the listeners and closes the store.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a.Store.Close()
}
