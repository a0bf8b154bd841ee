// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, database opening, and the wiring of the
// store, logger and notification sinks used by the fixture engine.
package appctx

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lherron/fixq/internal/config"
	"github.com/lherron/fixq/internal/db"
	"github.com/lherron/fixq/internal/fixtures"
	"github.com/lherron/fixq/internal/logging"
	"github.com/lherron/fixq/internal/notify"
	"github.com/lherron/fixq/internal/render"
	"github.com/lherron/fixq/internal/store"
	"github.com/lherron/fixq/internal/telemetry"
	"github.com/lherron/fixq/internal/upgrade/versions"
	"github.com/spf13/cobra"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// DB is the opened database connection (nil if NeedsDB is false)
	DB *db.DB

	// Store wraps DB for the fixture engine (nil if NeedsDB is false)
	Store *store.SQLStore

	Log    logging.Logger
	Format render.Format

	// Notices collects every notification raised during the command so it
	// can be printed once the command finishes.
	Notices  *notify.Collector
	Notifier notify.Sink

	shutdown func(context.Context) error
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			a.Log.Warn("Failed to flush traces: %v", err)
		}
		a.shutdown = nil
	}
}

// Renderer returns a renderer for the configured output format.
func (a *App) Renderer(w io.Writer) *render.Renderer {
	return render.NewRenderer(w, render.Options{Format: a.Format})
}

// Versions builds the fixture version registry bound to this App's store.
func (a *App) Versions() (*versions.Registry, error) {
	if a.Store == nil {
		return nil, fmt.Errorf("version registry requires database (set NeedsDB: true)")
	}
	reg, err := fixtures.Default()
	if err != nil {
		return nil, err
	}
	return versions.New(versions.Deps{
		Store:    a.Store,
		Flags:    a.Config,
		Notifier: a.Notifier,
		Fixtures: reg,
	})
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsDB indicates whether to open the database.
	NeedsDB bool

	// AllowPending skips the pending-migration check. Used by commands that
	// apply migrations themselves.
	AllowPending bool
}

// DefaultOptions returns default options (DB required, fully migrated).
func DefaultOptions() Options {
	return Options{NeedsDB: true}
}

// Migrating returns options for commands that open a database which may
// still need its schema applied.
func Migrating() Options {
	return Options{NeedsDB: true, AllowPending: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The database is closed automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	app := &App{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	if v := flagValue(cmd, "db"); v != "" {
		app.Config.DBPath = v
	}
	if v := flagValue(cmd, "log-level"); v != "" {
		app.Config.LogLevel = v
	}
	if v := flagValue(cmd, "output"); v != "" {
		app.Config.Output = v
	}

	format, err := render.ParseFormat(app.Config.Output)
	if err != nil {
		return nil, err
	}
	app.Format = format

	app.Log = logging.New(os.Stderr, logging.ParseLevel(app.Config.LogLevel))

	shutdown, err := telemetry.Setup(context.Background(), app.Config.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	app.shutdown = shutdown
	app.Notices = &notify.Collector{}
	if len(app.Config.NotifyURLs) > 0 {
		app.Notifier = notify.Multi(app.Notices, notify.NewWebhook(app.Config.NotifyURLs))
	} else {
		app.Notifier = app.Notices
	}

	if opts.NeedsDB {
		database, err := db.Open(app.Config.DBPath)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if !opts.AllowPending {
			if err := database.RequiresMigrationError(); err != nil {
				database.Close()
				app.Close()
				return nil, err
			}
		}
		app.DB = database
		app.Store = store.New(database)
	}

	return app, nil
}

func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}
