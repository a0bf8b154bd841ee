package cli

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/domain"
	"github.com/lherron/fixq/internal/fixtures"
	"github.com/lherron/fixq/internal/settings"
	"github.com/lherron/fixq/internal/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database with schema, fixtures and default settings",
	Long: `Init creates the SQLite database if needed, applies schema migrations,
seeds every baseline fixture, fills in missing default settings and records
the latest fixture version as the database version.

Running init on an existing database is safe: fixtures and settings that are
already present are left untouched, and the database version is never moved
backwards.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.Migrating(), runInit),
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if err := app.DB.Migrate(); err != nil {
		return exitError(1, fmt.Errorf("failed to run migrations: %w", err))
	}

	reg, err := fixtures.Default()
	if err != nil {
		return exitError(1, err)
	}
	res, err := fixtures.Populate(ctx, app.Store, reg, app.Log)
	if err != nil {
		return exitError(1, fmt.Errorf("failed to populate fixtures: %w", err))
	}
	if err := fixtures.EnsureDefaultSettings(ctx, app.Store, app.Log); err != nil {
		return exitError(1, err)
	}

	vreg, err := app.Versions()
	if err != nil {
		return exitError(1, err)
	}
	current, err := databaseVersion(ctx, app.Store)
	if err != nil {
		return exitError(1, err)
	}
	if len(vreg.Pending(current)) > 0 {
		if err := stampVersion(ctx, app.Store, vreg.Latest()); err != nil {
			return exitError(1, err)
		}
		current = vreg.Latest()
	}

	fmt.Fprintf(out, "✓ Database ready at %s\n", app.Config.DBPath)
	fmt.Fprintf(out, "✓ Fixtures: %d/%d present\n", res.Done, res.Expected)
	fmt.Fprintf(out, "✓ Fixture version: %s\n", current)
	return nil
}

// databaseVersion reads the fixture version recorded in settings. An absent
// setting reads as "".
func databaseVersion(ctx context.Context, s store.Store) (string, error) {
	rec, err := s.FindOne(ctx, store.Settings, store.Attrs{"key": domain.SettingDatabaseVersion})
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", domain.SettingDatabaseVersion, err)
	}
	if rec == nil {
		return "", nil
	}
	return rec.String("value"), nil
}

// stampVersion records version as the database version, creating the
// setting when a migrated database was never initialized.
func stampVersion(ctx context.Context, s store.Store, version string) error {
	key := domain.SettingDatabaseVersion
	rec, err := s.FindOne(ctx, store.Settings, store.Attrs{"key": key})
	if err == nil && rec == nil {
		def, _ := settings.Lookup(key)
		_, err = s.Add(ctx, store.Settings, store.Attrs{"key": key, "value": version, "type": string(def.Type)})
	} else if err == nil {
		err = s.Edit(ctx, store.Settings, store.Attrs{"key": key}, store.Attrs{"value": version})
	}
	if err != nil {
		return fmt.Errorf("failed to record %s %s: %w", key, version, err)
	}
	return nil
}
