package cli

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/fixtures"
	"github.com/lherron/fixq/internal/settings"
	"github.com/lherron/fixq/internal/store"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and repair the settings table",
}

var settingsEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Insert missing default settings",
	Long: `Ensure adds every default setting that is absent from the database.
Existing values are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runSettingsEnsure),
}

var settingsDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show how stored settings differ from their defaults",
	Long: `Diff prints a unified diff between the default settings and the values
stored in the database, one key=value line per default setting. Settings
missing from the database appear as removed lines.

Use --exit-code to exit with status 1 when differences are found.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runSettingsDiff),
}

var settingsDiffExitCode bool

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsEnsureCmd)
	settingsCmd.AddCommand(settingsDiffCmd)

	settingsDiffCmd.Flags().BoolVar(&settingsDiffExitCode, "exit-code", false, "Exit with status 1 when settings differ")
}

func runSettingsEnsure(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fixtures.EnsureDefaultSettings(ctx, app.Store, app.Log); err != nil {
		return exitError(1, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Default settings present")
	return nil
}

func runSettingsDiff(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	defaults, err := settings.Defaults()
	if err != nil {
		return exitError(1, err)
	}
	stored, err := app.Store.FindAll(ctx, store.Settings, nil)
	if err != nil {
		return exitError(1, fmt.Errorf("failed to read settings: %w", err))
	}

	var want, have []string
	for _, d := range defaults {
		want = append(want, d.Key+"="+d.Value)
		if rec := stored.Find(store.Attrs{"key": d.Key}); rec != nil {
			have = append(have, d.Key+"="+rec.String("value"))
		}
	}

	changed, err := app.Renderer(cmd.OutOrStdout()).RenderDiff("defaults", want, app.Config.DBPath, have)
	if err != nil {
		return exitError(1, err)
	}
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "Settings match their defaults.")
		return nil
	}
	if settingsDiffExitCode {
		return exitError(1, fmt.Errorf("settings differ from defaults"))
	}
	return nil
}
