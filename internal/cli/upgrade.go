package cli

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/events"
	"github.com/lherron/fixq/internal/upgrade"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/lherron/fixq/internal/upgrade"

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [VERSION...]",
	Short: "Run the fixture upgrade tasks for pending versions",
	Long: `Upgrade brings the fixture data up to date by running the tasks of
every version newer than the one recorded in the databaseVersion setting.

Pass one or more versions to run exactly those versions instead. Use --from
to pretend the database is at a different version. After a successful run
the newest version is recorded and every task outcome is written to the
task log (see 'fixqadm log'). Use --backup to write a snapshot of the
fixture tables before any task runs.

Examples:
  fixqadm upgrade              # Run all pending versions
  fixqadm upgrade 005          # Run only version 005
  fixqadm upgrade --from 003   # Run everything after 003`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runUpgrade),
}

var (
	upgradeFrom   string
	upgradeBackup string
)

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringVar(&upgradeFrom, "from", "", "Treat the database as being at this version")
	upgradeCmd.Flags().StringVar(&upgradeBackup, "backup", "", "Write a fixture snapshot to this file before upgrading")
}

func runUpgrade(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	vreg, err := app.Versions()
	if err != nil {
		return exitError(1, err)
	}

	current := upgradeFrom
	if current == "" {
		if current, err = databaseVersion(ctx, app.Store); err != nil {
			return exitError(1, err)
		}
	}

	pending := args
	if len(pending) == 0 {
		pending = vreg.Pending(current)
	}
	for _, v := range pending {
		if !contains(vreg.Versions(), v) {
			return exitError(2, fmt.Errorf("unknown fixture version %q", v))
		}
	}

	if upgradeBackup != "" && len(pending) > 0 {
		if _, err := writeSnapshot(ctx, app, upgradeBackup); err != nil {
			return exitError(1, fmt.Errorf("backup failed, nothing was upgraded: %w", err))
		}
	}

	runner := upgrade.NewRunner(vreg, upgrade.WithSequencer(
		upgrade.Traced(upgrade.Serial{}, otel.Tracer(tracerName)),
	))
	report, err := runner.Update(ctx, pending, app.Log)
	if err := recordReport(ctx, app, report, err); err != nil {
		return exitError(1, err)
	}
	if n := len(pending); n > 0 && contains(vreg.Pending(current), pending[n-1]) {
		if err := stampVersion(ctx, app.Store, pending[n-1]); err != nil {
			return exitError(1, err)
		}
	}

	if err := renderReport(app, cmd, report); err != nil {
		return err
	}
	printNotices(cmd.ErrOrStderr(), app)
	return nil
}

// recordReport writes report to the task log and returns runErr, if any.
// The tasks that completed before a failure are still logged.
func recordReport(ctx context.Context, app *appctx.App, report *upgrade.Report, runErr error) error {
	logErr := events.NewWriter(app.DB.DB).LogReport(ctx, report)
	if runErr != nil {
		if logErr != nil {
			app.Log.Warn("Failed to write task log: %v", logErr)
		}
		return runErr
	}
	return logErr
}

func renderReport(app *appctx.App, cmd *cobra.Command, report *upgrade.Report) error {
	var rows [][]string
	for _, v := range report.Versions {
		for _, res := range v.Results {
			rows = append(rows, []string{v.Version, res.Task, res.Outcome.String()})
		}
	}
	return app.Renderer(cmd.OutOrStdout()).Render(report, []string{"VERSION", "TASK", "OUTCOME"}, rows)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
