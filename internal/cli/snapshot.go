package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/snapshot"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Back up and check the fixture tables",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON snapshot of every fixture table",
	Long: `Export writes a canonical JSON snapshot of every fixture model and
relation table. Two exports of unchanged data share the same snapshot_rev.

By default the snapshot is written next to the database as
<db>.snapshot-<timestamp>.json.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runSnapshotExport),
}

var snapshotVerifyCmd = &cobra.Command{
	Use:   "verify PATH",
	Short: "Check a snapshot against the current database",
	Long: `Verify confirms that the snapshot file is intact (its snapshot_rev
matches its content) and that the fixture tables still hold exactly the data
it recorded. Exits with status 1 when either check fails.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runSnapshotVerify),
}

var snapshotOut string

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotVerifyCmd)

	snapshotExportCmd.Flags().StringVar(&snapshotOut, "out", "", "Output file (default: alongside the database)")
}

func runSnapshotExport(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path := snapshotOut
	if path == "" {
		path = defaultSnapshotPath(app.Config.DBPath, time.Now())
	}
	res, err := writeSnapshot(ctx, app, path)
	if err != nil {
		return exitError(1, err)
	}

	rows := [][]string{{res.OutputPath, res.SnapshotRev, fmt.Sprint(res.Links)}}
	return app.Renderer(cmd.OutOrStdout()).Render(res, []string{"OUT", "SNAPSHOT_REV", "LINKS"}, rows)
}

func runSnapshotVerify(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := snapshot.Verify(ctx, app.Store, args[0])
	if err != nil {
		return exitError(1, err)
	}
	rows := [][]string{{res.InputPath, fmt.Sprint(res.Valid), res.Message}}
	if err := app.Renderer(cmd.OutOrStdout()).Render(res, []string{"INPUT", "VALID", "MESSAGE"}, rows); err != nil {
		return err
	}
	if !res.Valid {
		return exitError(1, fmt.Errorf("snapshot verification failed"))
	}
	return nil
}

// writeSnapshot exports the fixture tables of app's database to path,
// tagged with the database's current fixture version.
func writeSnapshot(ctx context.Context, app *appctx.App, path string) (*snapshot.ExportResult, error) {
	version, err := databaseVersion(ctx, app.Store)
	if err != nil {
		return nil, err
	}
	res, err := snapshot.Export(ctx, app.Store, version, path)
	if err != nil {
		return nil, err
	}
	app.Log.Info("Wrote snapshot %s (%s)", res.OutputPath, res.SnapshotRev)
	return res, nil
}

func defaultSnapshotPath(dbPath string, now time.Time) string {
	base := filepath.Base(dbPath)
	return filepath.Join(filepath.Dir(dbPath), fmt.Sprintf("%s.snapshot-%s.json", base, now.UTC().Format("20060102T150405Z")))
}
