package cli

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/fixtures"
	"github.com/spf13/cobra"
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Insert every missing baseline fixture",
	Long: `Populate walks the fixture registry and inserts the records and
relations the database is missing, then creates the owner user if an Owner
role exists. Records that are already present are never modified.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runPopulate),
}

func init() {
	rootCmd.AddCommand(populateCmd)
}

func runPopulate(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := fixtures.Default()
	if err != nil {
		return exitError(1, err)
	}
	res, err := fixtures.Populate(ctx, app.Store, reg, app.Log)
	if err != nil {
		return exitError(1, fmt.Errorf("failed to populate fixtures: %w", err))
	}

	row := []string{fmt.Sprint(res.Expected), fmt.Sprint(res.Done), fmt.Sprint(res.Shortfall())}
	return app.Renderer(cmd.OutOrStdout()).Render(res, []string{"EXPECTED", "DONE", "MISSING"}, [][]string{row})
}
