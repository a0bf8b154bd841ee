package cli

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/cursor"
	"github.com/lherron/fixq/internal/events"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the most recent upgrade task outcomes",
	Long: `Log lists entries from the task log, newest first. Every task run by
'fixqadm upgrade' or 'fixqadm tasks run' records its version, name and
outcome there.

When more entries remain, the cursor for the next page is printed on stderr.

Examples:
  fixqadm log                        # Last 50 entries
  fixqadm log --version 005          # Only tasks of version 005
  fixqadm log --limit 10 --cursor X  # Continue from a previous page`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runLog),
}

var (
	logLimit   int
	logVersion string
	logCursor  string
)

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVar(&logLimit, "limit", 50, "Limit number of entries (0 = unlimited)")
	logCmd.Flags().StringVar(&logVersion, "version", "", "Only show tasks of this fixture version")
	logCmd.Flags().StringVar(&logCursor, "cursor", "", "Pagination cursor from previous page")
}

func runLog(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	q := events.Query{Limit: logLimit, Version: logVersion}
	if logCursor != "" {
		c, err := cursor.Decode(logCursor)
		if err != nil {
			return exitError(2, err)
		}
		q.After = c
	}

	entries, next, err := events.NewWriter(app.DB.DB).Page(ctx, q)
	if err != nil {
		return exitError(1, err)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{fmt.Sprint(e.ID), e.CreatedAt, e.Version, e.Task, e.Outcome})
	}
	if err := app.Renderer(cmd.OutOrStdout()).Render(entries, []string{"ID", "CREATED", "VERSION", "TASK", "OUTCOME"}, rows); err != nil {
		return err
	}

	if next != nil {
		encoded, err := next.Encode()
		if err != nil {
			return exitError(1, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "next cursor: %s\n", encoded)
	}
	return nil
}
