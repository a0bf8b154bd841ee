package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fixqadm",
	Short: "Administrative CLI for fixture migrations",
	Long: `fixqadm manages the fixture data of a site database: it applies schema
migrations, seeds the baseline fixtures and default settings, and runs the
versioned fixture upgrade tasks that bring an existing database up to date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides FIXQ_DB_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, warn or silent (overrides FIXQ_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format: table, json, yaml or tsv (overrides FIXQ_OUTPUT)")
}

type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// exitError returns an error that will cause the CLI to exit with the given code
func exitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// printNotices writes the notifications raised while the command ran.
func printNotices(w io.Writer, app *appctx.App) {
	if app.Notices == nil {
		return
	}
	for _, n := range app.Notices.Notifications() {
		fmt.Fprintf(w, "! [%s/%s] %s\n", n.Type, n.Location, n.Message)
	}
}
