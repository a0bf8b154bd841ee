package cli

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/upgrade"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and run individual fixture upgrade tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered upgrade tasks in execution order",
	Args:  cobra.NoArgs,
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runTasksList),
}

var tasksRunCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Run a single upgrade task by name",
	Long: `Run executes one registered upgrade task on its own, outside of its
version. Tasks are idempotent, so running a task whose changes are already in
place reports already-satisfied. The outcome is written to the task log. The
databaseVersion setting is not changed.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runTasksRun),
}

type taskInfo struct {
	Version string `json:"version" yaml:"version"`
	Task    string `json:"task" yaml:"task"`
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksRunCmd)
}

func runTasksList(app *appctx.App, cmd *cobra.Command, args []string) error {
	vreg, err := app.Versions()
	if err != nil {
		return exitError(1, err)
	}

	var infos []taskInfo
	var rows [][]string
	for _, v := range vreg.Versions() {
		for _, name := range vreg.TaskNames(v) {
			infos = append(infos, taskInfo{Version: v, Task: name})
			rows = append(rows, []string{v, name})
		}
	}
	return app.Renderer(cmd.OutOrStdout()).Render(infos, []string{"VERSION", "TASK"}, rows)
}

func runTasksRun(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	vreg, err := app.Versions()
	if err != nil {
		return exitError(1, err)
	}
	task, ok := vreg.Task(args[0])
	if !ok {
		return exitError(2, fmt.Errorf("unknown task %q (see 'fixqadm tasks list')", args[0]))
	}
	version, _ := vreg.VersionOf(task.Name)

	seq := upgrade.Traced(upgrade.Serial{}, otel.Tracer(tracerName))
	results, err := seq.Sequence(ctx, []upgrade.Task{task}, upgrade.NewState(), app.Log)
	report := &upgrade.Report{Versions: []upgrade.VersionReport{{Version: version, Results: results}}}
	if err := recordReport(ctx, app, report, err); err != nil {
		return exitError(1, err)
	}

	if err := renderReport(app, cmd, report); err != nil {
		return err
	}
	printNotices(cmd.ErrOrStderr(), app)
	return nil
}
