package cli

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/cli/appctx"
	"github.com/lherron/fixq/internal/fixtures"
	"github.com/lherron/fixq/internal/store"
	"github.com/spf13/cobra"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Inspect baseline fixtures",
}

var fixturesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report which fixtures are present without changing anything",
	Long: `Status counts, for every fixture group in the registry, how many records
or relations are expected and how many the database already has. Nothing is
written.

Use --model to limit the report to one model and the relations touching it.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runFixturesStatus),
}

var fixturesStatusModel string

func init() {
	rootCmd.AddCommand(fixturesCmd)
	fixturesCmd.AddCommand(fixturesStatusCmd)

	fixturesStatusCmd.Flags().StringVar(&fixturesStatusModel, "model", "", "Only report this model (e.g. roles, permissions)")
}

type fixtureStatus struct {
	Kind            string `json:"kind" yaml:"kind"`
	Name            string `json:"name" yaml:"name"`
	fixtures.Result `yaml:",inline"`
}

func runFixturesStatus(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var only store.Model
	if fixturesStatusModel != "" {
		m, err := store.ParseModel(fixturesStatusModel)
		if err != nil {
			return exitError(2, err)
		}
		only = m
	}

	reg, err := fixtures.Default()
	if err != nil {
		return exitError(1, err)
	}

	var statuses []fixtureStatus
	for _, group := range reg.Models() {
		if only != "" && group.Model != only {
			continue
		}
		res, err := fixtures.CheckModelFixtures(ctx, app.Store, group)
		if err != nil {
			return exitError(1, err)
		}
		statuses = append(statuses, fixtureStatus{Kind: "model", Name: string(group.Model), Result: res})
	}
	for _, group := range reg.Relations() {
		if only != "" && group.From != only && group.To != only {
			continue
		}
		res, err := fixtures.CheckRelationFixtures(ctx, app.Store, group.Specs)
		if err != nil {
			return exitError(1, err)
		}
		name := fmt.Sprintf("%s.%s", group.From, group.Relation)
		statuses = append(statuses, fixtureStatus{Kind: "relation", Name: name, Result: res})
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{s.Kind, s.Name, fmt.Sprint(s.Expected), fmt.Sprint(s.Done), fmt.Sprint(s.Shortfall())})
	}
	return app.Renderer(cmd.OutOrStdout()).Render(statuses, []string{"KIND", "NAME", "EXPECTED", "DONE", "MISSING"}, rows)
}
