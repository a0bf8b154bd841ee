package upgrade

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/logging"
)

// VersionTaskName names the synthetic task that runs one version's TaskSet.
const VersionTaskName = "run-version-tasks"

// TaskSet is the ordered tasks that bring fixtures up to Version.
type TaskSet struct {
	Version string
	Tasks   []Task
}

// VersionRegistry resolves versions to their task sets, one set per
// requested version in the same order. Unknown versions get an empty set.
type VersionRegistry interface {
	TaskSets(versions []string) ([]TaskSet, error)
}

// VersionReport lists the tasks one version ran.
type VersionReport struct {
	Version string   `json:"version" yaml:"version"`
	Results []Result `json:"results" yaml:"results"`
}

// Report is what one Update call did, in order.
type Report struct {
	Versions []VersionReport `json:"versions" yaml:"versions"`
}

// Applied counts the tasks that changed something.
func (r *Report) Applied() int {
	n := 0
	for _, v := range r.Versions {
		for _, res := range v.Results {
			if res.Outcome == Applied {
				n++
			}
		}
	}
	return n
}

// Runner drives the upgrade tasks of every pending version.
type Runner struct {
	registry  VersionRegistry
	sequencer Sequencer
}

// Option configures a Runner.
type Option func(*Runner)

// WithSequencer replaces the default Serial sequencer.
func WithSequencer(s Sequencer) Option {
	return func(r *Runner) {
		r.sequencer = s
	}
}

// NewRunner creates a Runner resolving task sets from registry.
func NewRunner(registry VersionRegistry, opts ...Option) *Runner {
	r := &Runner{registry: registry, sequencer: Serial{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Update runs the task sets of pending in order. Tasks already applied
// before a failure stay applied; the partial report is returned with the
// error.
func (r *Runner) Update(ctx context.Context, pending []string, log logging.Logger) (*Report, error) {
	report := &Report{}
	if len(pending) == 0 {
		log.Info("Fixtures are up to date, nothing to do")
		return report, nil
	}

	sets, err := r.registry.TaskSets(pending)
	if err != nil {
		return report, fmt.Errorf("failed to resolve upgrade tasks: %w", err)
	}
	if len(sets) != len(pending) {
		return report, fmt.Errorf("registry returned %d task sets for %d versions", len(sets), len(pending))
	}

	var wrappers []Task
	for _, set := range sets {
		if len(set.Tasks) == 0 {
			log.Info("No fixture updates for version %s", set.Version)
			continue
		}
		wrappers = append(wrappers, Task{Name: VersionTaskName, Run: r.versionTask(set, report)})
	}

	state := NewState()
	if _, err := r.sequencer.Sequence(ctx, wrappers, state, log); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) versionTask(set TaskSet, report *Report) TaskFunc {
	return func(ctx context.Context, state *State, log logging.Logger) (Outcome, error) {
		log.Info("Updating fixtures to version %s", set.Version)
		results, err := r.sequencer.Sequence(ctx, set.Tasks, state, log)
		report.Versions = append(report.Versions, VersionReport{Version: set.Version, Results: results})
		if err != nil {
			return Applied, fmt.Errorf("version %s: %w", set.Version, err)
		}
		log.Info("Finished fixture updates for version %s", set.Version)

		for _, res := range results {
			if res.Outcome == Applied {
				return Applied, nil
			}
		}
		return AlreadySatisfied, nil
	}
}
