// Package versions holds the fixture upgrade tasks of every known version,
// addressed by stable task names.
package versions

import (
	"fmt"
	"sort"

	"github.com/lherron/fixq/internal/fixtures"
	"github.com/lherron/fixq/internal/notify"
	"github.com/lherron/fixq/internal/store"
	"github.com/lherron/fixq/internal/upgrade"
)

// Flags are the configuration switches tasks consult.
type Flags interface {
	// PrivacyRestricted reports whether any privacy toggle disables a
	// third-party feature.
	PrivacyRestricted() bool
}

type noFlags struct{}

func (noFlags) PrivacyRestricted() bool { return false }

// Deps are the collaborators tasks run against.
type Deps struct {
	Store    store.Store
	Flags    Flags
	Notifier notify.Sink
	Fixtures *fixtures.Registry
}

// Registry maps task names to tasks and versions to ordered task names.
type Registry struct {
	deps     Deps
	tasks    map[string]upgrade.Task
	versions map[string][]string
}

var _ upgrade.VersionRegistry = (*Registry)(nil)

// New builds the registry of every known version's tasks.
func New(deps Deps) (*Registry, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("versions: store is required")
	}
	if deps.Flags == nil {
		deps.Flags = noFlags{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if deps.Fixtures == nil {
		reg, err := fixtures.Default()
		if err != nil {
			return nil, err
		}
		deps.Fixtures = reg
	}

	r := &Registry{
		deps:     deps,
		tasks:    make(map[string]upgrade.Task),
		versions: make(map[string][]string),
	}
	r.register("004", v004(deps)...)
	r.register("005", v005(deps)...)
	return r, nil
}

func (r *Registry) register(version string, tasks ...upgrade.Task) {
	for _, task := range tasks {
		if _, dup := r.tasks[task.Name]; dup {
			panic("versions: duplicate task " + task.Name)
		}
		r.tasks[task.Name] = task
		r.versions[version] = append(r.versions[version], task.Name)
	}
}

// TaskSets resolves each version to its tasks. Unknown versions resolve to
// an empty set.
func (r *Registry) TaskSets(versions []string) ([]upgrade.TaskSet, error) {
	sets := make([]upgrade.TaskSet, 0, len(versions))
	for _, v := range versions {
		set := upgrade.TaskSet{Version: v}
		for _, name := range r.versions[v] {
			set.Tasks = append(set.Tasks, r.tasks[name])
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Task looks up a task by name.
func (r *Registry) Task(name string) (upgrade.Task, bool) {
	task, ok := r.tasks[name]
	return task, ok
}

// VersionOf returns the version a task belongs to.
func (r *Registry) VersionOf(name string) (string, bool) {
	for v, names := range r.versions {
		for _, n := range names {
			if n == name {
				return v, true
			}
		}
	}
	return "", false
}

// TaskNames returns the ordered task names of version.
func (r *Registry) TaskNames(version string) []string {
	return append([]string(nil), r.versions[version]...)
}

// Versions returns every version with tasks, oldest first.
func (r *Registry) Versions() []string {
	out := make([]string, 0, len(r.versions))
	for v := range r.versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Latest returns the newest known version.
func (r *Registry) Latest() string {
	all := r.Versions()
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}

// Pending returns the versions newer than current, oldest first. An empty
// current means every version is pending.
func (r *Registry) Pending(current string) []string {
	var out []string
	for _, v := range r.Versions() {
		if current == "" || v > current {
			out = append(out, v)
		}
	}
	return out
}
