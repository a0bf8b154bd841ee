package versions

import (
	"context"
	"testing"

	"github.com/lherron/fixq/internal/notify"
	"github.com/lherron/fixq/internal/store/memstore"
	"github.com/lherron/fixq/internal/testutil"
	"github.com/lherron/fixq/internal/upgrade"
)

type privacyFlags bool

func (p privacyFlags) PrivacyRestricted() bool { return bool(p) }

type fixture struct {
	store    *memstore.Store
	notes    *notify.Collector
	registry *Registry
	log      *testutil.Logger
}

func newFixture(t *testing.T, restricted bool) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New(), notes: &notify.Collector{}, log: &testutil.Logger{}}
	reg, err := New(Deps{Store: f.store, Flags: privacyFlags(restricted), Notifier: f.notes})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f.registry = reg
	return f
}

// run executes the named task and returns its outcome.
func (f *fixture) run(t *testing.T, name string) upgrade.Outcome {
	t.Helper()
	task, ok := f.registry.Task(name)
	if !ok {
		t.Fatalf("task %s not registered", name)
	}
	outcome, err := task.Run(context.Background(), upgrade.NewState(), f.log)
	if err != nil {
		t.Fatalf("task %s failed: %v", name, err)
	}
	return outcome
}

// rerun resets recorded logs and writes, runs the task again and asserts it
// changed nothing and logged only warnings.
func (f *fixture) rerun(t *testing.T, name string) {
	t.Helper()
	f.log.Reset()
	writes := f.store.Writes()
	if outcome := f.run(t, name); outcome != upgrade.AlreadySatisfied {
		t.Errorf("%s: expected already-satisfied on rerun, got %s", name, outcome)
	}
	if f.store.Writes() != writes {
		t.Errorf("%s: expected no writes on rerun, got %d", name, f.store.Writes()-writes)
	}
	if f.log.Infos() != 0 || f.log.Warns() == 0 {
		t.Errorf("%s: expected warn-only logging on rerun, got %v", name, f.log.Entries())
	}
}
