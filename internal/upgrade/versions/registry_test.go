package versions

import (
	"context"
	"reflect"
	"testing"

	"github.com/lherron/fixq/internal/store/memstore"
	"github.com/lherron/fixq/internal/testutil"
	"github.com/lherron/fixq/internal/upgrade"
)

func TestTaskOrder(t *testing.T) {
	f := newFixture(t, false)

	want004 := []string{
		"move-jquery",
		"update-private-setting",
		"update-password-setting",
		"update-ghost-admin-client",
		"add-ghost-frontend-client",
		"clean-broken-tags",
		"add-post-tag-order",
		"add-new-post-fixture",
	}
	if got := f.registry.TaskNames("004"); !reflect.DeepEqual(got, want004) {
		t.Errorf("004: expected %v, got %v", want004, got)
	}

	want005 := []string{"update-ghost-client-secrets", "add-ghost-scheduler-client", "add-client-permissions"}
	if got := f.registry.TaskNames("005"); !reflect.DeepEqual(got, want005) {
		t.Errorf("005: expected %v, got %v", want005, got)
	}
}

func TestTaskSets(t *testing.T) {
	f := newFixture(t, false)
	sets, err := f.registry.TaskSets([]string{"004", "999", "005"})
	if err != nil {
		t.Fatalf("TaskSets failed: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("expected 3 sets, got %d", len(sets))
	}
	if len(sets[0].Tasks) != 8 || len(sets[1].Tasks) != 0 || len(sets[2].Tasks) != 3 {
		t.Errorf("unexpected set sizes %d/%d/%d", len(sets[0].Tasks), len(sets[1].Tasks), len(sets[2].Tasks))
	}
	if v, ok := f.registry.VersionOf("add-client-permissions"); !ok || v != "005" {
		t.Errorf("expected add-client-permissions in 005, got %q", v)
	}
}

func TestPending(t *testing.T) {
	f := newFixture(t, false)
	cases := map[string][]string{
		"":    {"004", "005"},
		"003": {"004", "005"},
		"004": {"005"},
		"005": nil,
		"006": nil,
	}
	for current, want := range cases {
		if got := f.registry.Pending(current); !reflect.DeepEqual(got, want) {
			t.Errorf("Pending(%q): expected %v, got %v", current, want, got)
		}
	}
	if f.registry.Latest() != "005" {
		t.Errorf("expected latest 005, got %s", f.registry.Latest())
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected error without a store")
	}
}

// Running every version against a populated SQLite store end to end, twice.
func TestRunnerAgainstSQLite(t *testing.T) {
	s := testutil.TempStore(t)
	ctx := context.Background()
	if err := s.PopulateDefaults(ctx); err != nil {
		t.Fatalf("PopulateDefaults failed: %v", err)
	}
	reg, err := New(Deps{Store: s})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	runner := upgrade.NewRunner(reg)

	report, err := runner.Update(ctx, reg.Pending("003"), &testutil.Logger{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(report.Versions) != 2 {
		t.Fatalf("expected 2 versions in report, got %d", len(report.Versions))
	}
	if report.Applied() == 0 {
		t.Error("expected some tasks to apply on first run")
	}

	log := &testutil.Logger{}
	report, err = runner.Update(ctx, reg.Pending("003"), log)
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if report.Applied() != 0 {
		t.Errorf("expected nothing applied on second run, got %+v", report)
	}
}

func TestRunnerAgainstMemstore(t *testing.T) {
	s := memstore.New()
	reg, err := New(Deps{Store: s})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := upgrade.NewRunner(reg).Update(context.Background(), []string{"005"}, &testutil.Logger{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if s.Records("clients").Len() != 1 {
		t.Errorf("expected scheduler client added, got %d clients", s.Records("clients").Len())
	}
}
