package upgrade

import (
	"context"
	"errors"
	"testing"

	"github.com/lherron/fixq/internal/logging"
	"github.com/lherron/fixq/internal/testutil"
)

type stubRegistry struct {
	sets  map[string][]Task
	calls int
	err   error
}

func (r *stubRegistry) TaskSets(versions []string) ([]TaskSet, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]TaskSet, len(versions))
	for i, v := range versions {
		out[i] = TaskSet{Version: v, Tasks: r.sets[v]}
	}
	return out, nil
}

// spySequencer records the task names of every call and delegates to Serial.
type spySequencer struct {
	calls [][]string
}

func (s *spySequencer) Sequence(ctx context.Context, tasks []Task, state *State, log logging.Logger) ([]Result, error) {
	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Name
	}
	s.calls = append(s.calls, names)
	return Serial{}.Sequence(ctx, tasks, state, log)
}

func recordTask(name string, order *[]string, outcome Outcome) Task {
	return Task{Name: name, Run: func(ctx context.Context, state *State, log logging.Logger) (Outcome, error) {
		*order = append(*order, name)
		return outcome, nil
	}}
}

func TestUpdateEmptyPendingSkipsRegistry(t *testing.T) {
	reg := &stubRegistry{}
	spy := &spySequencer{}
	log := &testutil.Logger{}

	report, err := NewRunner(reg, WithSequencer(spy)).Update(context.Background(), nil, log)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if reg.calls != 0 {
		t.Errorf("expected registry not consulted, got %d calls", reg.calls)
	}
	if len(spy.calls) != 0 {
		t.Errorf("expected sequencer not invoked, got %d calls", len(spy.calls))
	}
	if len(log.Entries()) != 1 || log.Infos() != 1 {
		t.Errorf("expected exactly one info line, got %v", log.Entries())
	}
	if len(report.Versions) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestUpdateSequencesTwice(t *testing.T) {
	var order []string
	reg := &stubRegistry{sets: map[string][]Task{
		"004": {
			recordTask("a", &order, Applied),
			recordTask("b", &order, AlreadySatisfied),
			recordTask("c", &order, Applied),
		},
	}}
	spy := &spySequencer{}
	log := &testutil.Logger{}

	report, err := NewRunner(reg, WithSequencer(spy)).Update(context.Background(), []string{"004"}, log)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if reg.calls != 1 {
		t.Errorf("expected one registry call, got %d", reg.calls)
	}
	if len(spy.calls) != 2 {
		t.Fatalf("expected 2 sequencer calls, got %d", len(spy.calls))
	}
	if len(spy.calls[0]) != 1 || spy.calls[0][0] != VersionTaskName {
		t.Errorf("expected outer call with one %s wrapper, got %v", VersionTaskName, spy.calls[0])
	}
	if len(spy.calls[1]) != 3 {
		t.Errorf("expected inner call with 3 tasks, got %v", spy.calls[1])
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("expected tasks in declared order, got %v", order)
	}
	log.AssertLogged(t, 2, 0)

	if len(report.Versions) != 1 || len(report.Versions[0].Results) != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Applied() != 2 {
		t.Errorf("expected 2 applied, got %d", report.Applied())
	}
}

func TestUpdateMultipleVersionsConsultsRegistryOnce(t *testing.T) {
	var order []string
	reg := &stubRegistry{sets: map[string][]Task{
		"004": {recordTask("four", &order, Applied)},
		"005": {recordTask("five", &order, Applied)},
	}}
	spy := &spySequencer{}

	_, err := NewRunner(reg, WithSequencer(spy)).Update(context.Background(), []string{"004", "005"}, &testutil.Logger{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if reg.calls != 1 {
		t.Errorf("expected one registry call, got %d", reg.calls)
	}
	if len(spy.calls[0]) != 2 {
		t.Errorf("expected two wrappers, got %v", spy.calls[0])
	}
	if len(order) != 2 || order[0] != "four" || order[1] != "five" {
		t.Errorf("expected versions in order, got %v", order)
	}
}

func TestUpdateVersionWithoutTasks(t *testing.T) {
	reg := &stubRegistry{}
	spy := &spySequencer{}
	log := &testutil.Logger{}

	report, err := NewRunner(reg, WithSequencer(spy)).Update(context.Background(), []string{"009"}, log)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if reg.calls != 1 {
		t.Errorf("expected one registry call, got %d", reg.calls)
	}
	if len(spy.calls) != 1 || len(spy.calls[0]) != 0 {
		t.Errorf("expected a single empty outer call, got %v", spy.calls)
	}
	log.AssertLogged(t, 1, 0)
	if len(report.Versions) != 0 {
		t.Errorf("expected no version reports, got %+v", report.Versions)
	}
}

func TestUpdateFailFast(t *testing.T) {
	var order []string
	boom := errors.New("store unavailable")
	reg := &stubRegistry{sets: map[string][]Task{
		"004": {
			recordTask("first", &order, Applied),
			{Name: "broken", Run: func(context.Context, *State, logging.Logger) (Outcome, error) { return Applied, boom }},
			recordTask("never", &order, Applied),
		},
		"005": {recordTask("later", &order, Applied)},
	}}

	report, err := NewRunner(reg).Update(context.Background(), []string{"004", "005"}, &testutil.Logger{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected task failure, got %v", err)
	}
	if len(order) != 1 || order[0] != "first" {
		t.Errorf("expected only the first task to run, got %v", order)
	}
	if len(report.Versions) != 1 || len(report.Versions[0].Results) != 1 {
		t.Errorf("expected partial report for 004, got %+v", report)
	}
}

func TestUpdateRegistryFailure(t *testing.T) {
	reg := &stubRegistry{err: errors.New("no registry")}
	if _, err := NewRunner(reg).Update(context.Background(), []string{"004"}, &testutil.Logger{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestStateSharedAcrossTasks(t *testing.T) {
	reg := &stubRegistry{sets: map[string][]Task{
		"004": {
			{Name: "set", Run: func(_ context.Context, s *State, _ logging.Logger) (Outcome, error) {
				s.Set("seen", true)
				return Applied, nil
			}},
			{Name: "get", Run: func(_ context.Context, s *State, _ logging.Logger) (Outcome, error) {
				if _, ok := s.Get("seen"); !ok {
					return Applied, errors.New("state not shared")
				}
				return AlreadySatisfied, nil
			}},
		},
	}}
	if _, err := NewRunner(reg).Update(context.Background(), []string{"004"}, &testutil.Logger{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}
