// Package upgrade runs versioned fixture upgrade tasks in order.
package upgrade

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/logging"
)

// Outcome reports whether a task changed anything.
type Outcome int

const (
	// Applied means the task mutated the store.
	Applied Outcome = iota
	// AlreadySatisfied means the target state already held and nothing was written.
	AlreadySatisfied
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case AlreadySatisfied:
		return "already-satisfied"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome by name in JSON and YAML output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// State is the context shared by every task of one Runner invocation.
type State struct {
	values map[string]any
}

// NewState returns an empty State.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *State) Set(key string, value any) {
	s.values[key] = value
}

// TaskFunc is the body of a task.
type TaskFunc func(ctx context.Context, state *State, log logging.Logger) (Outcome, error)

// Task is a named, idempotent unit of upgrade work.
type Task struct {
	Name string
	Run  TaskFunc
}

// Result is the outcome of one task that ran to completion.
type Result struct {
	Task    string  `json:"task" yaml:"task"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
}
