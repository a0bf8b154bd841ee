package upgrade

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lherron/fixq/internal/logging"
)

// Sequencer runs tasks one after another, stopping at the first failure.
type Sequencer interface {
	Sequence(ctx context.Context, tasks []Task, state *State, log logging.Logger) ([]Result, error)
}

// Serial is the plain Sequencer.
type Serial struct{}

func (Serial) Sequence(ctx context.Context, tasks []Task, state *State, log logging.Logger) ([]Result, error) {
	results := make([]Result, 0, len(tasks))
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		outcome, err := task.Run(ctx, state, log)
		if err != nil {
			return results, fmt.Errorf("task %s: %w", task.Name, err)
		}
		results = append(results, Result{Task: task.Name, Outcome: outcome})
	}
	return results, nil
}

type traced struct {
	inner  Sequencer
	tracer trace.Tracer
}

// Traced wraps inner so every task runs inside its own span.
func Traced(inner Sequencer, tracer trace.Tracer) Sequencer {
	return &traced{inner: inner, tracer: tracer}
}

func (t *traced) Sequence(ctx context.Context, tasks []Task, state *State, log logging.Logger) ([]Result, error) {
	wrapped := make([]Task, len(tasks))
	for i, task := range tasks {
		wrapped[i] = Task{Name: task.Name, Run: t.wrap(task)}
	}
	return t.inner.Sequence(ctx, wrapped, state, log)
}

func (t *traced) wrap(task Task) TaskFunc {
	return func(ctx context.Context, state *State, log logging.Logger) (Outcome, error) {
		ctx, span := t.tracer.Start(ctx, task.Name,
			trace.WithAttributes(attribute.String("fixq.task", task.Name)))
		defer span.End()

		outcome, err := task.Run(ctx, state, log)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return outcome, err
		}
		span.SetAttributes(attribute.String("fixq.outcome", outcome.String()))
		return outcome, nil
	}
}
