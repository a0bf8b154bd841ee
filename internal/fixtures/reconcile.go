package fixtures

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/store"
)

// Result counts declared fixtures and how many ended up present.
type Result struct {
	Expected int `json:"expected" yaml:"expected"`
	Done     int `json:"done" yaml:"done"`
}

// Add returns the sum of r and o.
func (r Result) Add(o Result) Result {
	return Result{Expected: r.Expected + o.Expected, Done: r.Done + o.Done}
}

// Complete reports whether every declared fixture is present.
func (r Result) Complete() bool {
	return r.Done >= r.Expected
}

// Shortfall is the number of fixtures still missing.
func (r Result) Shortfall() int {
	if r.Done >= r.Expected {
		return 0
	}
	return r.Expected - r.Done
}

// ReconcileModelFixtures inserts every record of group that the store does
// not already hold, matched by the group's key. A failed insert is counted
// as not done; a failed lookup is returned.
func ReconcileModelFixtures(ctx context.Context, s store.Store, group ModelGroup) (Result, error) {
	return reconcileModels(ctx, s, group, true)
}

// CheckModelFixtures counts which records of group are present without
// inserting anything.
func CheckModelFixtures(ctx context.Context, s store.Store, group ModelGroup) (Result, error) {
	return reconcileModels(ctx, s, group, false)
}

func reconcileModels(ctx context.Context, s store.Store, group ModelGroup, write bool) (Result, error) {
	res := Result{Expected: len(group.Records)}
	for _, rec := range group.Records {
		existing, err := s.FindOne(ctx, group.Model, group.Lookup(rec))
		if err != nil {
			return res, fmt.Errorf("failed to look up %s fixture: %w", group.Model, err)
		}
		if existing != nil {
			res.Done++
			continue
		}
		if !write {
			continue
		}
		if _, err := s.Add(ctx, group.Model, rec); err != nil {
			continue
		}
		res.Done++
	}
	return res, nil
}

// ReconcileRelationFixtures creates every declared relation that is missing.
// A spec whose either side cannot be found is counted but not done.
func ReconcileRelationFixtures(ctx context.Context, s store.Store, specs []RelationSpec) (Result, error) {
	return reconcileRelations(ctx, s, specs, true)
}

// CheckRelationFixtures counts which specs are satisfied without attaching
// anything.
func CheckRelationFixtures(ctx context.Context, s store.Store, specs []RelationSpec) (Result, error) {
	return reconcileRelations(ctx, s, specs, false)
}

func reconcileRelations(ctx context.Context, s store.Store, specs []RelationSpec, write bool) (Result, error) {
	res := Result{Expected: len(specs)}
	loaded := map[string][]store.Related{}

	for _, spec := range specs {
		from, err := s.FindOne(ctx, spec.From.Model, spec.From.Match)
		if err != nil {
			return res, fmt.Errorf("failed to look up %s: %w", spec.From, err)
		}
		to, err := s.FindOne(ctx, spec.To.Model, spec.To.Match)
		if err != nil {
			return res, fmt.Errorf("failed to look up %s: %w", spec.To, err)
		}
		if from == nil || to == nil {
			continue
		}

		cacheKey := spec.Relation + ":" + from.ID
		related, ok := loaded[cacheKey]
		if !ok {
			related, err = s.Load(ctx, from, spec.Relation)
			if err != nil {
				return res, fmt.Errorf("failed to load %s of %s: %w", spec.Relation, spec.From, err)
			}
			loaded[cacheKey] = related
		}
		if hasRelated(related, to.ID) {
			res.Done++
			continue
		}
		if !write {
			continue
		}
		if err := s.Attach(ctx, from, spec.Relation, to, nil); err != nil {
			continue
		}
		loaded[cacheKey] = append(related, store.Related{Record: to})
		res.Done++
	}
	return res, nil
}

func hasRelated(related []store.Related, id string) bool {
	for _, r := range related {
		if r.ID == id {
			return true
		}
	}
	return false
}
