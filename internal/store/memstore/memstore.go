// Package memstore is an in-memory store.Store for tests. It records every
// call and can be told to fail specific ones.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/lherron/fixq/internal/settings"
	"github.com/lherron/fixq/internal/store"
)

// Call is one recorded Store method invocation. Target is the model name, or
// "model.relation" for relation methods.
type Call struct {
	Method string
	Target string
}

type failure struct {
	call Call
	err  error
}

type link struct {
	table string
	ids   map[string]string
	pivot store.Attrs
}

var columnDefaults = map[store.Model]store.Attrs{
	store.Settings: {"type": "core"},
	store.Clients:  {"status": "development", "type": "ua"},
	store.Posts:    {"status": "draft", "featured": int64(0)},
	store.Users:    {"status": "active"},
}

var uniqueKeys = map[store.Model][][]string{
	store.Settings:    {{"key"}},
	store.Clients:     {{"slug"}},
	store.Tags:        {{"slug"}},
	store.Posts:       {{"slug"}},
	store.Roles:       {{"name"}},
	store.Permissions: {{"object_type", "action_type"}},
	store.Users:       {{"slug"}, {"email"}},
}

// Store holds records per model in insertion order.
type Store struct {
	mu       sync.Mutex
	records  map[store.Model][]*store.Record
	links    []*link
	calls    []Call
	failures []failure
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[store.Model][]*store.Record)}
}

// Seed inserts records directly, bypassing call recording and failure
// injection. It panics on invalid attributes.
func (s *Store) Seed(model store.Model, rows ...store.Attrs) []*store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Record, 0, len(rows))
	for _, attrs := range rows {
		rec, err := s.insert(model, attrs)
		if err != nil {
			panic(fmt.Sprintf("memstore: seed %s: %v", model, err))
		}
		out = append(out, rec.Clone())
	}
	return out
}

// SeedLink attaches to to from through relation, bypassing recording.
func (s *Store) SeedLink(from *store.Record, relation string, to *store.Record, pivot store.Attrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attach(from, relation, to, pivot); err != nil {
		panic(fmt.Sprintf("memstore: seed link: %v", err))
	}
}

// FailOn makes every later call to method on target return err.
func (s *Store) FailOn(method, target string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{call: Call{Method: method, Target: target}, err: err})
}

// Calls returns a copy of the recorded calls.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many times method was called on target. An empty
// target counts every call to method.
func (s *Store) CallCount(method, target string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && (target == "" || c.Target == target) {
			n++
		}
	}
	return n
}

// Writes returns the number of mutating calls recorded.
func (s *Store) Writes() int {
	n := 0
	for _, c := range s.Calls() {
		switch c.Method {
		case "Add", "Edit", "UpdatePivot", "Attach", "PopulateDefaults":
			n++
		}
	}
	return n
}

// Records returns copies of every record of model.
func (s *Store) Records(model store.Model) store.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(model, nil)
}

// record appends the call and returns the injected error, if any. Callers
// hold s.mu.
func (s *Store) record(method, target string) error {
	c := Call{Method: method, Target: target}
	s.calls = append(s.calls, c)
	for _, f := range s.failures {
		if f.call == c {
			return f.err
		}
	}
	return nil
}

func (s *Store) collect(model store.Model, where store.Attrs) store.Collection {
	var out store.Collection
	for _, r := range s.records[model] {
		if r.Attrs.Matches(where) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *Store) insert(model store.Model, attrs store.Attrs) (*store.Record, error) {
	prepared, err := store.Prepare(model, attrs)
	if err != nil {
		return nil, err
	}
	for k, v := range columnDefaults[model] {
		if _, ok := prepared[k]; !ok {
			prepared[k] = v
		}
	}
	for _, cols := range uniqueKeys[model] {
		where := store.Attrs{}
		for _, col := range cols {
			where[col] = prepared[col]
		}
		if len(s.collect(model, where)) > 0 {
			return nil, fmt.Errorf("UNIQUE constraint failed: %s %v", model, cols)
		}
	}
	rec := &store.Record{Model: model, ID: fmt.Sprint(prepared["id"]), Attrs: prepared}
	s.records[model] = append(s.records[model], rec)
	return rec, nil
}

func (s *Store) FindOne(ctx context.Context, model store.Model, where store.Attrs) (*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindOne", string(model)); err != nil {
		return nil, err
	}
	all := s.collect(model, where)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (s *Store) FindAll(ctx context.Context, model store.Model, where store.Attrs) (store.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindAll", string(model)); err != nil {
		return nil, err
	}
	return s.collect(model, where), nil
}

func (s *Store) Add(ctx context.Context, model store.Model, attrs store.Attrs) (*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("Add", string(model)); err != nil {
		return nil, err
	}
	rec, err := s.insert(model, attrs)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (s *Store) Edit(ctx context.Context, model store.Model, where store.Attrs, attrs store.Attrs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("Edit", string(model)); err != nil {
		return err
	}
	n := 0
	for _, r := range s.records[model] {
		if !r.Attrs.Matches(where) {
			continue
		}
		for k, v := range attrs {
			r.Attrs[k] = v
		}
		n++
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", model, where, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, from *store.Record, relation string) ([]store.Related, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == nil {
		return nil, fmt.Errorf("load %s: nil record", relation)
	}
	if err := s.record("Load", string(from.Model)+"."+relation); err != nil {
		return nil, err
	}
	def, err := store.Relation(from.Model, relation)
	if err != nil {
		return nil, err
	}
	var out []store.Related
	for _, l := range s.links {
		if l.table != def.Table || l.ids[def.FromColumn] != from.ID {
			continue
		}
		targets := s.collect(def.To, store.Attrs{"id": l.ids[def.ToColumn]})
		if len(targets) == 0 {
			continue
		}
		out = append(out, store.Related{Record: targets[0], Pivot: l.pivot.Clone()})
	}
	return out, nil
}

func (s *Store) UpdatePivot(ctx context.Context, from *store.Record, relation string, toID string, pivot store.Attrs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == nil {
		return fmt.Errorf("update pivot %s: nil record", relation)
	}
	if err := s.record("UpdatePivot", string(from.Model)+"."+relation); err != nil {
		return err
	}
	def, err := store.Relation(from.Model, relation)
	if err != nil {
		return err
	}
	for _, l := range s.links {
		if l.table == def.Table && l.ids[def.FromColumn] == from.ID && l.ids[def.ToColumn] == toID {
			for k, v := range pivot {
				l.pivot[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("%s %s -> %s: %w", def.Table, from.ID, toID, store.ErrNotFound)
}

func (s *Store) Attach(ctx context.Context, from *store.Record, relation string, to *store.Record, pivot store.Attrs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == nil {
		return fmt.Errorf("attach %s: nil record", relation)
	}
	if err := s.record("Attach", string(from.Model)+"."+relation); err != nil {
		return err
	}
	return s.attach(from, relation, to, pivot)
}

func (s *Store) attach(from *store.Record, relation string, to *store.Record, pivot store.Attrs) error {
	def, err := store.Relation(from.Model, relation)
	if err != nil {
		return err
	}
	if to == nil || to.Model != def.To {
		return fmt.Errorf("attach %s.%s: target must be a %s record", from.Model, relation, def.To)
	}
	for _, l := range s.links {
		if l.table == def.Table && l.ids[def.FromColumn] == from.ID && l.ids[def.ToColumn] == to.ID {
			return nil
		}
	}
	p := store.Attrs{}
	for _, attr := range def.PivotAttrs {
		p[attr] = int64(0)
	}
	for k, v := range pivot {
		p[k] = v
	}
	s.links = append(s.links, &link{
		table: def.Table,
		ids:   map[string]string{def.FromColumn: from.ID, def.ToColumn: to.ID},
		pivot: p,
	})
	return nil
}

func (s *Store) PopulateDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("PopulateDefaults", string(store.Settings)); err != nil {
		return err
	}
	defaults, err := settings.Defaults()
	if err != nil {
		return err
	}
	for _, d := range defaults {
		if len(s.collect(store.Settings, store.Attrs{"key": d.Key})) > 0 {
			continue
		}
		if _, err := s.insert(store.Settings, store.Attrs{"key": d.Key, "value": d.Value, "type": string(d.Type)}); err != nil {
			return err
		}
	}
	return nil
}
