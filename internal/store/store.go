// Package store defines the record store the fixture engine reads and
// mutates, plus its SQLite implementation. Engines depend only on the Store
// interface so any implementation, including the in-memory fake in memstore,
// can stand in.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned by Edit and UpdatePivot when the target is absent.
var ErrNotFound = errors.New("record not found")

// Store is the contract fixture tasks run against. Every method either
// completes or returns a store-level failure; FindOne reports an absent
// record as (nil, nil), never as an error.
type Store interface {
	FindOne(ctx context.Context, model Model, where Attrs) (*Record, error)
	FindAll(ctx context.Context, model Model, where Attrs) (Collection, error)
	Add(ctx context.Context, model Model, attrs Attrs) (*Record, error)
	Edit(ctx context.Context, model Model, where Attrs, attrs Attrs) error

	// Load returns the records related to from, in the relation's stored order.
	Load(ctx context.Context, from *Record, relation string) ([]Related, error)
	UpdatePivot(ctx context.Context, from *Record, relation string, toID string, pivot Attrs) error
	Attach(ctx context.Context, from *Record, relation string, to *Record, pivot Attrs) error

	// PopulateDefaults inserts every default setting that is missing.
	PopulateDefaults(ctx context.Context) error
}

// Attrs is an attribute map for one record or a lookup filter.
type Attrs map[string]any

// Clone returns a shallow copy of a.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	c := make(Attrs, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Matches reports whether every key in where holds an equal value in a.
func (a Attrs) Matches(where Attrs) bool {
	for k, want := range where {
		got, ok := a[k]
		if !ok || !ValueEqual(got, want) {
			return false
		}
	}
	return true
}

// ValueEqual compares attribute values across the driver's representations
// (int vs int64, []byte vs string).
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(normalize(a)) == fmt.Sprint(normalize(b))
}

func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// Record is one persisted entity.
type Record struct {
	Model Model
	ID    string
	Attrs Attrs
}

// Get returns the raw attribute value or nil.
func (r *Record) Get(key string) any {
	if r == nil {
		return nil
	}
	return r.Attrs[key]
}

// String returns the attribute as a string, "" when unset.
func (r *Record) String(key string) string {
	switch v := r.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the attribute as an int, 0 when unset or not numeric.
func (r *Record) Int(key string) int {
	switch v := r.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	default:
		return 0
	}
}

// Clone returns a copy that does not share the attribute map.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{Model: r.Model, ID: r.ID, Attrs: r.Attrs.Clone()}
}

// Related is a record reached through a relation together with the
// attributes stored on the join row.
type Related struct {
	*Record
	Pivot Attrs
}

// Collection is an ordered, already-fetched set of records.
type Collection []*Record

// Len returns the number of records.
func (c Collection) Len() int {
	return len(c)
}

// Find returns the first record matching where, or nil.
func (c Collection) Find(where Attrs) *Record {
	for _, r := range c {
		if r.Attrs.Matches(where) {
			return r
		}
	}
	return nil
}

// Filter returns every record matching where.
func (c Collection) Filter(where Attrs) Collection {
	var out Collection
	for _, r := range c {
		if r.Attrs.Matches(where) {
			out = append(out, r)
		}
	}
	return out
}

// Each calls fn for every record in order, stopping at the first error.
func (c Collection) Each(fn func(*Record) error) error {
	for _, r := range c {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}
