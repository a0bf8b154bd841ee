// Package fixtures declares the baseline records a database is seeded with
// and reconciles the declared set against what a store actually holds.
package fixtures

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lherron/fixq/internal/store"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// ModelGroup is the declared records of one model.
type ModelGroup struct {
	Model   store.Model
	Key     []string
	Records []store.Attrs
}

// Lookup returns the natural-key filter for rec.
func (g ModelGroup) Lookup(rec store.Attrs) store.Attrs {
	where := store.Attrs{}
	for _, k := range g.Key {
		where[k] = rec[k]
	}
	return where
}

// Ref identifies the records on one side of a relation by filter.
type Ref struct {
	Model store.Model
	Match store.Attrs
}

func (r Ref) String() string {
	return fmt.Sprintf("%s%v", r.Model, map[string]any(r.Match))
}

// RelationSpec is one declared association between the records matched by
// From and those matched by To.
type RelationSpec struct {
	Relation string
	From     Ref
	To       Ref
}

// RelationGroup is every declared spec of one relation.
type RelationGroup struct {
	Relation string
	From     store.Model
	To       store.Model
	Specs    []RelationSpec
}

// Registry is the parsed fixture declarations. It is read-only.
type Registry struct {
	models    []ModelGroup
	relations []RelationGroup
}

type fileFormat struct {
	Models []struct {
		Model   string        `yaml:"model"`
		Key     []string      `yaml:"key"`
		Records []store.Attrs `yaml:"records"`
	} `yaml:"models"`
	Relations []struct {
		Relation string  `yaml:"relation"`
		From     sideDef `yaml:"from"`
		To       sideDef `yaml:"to"`
		Entries  []struct {
			From   string                `yaml:"from"`
			To     []string              `yaml:"to"`
			Grants map[string]actionList `yaml:"grants"`
		} `yaml:"entries"`
	} `yaml:"relations"`
}

type sideDef struct {
	Model string `yaml:"model"`
	Key   string `yaml:"key"`
	Group string `yaml:"group"`
}

// actionList is either the scalar "all" or a list of actions.
type actionList struct {
	all     bool
	actions []string
}

func (a *actionList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != "all" {
			return fmt.Errorf("line %d: expected \"all\" or a list, got %q", node.Line, node.Value)
		}
		a.all = true
		return nil
	}
	return node.Decode(&a.actions)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded declarations.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Parse(fixturesYAML)
	})
	return defaultRegistry, defaultErr
}

// Parse builds a registry from YAML declarations.
func Parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	r := &Registry{}
	for _, m := range f.Models {
		model, err := store.ParseModel(m.Model)
		if err != nil {
			return nil, err
		}
		if len(m.Key) == 0 {
			return nil, fmt.Errorf("fixtures for %s declare no key", model)
		}
		for i, rec := range m.Records {
			for _, k := range m.Key {
				if _, ok := rec[k]; !ok {
					return nil, fmt.Errorf("fixture %s #%d is missing key %q", model, i, k)
				}
			}
		}
		r.models = append(r.models, ModelGroup{Model: model, Key: m.Key, Records: m.Records})
	}

	for _, rel := range f.Relations {
		from, err := store.ParseModel(rel.From.Model)
		if err != nil {
			return nil, err
		}
		to, err := store.ParseModel(rel.To.Model)
		if err != nil {
			return nil, err
		}
		if _, err := store.Relation(from, rel.Relation); err != nil {
			return nil, err
		}

		group := RelationGroup{Relation: rel.Relation, From: from, To: to}
		for _, entry := range rel.Entries {
			fromRef := Ref{Model: from, Match: store.Attrs{rel.From.Key: entry.From}}
			for _, key := range entry.To {
				group.Specs = append(group.Specs, RelationSpec{
					Relation: rel.Relation,
					From:     fromRef,
					To:       Ref{Model: to, Match: store.Attrs{rel.To.Key: key}},
				})
			}

			groups := make([]string, 0, len(entry.Grants))
			for g := range entry.Grants {
				groups = append(groups, g)
			}
			sort.Strings(groups)
			for _, g := range groups {
				grant := entry.Grants[g]
				keys := grant.actions
				if grant.all {
					keys = r.groupKeys(to, rel.To.Group, g, rel.To.Key)
					if len(keys) == 0 {
						return nil, fmt.Errorf("%s grants all of %s %q but none are declared", entry.From, to, g)
					}
				}
				for _, key := range keys {
					group.Specs = append(group.Specs, RelationSpec{
						Relation: rel.Relation,
						From:     fromRef,
						To:       Ref{Model: to, Match: store.Attrs{rel.To.Group: g, rel.To.Key: key}},
					})
				}
			}
		}
		r.relations = append(r.relations, group)
	}
	return r, nil
}

// groupKeys lists the key values of every declared record of model whose
// groupAttr equals group.
func (r *Registry) groupKeys(model store.Model, groupAttr, group, keyAttr string) []string {
	var keys []string
	for _, rec := range r.FindModelFixtures(model, store.Attrs{groupAttr: group}).Records {
		keys = append(keys, fmt.Sprint(rec[keyAttr]))
	}
	return keys
}

// Models returns the model groups in population order.
func (r *Registry) Models() []ModelGroup {
	return append([]ModelGroup(nil), r.models...)
}

// Relations returns the relation groups in population order.
func (r *Registry) Relations() []RelationGroup {
	return append([]RelationGroup(nil), r.relations...)
}

// FindModelFixtures returns the declared records of model that match filter.
func (r *Registry) FindModelFixtures(model store.Model, filter store.Attrs) ModelGroup {
	out := ModelGroup{Model: model}
	for _, g := range r.models {
		if g.Model != model {
			continue
		}
		out.Key = g.Key
		for _, rec := range g.Records {
			if rec.Matches(filter) {
				out.Records = append(out.Records, rec.Clone())
			}
		}
	}
	return out
}

// FindPermissionRelationsForObject returns the role grants declared for
// permissions on objectType.
func (r *Registry) FindPermissionRelationsForObject(objectType string) []RelationSpec {
	var out []RelationSpec
	for _, g := range r.relations {
		if g.To != store.Permissions {
			continue
		}
		for _, spec := range g.Specs {
			if store.ValueEqual(spec.To.Match["object_type"], objectType) {
				out = append(out, spec)
			}
		}
	}
	return out
}
