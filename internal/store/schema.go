package store

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/lherron/fixq/internal/domain"
	"github.com/lherron/fixq/internal/slug"
)

// Model names a record type; it doubles as the table name.
type Model string

const (
	Settings    Model = "settings"
	Clients     Model = "clients"
	Tags        Model = "tags"
	Posts       Model = "posts"
	Roles       Model = "roles"
	Permissions Model = "permissions"
	Users       Model = "users"
)

var timestampColumns = []string{"created_at", "updated_at"}

var modelColumns = map[Model][]string{
	Settings:    {"id", "key", "value", "type"},
	Clients:     {"id", "name", "slug", "secret", "status", "type"},
	Tags:        {"id", "name", "slug", "description"},
	Posts:       {"id", "title", "slug", "markdown", "status", "featured"},
	Roles:       {"id", "name", "description"},
	Permissions: {"id", "name", "object_type", "action_type"},
	Users:       {"id", "name", "slug", "email", "password", "status"},
}

// Models returns every known model in a stable order.
func Models() []Model {
	models := make([]Model, 0, len(modelColumns))
	for m := range modelColumns {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// ParseModel validates a model name.
func ParseModel(name string) (Model, error) {
	m := Model(name)
	if _, ok := modelColumns[m]; !ok {
		return "", fmt.Errorf("unknown model %q", name)
	}
	return m, nil
}

// checkColumns rejects attribute keys the model does not have.
func checkColumns(model Model, attrs Attrs, allowTimestamps bool) error {
	cols, ok := modelColumns[model]
	if !ok {
		return fmt.Errorf("unknown model %q", model)
	}
	for key := range attrs {
		if !contains(cols, key) && !(allowTimestamps && contains(timestampColumns, key)) {
			return fmt.Errorf("unknown column %q for %s", key, model)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RelationDef describes a many-to-many relation stored in a join table.
type RelationDef struct {
	Name       string
	From       Model
	To         Model
	Table      string
	FromColumn string
	ToColumn   string
	PivotAttrs []string
}

var relations = []RelationDef{
	{Name: "tags", From: Posts, To: Tags, Table: "posts_tags", FromColumn: "post_id", ToColumn: "tag_id", PivotAttrs: []string{"sort_order"}},
	{Name: "permissions", From: Roles, To: Permissions, Table: "permissions_roles", FromColumn: "role_id", ToColumn: "permission_id"},
	{Name: "roles", From: Permissions, To: Roles, Table: "permissions_roles", FromColumn: "permission_id", ToColumn: "role_id"},
	{Name: "roles", From: Users, To: Roles, Table: "roles_users", FromColumn: "user_id", ToColumn: "role_id"},
}

// Relations returns every declared relation. Both directions of a
// many-to-many table are listed.
func Relations() []RelationDef {
	return append([]RelationDef(nil), relations...)
}

// Relation looks up the relation named name on model from.
func Relation(from Model, name string) (RelationDef, error) {
	for _, def := range relations {
		if def.From == from && def.Name == name {
			return def, nil
		}
	}
	return RelationDef{}, fmt.Errorf("unknown relation %s.%s", from, name)
}

func (def RelationDef) checkPivot(pivot Attrs) error {
	for key := range pivot {
		if !contains(def.PivotAttrs, key) {
			return fmt.Errorf("unknown pivot attribute %q for %s.%s", key, def.From, def.Name)
		}
	}
	return nil
}

func (def RelationDef) check(from, to *Record) error {
	if from == nil || from.Model != def.From {
		return fmt.Errorf("relation %s.%s requires a %s record", def.From, def.Name, def.From)
	}
	if to != nil && to.Model != def.To {
		return fmt.Errorf("relation %s.%s targets %s, got %s", def.From, def.Name, def.To, to.Model)
	}
	return nil
}

// Prepare validates attrs for insertion into model and fills the values the
// store owns: id, generated slugs and client secrets, status defaults.
func Prepare(model Model, attrs Attrs) (Attrs, error) {
	if err := checkColumns(model, attrs, false); err != nil {
		return nil, err
	}
	out := attrs.Clone()
	if out == nil {
		out = Attrs{}
	}
	if s, _ := out["id"].(string); s == "" {
		out["id"] = uuid.NewString()
	}

	switch model {
	case Clients:
		if s, _ := out["secret"].(string); s == "" {
			out["secret"] = domain.NewClientSecret()
		}
		if status, ok := out["status"].(string); ok {
			if err := domain.ValidateClientStatus(status); err != nil {
				return nil, err
			}
		}
		if err := fillSlug(out, "name"); err != nil {
			return nil, err
		}
	case Tags, Users:
		if err := fillSlug(out, "name"); err != nil {
			return nil, err
		}
	case Posts:
		if status, ok := out["status"].(string); ok {
			if err := domain.ValidatePostStatus(status); err != nil {
				return nil, err
			}
		}
		if err := fillSlug(out, "title"); err != nil {
			return nil, err
		}
	case Settings:
		if typ, ok := out["type"].(string); ok {
			if err := domain.ValidateSettingType(typ); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func fillSlug(attrs Attrs, from string) error {
	if s, _ := attrs["slug"].(string); s != "" {
		return slug.Validate(s)
	}
	source, _ := attrs[from].(string)
	s, err := slug.Normalize(source)
	if err != nil {
		return fmt.Errorf("cannot derive slug from %s %q: %w", from, source, err)
	}
	attrs["slug"] = s
	return nil
}
