package versions

import (
	"errors"
	"testing"

	"github.com/lherron/fixq/internal/domain"
	"github.com/lherron/fixq/internal/store"
	"github.com/lherron/fixq/internal/upgrade"
)

func TestUpdateGhostClientSecrets(t *testing.T) {
	f := newFixture(t, false)
	f.store.Seed(store.Clients,
		store.Attrs{"name": "A", "secret": domain.ClientPlaceholderSecret},
		store.Attrs{"name": "B", "secret": "0123456789ab"},
		store.Attrs{"name": "C", "secret": domain.ClientPlaceholderSecret},
	)

	if outcome := f.run(t, "update-ghost-client-secrets"); outcome != upgrade.Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	for _, c := range f.store.Records(store.Clients) {
		if !domain.IsValidClientSecret(c.String("secret")) {
			t.Errorf("client %s kept secret %q", c.String("name"), c.String("secret"))
		}
	}
	if f.store.Records(store.Clients).Find(store.Attrs{"name": "B"}).String("secret") != "0123456789ab" {
		t.Error("expected valid secret untouched")
	}
	if f.store.CallCount("Edit", "clients") != 2 {
		t.Errorf("expected 2 edits, got %d", f.store.CallCount("Edit", "clients"))
	}
	f.log.AssertLogged(t, 1, 0)

	f.rerun(t, "update-ghost-client-secrets")
}

func TestAddGhostSchedulerClient(t *testing.T) {
	f := newFixture(t, false)
	f.run(t, "add-ghost-scheduler-client")
	client := f.store.Records(store.Clients).Find(store.Attrs{"slug": "ghost-scheduler"})
	if client == nil || client.String("status") != "enabled" {
		t.Fatalf("expected enabled scheduler client, got %v", client)
	}
	f.log.AssertLogged(t, 1, 0)

	f.rerun(t, "add-ghost-scheduler-client")
}

func seedRoles(f *fixture) {
	f.store.Seed(store.Roles,
		store.Attrs{"name": "Administrator"}, store.Attrs{"name": "Editor"}, store.Attrs{"name": "Author"})
}

func TestAddClientPermissions(t *testing.T) {
	f := newFixture(t, false)
	seedRoles(f)

	if outcome := f.run(t, "add-client-permissions"); outcome != upgrade.Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	if n := f.store.Records(store.Permissions).Filter(store.Attrs{"object_type": "client"}).Len(); n != 5 {
		t.Errorf("expected 5 client permissions, got %d", n)
	}
	if n := f.store.CallCount("Attach", "roles.permissions"); n != 12 {
		t.Errorf("expected 12 grants, got %d", n)
	}
	f.log.AssertLogged(t, 2, 0)

	f.rerun(t, "add-client-permissions")
}

func TestAddClientPermissionsShortfall(t *testing.T) {
	f := newFixture(t, false)
	seedRoles(f)
	f.store.FailOn("Add", "permissions", errors.New("constraint"))

	if outcome := f.run(t, "add-client-permissions"); outcome != upgrade.AlreadySatisfied {
		t.Errorf("expected no progress to be reported as already-satisfied, got %s", outcome)
	}
	// Permissions could not be inserted, so neither group is complete.
	f.log.AssertLogged(t, 0, 2)
}
