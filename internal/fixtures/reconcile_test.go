package fixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/lherron/fixq/internal/store"
	"github.com/lherron/fixq/internal/store/memstore"
)

func clientPermissions(t *testing.T) (ModelGroup, []RelationSpec) {
	t.Helper()
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	return reg.FindModelFixtures(store.Permissions, store.Attrs{"object_type": "client"}),
		reg.FindPermissionRelationsForObject("client")
}

func TestReconcileModelFixturesInsertsOnlyMissing(t *testing.T) {
	group, _ := clientPermissions(t)
	s := memstore.New()
	s.Seed(store.Permissions, group.Records[0], group.Records[1])

	res, err := ReconcileModelFixtures(context.Background(), s, group)
	if err != nil {
		t.Fatalf("ReconcileModelFixtures failed: %v", err)
	}
	if res.Expected != 5 || res.Done != 5 {
		t.Errorf("expected {5 5}, got %+v", res)
	}
	if got := s.CallCount("Add", "permissions"); got != 3 {
		t.Errorf("expected 3 inserts, got %d", got)
	}

	res, err = ReconcileModelFixtures(context.Background(), s, group)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !res.Complete() || s.CallCount("Add", "permissions") != 3 {
		t.Errorf("expected second run to insert nothing, got %+v", res)
	}
}

func TestReconcileModelFixturesCountsFailedInsert(t *testing.T) {
	group, _ := clientPermissions(t)
	s := memstore.New()
	s.FailOn("Add", "permissions", errors.New("disk full"))

	res, err := ReconcileModelFixtures(context.Background(), s, group)
	if err != nil {
		t.Fatalf("expected insert failure to be counted, got %v", err)
	}
	if res.Expected != 5 || res.Done != 0 {
		t.Errorf("expected {5 0}, got %+v", res)
	}
	if res.Shortfall() != 5 || res.Complete() {
		t.Errorf("expected shortfall 5, got %d", res.Shortfall())
	}
}

func TestReconcileModelFixturesPropagatesLookupFailure(t *testing.T) {
	group, _ := clientPermissions(t)
	s := memstore.New()
	boom := errors.New("connection lost")
	s.FailOn("FindOne", "permissions", boom)

	if _, err := ReconcileModelFixtures(context.Background(), s, group); !errors.Is(err, boom) {
		t.Fatalf("expected lookup failure, got %v", err)
	}
}

func TestReconcileRelationFixtures(t *testing.T) {
	group, specs := clientPermissions(t)
	s := memstore.New()
	ctx := context.Background()
	s.Seed(store.Roles, store.Attrs{"name": "Administrator"}, store.Attrs{"name": "Editor"})
	if _, err := ReconcileModelFixtures(ctx, s, group); err != nil {
		t.Fatalf("ReconcileModelFixtures failed: %v", err)
	}

	res, err := ReconcileRelationFixtures(ctx, s, specs)
	if err != nil {
		t.Fatalf("ReconcileRelationFixtures failed: %v", err)
	}
	// Author is missing, so its two grants cannot be resolved.
	if res.Expected != 12 || res.Done != 10 {
		t.Errorf("expected {12 10}, got %+v", res)
	}
	if got := s.CallCount("Attach", "roles.permissions"); got != 10 {
		t.Errorf("expected 10 attaches, got %d", got)
	}

	s.Seed(store.Roles, store.Attrs{"name": "Author"})
	res, err = ReconcileRelationFixtures(ctx, s, specs)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !res.Complete() {
		t.Errorf("expected complete after author seeded, got %+v", res)
	}
	if got := s.CallCount("Attach", "roles.permissions"); got != 12 {
		t.Errorf("expected only the two missing grants attached, got %d total", got)
	}
}

func TestCheckDoesNotWrite(t *testing.T) {
	group, specs := clientPermissions(t)
	s := memstore.New()
	ctx := context.Background()

	res, err := CheckModelFixtures(ctx, s, group)
	if err != nil {
		t.Fatalf("CheckModelFixtures failed: %v", err)
	}
	if res.Done != 0 || res.Expected != 5 {
		t.Errorf("expected {5 0}, got %+v", res)
	}
	if _, err := CheckRelationFixtures(ctx, s, specs); err != nil {
		t.Fatalf("CheckRelationFixtures failed: %v", err)
	}
	if s.Writes() != 0 {
		t.Errorf("expected no writes, got %d", s.Writes())
	}
}

func TestResultArithmetic(t *testing.T) {
	r := Result{Expected: 2, Done: 1}.Add(Result{Expected: 3, Done: 3})
	if r.Expected != 5 || r.Done != 4 {
		t.Fatalf("expected {5 4}, got %+v", r)
	}
	if r.Shortfall() != 1 {
		t.Errorf("expected shortfall 1, got %d", r.Shortfall())
	}
	if (Result{}).Shortfall() != 0 || !(Result{}).Complete() {
		t.Error("expected empty result to be complete")
	}
}
