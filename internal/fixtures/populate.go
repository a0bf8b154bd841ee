package fixtures

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lherron/fixq/internal/domain"
	"github.com/lherron/fixq/internal/logging"
	"github.com/lherron/fixq/internal/store"
)

// Populate seeds an empty store with every declared record and relation,
// then creates the owner account. Existing records are left alone so it is
// safe to run against a partially seeded store.
func Populate(ctx context.Context, s store.Store, reg *Registry, log logging.Logger) (Result, error) {
	var total Result

	for _, group := range reg.Models() {
		res, err := ReconcileModelFixtures(ctx, s, group)
		if err != nil {
			return total, err
		}
		logGroup(log, string(group.Model), res)
		total = total.Add(res)
	}

	for _, group := range reg.Relations() {
		res, err := populateRelations(ctx, s, group)
		if err != nil {
			return total, err
		}
		logGroup(log, fmt.Sprintf("%s.%s", group.From, group.Relation), res)
		total = total.Add(res)
	}

	if err := CreateOwner(ctx, s, log); err != nil {
		return total, err
	}
	return total, nil
}

func logGroup(log logging.Logger, name string, res Result) {
	if !res.Complete() {
		log.Warn("%s: only %d of %d fixtures present", name, res.Done, res.Expected)
		return
	}
	log.Info("%s: %d fixtures present", name, res.Done)
}

// populateRelations fetches both sides of a relation group once and attaches
// every declared pair not already related.
func populateRelations(ctx context.Context, s store.Store, group RelationGroup) (Result, error) {
	res := Result{Expected: len(group.Specs)}

	fromAll, err := s.FindAll(ctx, group.From, nil)
	if err != nil {
		return res, fmt.Errorf("failed to fetch %s: %w", group.From, err)
	}
	toAll, err := s.FindAll(ctx, group.To, nil)
	if err != nil {
		return res, fmt.Errorf("failed to fetch %s: %w", group.To, err)
	}

	loaded := map[string][]store.Related{}
	for _, spec := range group.Specs {
		from := fromAll.Find(spec.From.Match)
		targets := toAll.Filter(spec.To.Match)
		if from == nil || len(targets) == 0 {
			continue
		}

		related, ok := loaded[from.ID]
		if !ok {
			related, err = s.Load(ctx, from, group.Relation)
			if err != nil {
				return res, fmt.Errorf("failed to load %s of %s: %w", group.Relation, spec.From, err)
			}
		}

		attached := true
		for _, to := range targets {
			if hasRelated(related, to.ID) {
				continue
			}
			if err := s.Attach(ctx, from, group.Relation, to, nil); err != nil {
				attached = false
				continue
			}
			related = append(related, store.Related{Record: to})
		}
		loaded[from.ID] = related
		if attached {
			res.Done++
		}
	}
	return res, nil
}

// CreateOwner adds the inactive owner account and gives it the owner role.
// Nothing happens when the role has not been seeded yet.
func CreateOwner(ctx context.Context, s store.Store, log logging.Logger) error {
	role, err := s.FindOne(ctx, store.Roles, store.Attrs{"name": domain.OwnerRoleName})
	if err != nil {
		return fmt.Errorf("failed to look up owner role: %w", err)
	}
	if role == nil {
		return nil
	}

	existing, err := s.FindOne(ctx, store.Users, store.Attrs{"email": domain.OwnerEmail})
	if err != nil {
		return fmt.Errorf("failed to look up owner: %w", err)
	}
	if existing != nil {
		log.Warn("Owner user already exists, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(domain.NewToken(16)), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash owner password: %w", err)
	}

	log.Info("Creating owner")
	user, err := s.Add(ctx, store.Users, store.Attrs{
		"name":     domain.OwnerName,
		"email":    domain.OwnerEmail,
		"password": string(hash),
		"status":   string(domain.UserStatusInactive),
	})
	if err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}
	if err := s.Attach(ctx, user, "roles", role, nil); err != nil {
		return fmt.Errorf("failed to assign owner role: %w", err)
	}
	return nil
}
