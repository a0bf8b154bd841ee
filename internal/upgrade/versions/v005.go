package versions

import (
	"context"

	"github.com/lherron/fixq/internal/domain"
	"github.com/lherron/fixq/internal/fixtures"
	"github.com/lherron/fixq/internal/logging"
	"github.com/lherron/fixq/internal/store"
	"github.com/lherron/fixq/internal/upgrade"
)

func v005(d Deps) []upgrade.Task {
	return []upgrade.Task{
		{Name: "update-ghost-client-secrets", Run: updateClientSecrets(d)},
		addClient("add-ghost-scheduler-client", domain.ClientGhostScheduler, d),
		{Name: "add-client-permissions", Run: addClientPermissions(d)},
	}
}

func updateClientSecrets(d Deps) upgrade.TaskFunc {
	return func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		clients, err := d.Store.FindAll(ctx, store.Clients, store.Attrs{"secret": domain.ClientPlaceholderSecret})
		if err != nil {
			return upgrade.Applied, err
		}
		if clients.Len() == 0 {
			log.Warn("No clients with placeholder secrets")
			return upgrade.AlreadySatisfied, nil
		}

		err = clients.Each(func(c *store.Record) error {
			return d.Store.Edit(ctx, store.Clients, store.Attrs{"id": c.ID},
				store.Attrs{"secret": domain.NewClientSecret()})
		})
		if err != nil {
			return upgrade.Applied, err
		}
		log.Info("Generated secrets for %d clients", clients.Len())
		return upgrade.Applied, nil
	}
}

const clientObjectType = "client"

func addClientPermissions(d Deps) upgrade.TaskFunc {
	return func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		group := d.Fixtures.FindModelFixtures(store.Permissions, store.Attrs{"object_type": clientObjectType})
		specs := d.Fixtures.FindPermissionRelationsForObject(clientObjectType)

		modelsBefore, err := fixtures.CheckModelFixtures(ctx, d.Store, group)
		if err != nil {
			return upgrade.Applied, err
		}
		relationsBefore, err := fixtures.CheckRelationFixtures(ctx, d.Store, specs)
		if err != nil {
			return upgrade.Applied, err
		}
		if modelsBefore.Complete() && relationsBefore.Complete() {
			log.Warn("Client permissions already present")
			return upgrade.AlreadySatisfied, nil
		}

		models, err := fixtures.ReconcileModelFixtures(ctx, d.Store, group)
		if err != nil {
			return upgrade.Applied, err
		}
		logResult(log, "client permissions", models)

		relations, err := fixtures.ReconcileRelationFixtures(ctx, d.Store, specs)
		if err != nil {
			return upgrade.Applied, err
		}
		logResult(log, "client permission grants", relations)

		if models.Done == modelsBefore.Done && relations.Done == relationsBefore.Done {
			return upgrade.AlreadySatisfied, nil
		}
		return upgrade.Applied, nil
	}
}

func logResult(log logging.Logger, what string, res fixtures.Result) {
	if res.Complete() {
		log.Info("Added %s: %d of %d present", what, res.Done, res.Expected)
		return
	}
	log.Warn("Added %s: only %d of %d present", what, res.Done, res.Expected)
}
