package versions

import (
	"context"
	"fmt"

	"github.com/lherron/fixq/internal/domain"
	"github.com/lherron/fixq/internal/logging"
	"github.com/lherron/fixq/internal/store"
	"github.com/lherron/fixq/internal/upgrade"
)

// settingToPrivate moves a setting into the private settings group.
func settingToPrivate(name, key string, d Deps) upgrade.Task {
	return upgrade.Task{Name: name, Run: func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		setting, err := d.Store.FindOne(ctx, store.Settings, store.Attrs{"key": key})
		if err != nil {
			return upgrade.Applied, err
		}
		if setting == nil {
			log.Warn("Setting %s not found, skipping type update", key)
			return upgrade.AlreadySatisfied, nil
		}
		if setting.String("type") == string(domain.SettingTypePrivate) {
			log.Warn("Setting %s already has type %s", key, domain.SettingTypePrivate)
			return upgrade.AlreadySatisfied, nil
		}

		log.Info("Updating %s setting type to %s", key, domain.SettingTypePrivate)
		err = d.Store.Edit(ctx, store.Settings, store.Attrs{"key": key},
			store.Attrs{"type": string(domain.SettingTypePrivate)})
		return upgrade.Applied, err
	}}
}

// addClient inserts the declared client fixture with slug unless a client
// with that slug already exists.
func addClient(name, slug string, d Deps) upgrade.Task {
	return upgrade.Task{Name: name, Run: func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		client, err := d.Store.FindOne(ctx, store.Clients, store.Attrs{"slug": slug})
		if err != nil {
			return upgrade.Applied, err
		}
		if client != nil {
			log.Warn("Client %s already exists", slug)
			return upgrade.AlreadySatisfied, nil
		}

		group := d.Fixtures.FindModelFixtures(store.Clients, store.Attrs{"slug": slug})
		if len(group.Records) == 0 {
			return upgrade.Applied, fmt.Errorf("no client fixture declared for %s", slug)
		}
		log.Info("Adding %s client fixture", slug)
		_, err = d.Store.Add(ctx, store.Clients, group.Records[0])
		return upgrade.Applied, err
	}}
}
