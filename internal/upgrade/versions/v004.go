package versions

import (
	"context"
	"fmt"
	"strings"

	"github.com/lherron/fixq/internal/domain"
	"github.com/lherron/fixq/internal/logging"
	"github.com/lherron/fixq/internal/notify"
	"github.com/lherron/fixq/internal/store"
	"github.com/lherron/fixq/internal/upgrade"
)

const (
	jquerySentinel = "<!-- You can safely delete this line if your theme does not require jQuery -->"
	jqueryScript   = `<script type="text/javascript" src="https://code.jquery.com/jquery-1.11.3.min.js"></script>`
	jquerySnippet  = jquerySentinel + "\n" + jqueryScript + "\n\n"
)

var jqueryNotification = notify.Notification{
	Type:     "info",
	Location: "settings-privacy",
	Message: "jQuery has been removed from Ghost core and is now being loaded from the jQuery Foundation's CDN. " +
		"This can be changed or removed in your <strong>Code Injection</strong> settings area.",
	Dismissible: true,
}

func v004(d Deps) []upgrade.Task {
	return []upgrade.Task{
		{Name: "move-jquery", Run: moveJQuery(d)},
		settingToPrivate("update-private-setting", domain.SettingIsPrivate, d),
		settingToPrivate("update-password-setting", domain.SettingPassword, d),
		{Name: "update-ghost-admin-client", Run: updateGhostAdminClient(d)},
		addClient("add-ghost-frontend-client", domain.ClientGhostFrontend, d),
		{Name: "clean-broken-tags", Run: cleanBrokenTags(d)},
		{Name: "add-post-tag-order", Run: addPostTagOrder(d)},
		{Name: "add-new-post-fixture", Run: addNewPostFixture(d)},
	}
}

func moveJQuery(d Deps) upgrade.TaskFunc {
	return func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		setting, err := d.Store.FindOne(ctx, store.Settings, store.Attrs{"key": domain.SettingGhostFoot})
		if err != nil {
			return upgrade.Applied, err
		}
		if setting == nil {
			log.Warn("Setting %s not found, skipping jQuery move", domain.SettingGhostFoot)
			return upgrade.AlreadySatisfied, nil
		}
		value := setting.String("value")
		if strings.Contains(value, jquerySentinel) {
			log.Warn("jQuery already present in %s", domain.SettingGhostFoot)
			return upgrade.AlreadySatisfied, nil
		}

		log.Info("Adding jQuery link to %s", domain.SettingGhostFoot)
		err = d.Store.Edit(ctx, store.Settings, store.Attrs{"key": domain.SettingGhostFoot},
			store.Attrs{"value": jquerySnippet + value})
		if err != nil {
			return upgrade.Applied, err
		}

		if d.Flags.PrivacyRestricted() {
			if err := d.Notifier.Add(ctx, jqueryNotification); err != nil {
				log.Warn("Could not add jQuery privacy notification: %v", err)
				return upgrade.Applied, nil
			}
			log.Info("Added notification about jQuery and privacy settings")
		}
		return upgrade.Applied, nil
	}
}

func updateGhostAdminClient(d Deps) upgrade.TaskFunc {
	return func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		client, err := d.Store.FindOne(ctx, store.Clients, store.Attrs{"slug": domain.ClientGhostAdmin})
		if err != nil {
			return upgrade.Applied, err
		}
		if client == nil {
			log.Warn("Client %s not found, skipping update", domain.ClientGhostAdmin)
			return upgrade.AlreadySatisfied, nil
		}

		changes := store.Attrs{}
		if secret := client.String("secret"); secret == "" || secret == domain.ClientPlaceholderSecret {
			changes["secret"] = domain.NewClientSecret()
		}
		if client.String("status") != string(domain.ClientStatusEnabled) {
			changes["status"] = string(domain.ClientStatusEnabled)
		}
		if len(changes) == 0 {
			log.Warn("Client %s already has a secret and is enabled", domain.ClientGhostAdmin)
			return upgrade.AlreadySatisfied, nil
		}

		log.Info("Updating %s client fixture", domain.ClientGhostAdmin)
		err = d.Store.Edit(ctx, store.Clients, store.Attrs{"id": client.ID}, changes)
		return upgrade.Applied, err
	}
}

// cleanTagName drops empty comma-separated segments from name. Segments
// holding only whitespace are kept.
func cleanTagName(name string) string {
	var parts []string
	for _, seg := range strings.Split(name, ",") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	cleaned := strings.Join(parts, ",")
	if cleaned == "" {
		return domain.FallbackTagName
	}
	return cleaned
}

func cleanBrokenTags(d Deps) upgrade.TaskFunc {
	return func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		tags, err := d.Store.FindAll(ctx, store.Tags, nil)
		if err != nil {
			return upgrade.Applied, err
		}
		if tags.Len() == 0 {
			log.Warn("No tags found, skipping tag cleanup")
			return upgrade.AlreadySatisfied, nil
		}

		cleaned := 0
		err = tags.Each(func(tag *store.Record) error {
			name := tag.String("name")
			fixed := cleanTagName(name)
			if fixed == name {
				return nil
			}
			if err := d.Store.Edit(ctx, store.Tags, store.Attrs{"id": tag.ID}, store.Attrs{"name": fixed}); err != nil {
				return fmt.Errorf("failed to rename tag %s: %w", tag.ID, err)
			}
			cleaned++
			return nil
		})
		if err != nil {
			return upgrade.Applied, err
		}
		if cleaned == 0 {
			log.Warn("No broken tags found")
			return upgrade.AlreadySatisfied, nil
		}
		log.Info("Cleaned %d broken tag names", cleaned)
		return upgrade.Applied, nil
	}
}

type pivotUpdate struct {
	post  *store.Record
	tagID string
	order int
}

func addPostTagOrder(d Deps) upgrade.TaskFunc {
	return func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		posts, err := d.Store.FindAll(ctx, store.Posts, nil)
		if err != nil {
			return upgrade.Applied, err
		}
		if posts.Len() == 0 {
			log.Warn("No posts found, skipping tag order")
			return upgrade.AlreadySatisfied, nil
		}

		var updates []pivotUpdate
		ordered := 0
		for _, post := range posts {
			tags, err := d.Store.Load(ctx, post, "tags")
			if err != nil {
				return upgrade.Applied, err
			}
			if tagOrderSet(tags) {
				continue
			}
			if tagOrderMatches(tags) {
				continue
			}
			for i, tag := range tags {
				updates = append(updates, pivotUpdate{post: post, tagID: tag.ID, order: i})
			}
			ordered++
		}
		if len(updates) == 0 {
			log.Warn("Tag order already set on every post")
			return upgrade.AlreadySatisfied, nil
		}

		for _, u := range updates {
			if err := d.Store.UpdatePivot(ctx, u.post, "tags", u.tagID, store.Attrs{"sort_order": u.order}); err != nil {
				return upgrade.Applied, err
			}
		}
		log.Info("Added order to %d tag relations on %d posts", len(updates), ordered)
		return upgrade.Applied, nil
	}
}

// tagOrderMatches reports whether every relation already holds its
// zero-based position, as a lone relation stored with order 0 does.
func tagOrderMatches(tags []store.Related) bool {
	for i, tag := range tags {
		if !store.ValueEqual(tag.Pivot["sort_order"], i) {
			return false
		}
	}
	return true
}

// tagOrderSet reports whether any relation already carries a non-zero order,
// which marks the whole post as migrated.
func tagOrderSet(tags []store.Related) bool {
	for _, tag := range tags {
		v := tag.Pivot["sort_order"]
		if v != nil && !store.ValueEqual(v, 0) {
			return true
		}
	}
	return false
}

func addNewPostFixture(d Deps) upgrade.TaskFunc {
	return func(ctx context.Context, _ *upgrade.State, log logging.Logger) (upgrade.Outcome, error) {
		group := d.Fixtures.FindModelFixtures(store.Posts, nil)
		if len(group.Records) == 0 {
			return upgrade.Applied, fmt.Errorf("no post fixture declared")
		}
		fixture := group.Records[0]

		post, err := d.Store.FindOne(ctx, store.Posts, group.Lookup(fixture))
		if err != nil {
			return upgrade.Applied, err
		}
		if post != nil {
			log.Warn("Post fixture %v already exists", fixture["slug"])
			return upgrade.AlreadySatisfied, nil
		}

		log.Info("Adding post fixture %v", fixture["slug"])
		_, err = d.Store.Add(ctx, store.Posts, fixture)
		return upgrade.Applied, err
	}
}
