package domain

import (
	"fmt"
	"net/mail"
)

// ValidateSettingType validates a setting type
func ValidateSettingType(t string) error {
	switch SettingType(t) {
	case SettingTypeCore, SettingTypeBlog, SettingTypeTheme, SettingTypeApp,
		SettingTypePlugin, SettingTypePrivate, SettingTypeMembers, SettingTypeBookmarked:
		return nil
	default:
		return fmt.Errorf("invalid setting type %q: must be one of: core, blog, theme, app, plugin, private, members, bookmarked", t)
	}
}

// ValidateClientStatus validates a client status
func ValidateClientStatus(status string) error {
	switch ClientStatus(status) {
	case ClientStatusEnabled, ClientStatusDevelopment, ClientStatusDisabled:
		return nil
	default:
		return fmt.Errorf("invalid client status %q: must be one of: enabled, development, disabled", status)
	}
}

// ValidatePostStatus validates a post status
func ValidatePostStatus(status string) error {
	switch PostStatus(status) {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled:
		return nil
	default:
		return fmt.Errorf("invalid post status %q: must be one of: draft, published, scheduled", status)
	}
}

// ValidateUserStatus validates a user status
func ValidateUserStatus(status string) error {
	switch UserStatus(status) {
	case UserStatusActive, UserStatusInactive, UserStatusLocked:
		return nil
	default:
		return fmt.Errorf("invalid user status %q: must be one of: active, inactive, locked", status)
	}
}

// ValidateEmail validates a bare email address
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

// IsValidClientSecret reports whether secret is a real generated secret.
func IsValidClientSecret(secret string) bool {
	return secret != "" && secret != ClientPlaceholderSecret
}
