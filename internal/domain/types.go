package domain

// Setting keys touched by fixture upgrades
const (
	SettingGhostFoot       = "ghost_foot"
	SettingIsPrivate       = "isPrivate"
	SettingPassword        = "password"
	SettingDatabaseVersion = "databaseVersion"
)

// SettingType classifies a setting for the settings API
type SettingType string

const (
	SettingTypeCore       SettingType = "core"
	SettingTypeBlog       SettingType = "blog"
	SettingTypeTheme      SettingType = "theme"
	SettingTypeApp        SettingType = "app"
	SettingTypePlugin     SettingType = "plugin"
	SettingTypePrivate    SettingType = "private"
	SettingTypeMembers    SettingType = "members"
	SettingTypeBookmarked SettingType = "bookmarked"
)

// ClientStatus represents whether an API client may authenticate
type ClientStatus string

const (
	ClientStatusEnabled     ClientStatus = "enabled"
	ClientStatusDevelopment ClientStatus = "development"
	ClientStatusDisabled    ClientStatus = "disabled"
)

// ClientPlaceholderSecret is the secret older versions stored for clients
// whose real secret was never generated.
const ClientPlaceholderSecret = "not_available"

// Built-in client slugs
const (
	ClientGhostAdmin     = "ghost-admin"
	ClientGhostFrontend  = "ghost-frontend"
	ClientGhostScheduler = "ghost-scheduler"
)

// UserStatus represents a user account lifecycle state
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLocked   UserStatus = "locked"
)

// Owner account created on first run
const (
	OwnerRoleName = "Owner"
	OwnerName     = "Ghost Owner"
	OwnerEmail    = "ghost@ghost.org"
)

// FallbackTagName replaces a tag name that is empty after cleanup.
const FallbackTagName = "tag"

// PostStatus represents the publication state of a post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusScheduled PostStatus = "scheduled"
)
