package service

import (
	"context"

	"whitelister/models"
)

// SettingsStore defines the interface for durable settings persistence.
type SettingsStore interface {
	// Load reads the stored record. A missing record returns (nil, nil);
	// unreadable or corrupt storage returns an error.
	Load(ctx context.Context) (*models.Settings, error)

	// Save writes the full record durably, replacing prior content.
	Save(ctx context.Context, settings *models.Settings) error
}

// RoleGranter grants Discord roles on behalf of the service.
type RoleGranter interface {
	// GrantRole assigns roleID to userID in the configured guild
	GrantRole(ctx context.Context, userID, roleID int64) error
}

// PromptManager posts the wallet submission prompt in a channel.
// Duplicate detection is the messaging layer's responsibility; the service
// only decides when posting should be attempted.
type PromptManager interface {
	// HasExistingPrompt reports whether a submission prompt is already visible
	HasExistingPrompt(ctx context.Context, channelID int64) (bool, error)

	// PostPrompt posts a fresh submission prompt in the channel
	PostPrompt(ctx context.Context, channelID int64) error
}

// UsernameResolver maps a user ID to a display name for exports.
// Implementations return "Unknown User" when the user cannot be resolved.
type UsernameResolver func(userID int64) string

// WhitelistService defines the interface for whitelist operations
type WhitelistService interface {
	// Submit validates and records a wallet for a user, then attempts the
	// auto-role grant. Rejections return ErrWhitelistClosed or ErrLimitReached
	// with no state change. A failed role grant does not roll back the
	// submission; it is reported in the result.
	Submit(ctx context.Context, userID int64, wallet string) (*models.SubmissionResult, error)

	// Snapshot returns a deep copy of the current settings record
	Snapshot() *models.Settings

	// SetWhitelistChannel sets the channel hosting the submission prompt
	SetWhitelistChannel(ctx context.Context, channelID int64) error

	// SetAutoRole sets the role granted on successful submission
	SetAutoRole(ctx context.Context, roleID int64) error

	// SetMaxWallets sets the per-user submission cap; n <= 0 is rejected
	SetMaxWallets(ctx context.Context, n int) error

	// ToggleWhitelistStatus flips the open/closed flag and returns the new value
	ToggleWhitelistStatus(ctx context.Context) (bool, error)

	// ToggleDeleteOnLeave flips the purge-on-leave flag and returns the new value
	ToggleDeleteOnLeave(ctx context.Context) (bool, error)

	// ResetAll restores documented defaults in place
	ResetAll(ctx context.Context) error

	// OnMemberLeave purges a departing user's wallets when delete-on-leave is
	// enabled. Absence of the user is not a failure.
	OnMemberLeave(ctx context.Context, userID int64) error

	// EnsurePrompt re-checks that the submission prompt is present in the
	// configured channel. Safe to call on every startup; an existing prompt
	// is never duplicated.
	EnsurePrompt(ctx context.Context)

	// ExportCSV renders the submission data as CSV: user id, resolved
	// username, comma-joined wallet list.
	ExportCSV(resolver UsernameResolver) ([]byte, error)
}
