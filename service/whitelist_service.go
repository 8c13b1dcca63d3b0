package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"whitelister/events"
	"whitelister/models"

	log "github.com/sirupsen/logrus"
)

// whitelistService implements the WhitelistService interface.
//
// All mutations follow a clone-save-swap sequence under a single mutex: the
// change is applied to a copy, persisted, and only then swapped into memory.
// A failed persist therefore leaves both memory and the durable copy at the
// last good state, and check-then-act sequences (limit check, then append)
// are atomic as a unit. Collaborator calls (role grant, prompt post) run
// after the lock is released.
type whitelistService struct {
	store   SettingsStore
	roles   RoleGranter
	prompts PromptManager
	bus     *events.Bus

	mu       sync.Mutex
	settings *models.Settings
}

// NewWhitelistService loads the durable record, or creates and persists
// defaults when none exists. Corrupt storage is a startup error.
func NewWhitelistService(ctx context.Context, store SettingsStore, roles RoleGranter, prompts PromptManager, bus *events.Bus) (WhitelistService, error) {
	settings, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load whitelist settings: %w", err)
	}

	if settings == nil {
		settings = models.DefaultSettings()
		if err := store.Save(ctx, settings); err != nil {
			return nil, fmt.Errorf("failed to persist default settings: %w", err)
		}
		log.Info("Initialized whitelist settings with defaults")
	}

	return &whitelistService{
		store:    store,
		roles:    roles,
		prompts:  prompts,
		bus:      bus,
		settings: settings,
	}, nil
}

// Submit validates and records a wallet for a user.
func (s *whitelistService) Submit(ctx context.Context, userID int64, wallet string) (*models.SubmissionResult, error) {
	s.mu.Lock()

	if !s.settings.WhitelistStatus {
		s.mu.Unlock()
		return nil, ErrWhitelistClosed
	}
	if s.settings.WalletCount(userID) >= s.settings.MaxWallets {
		s.mu.Unlock()
		return nil, ErrLimitReached
	}

	// Wallet strings are stored as opaque text; no format validation by design.
	next := s.settings.Clone()
	next.SubmittedWallets[userID] = append(next.SubmittedWallets[userID], wallet)

	if err := s.store.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}
	s.settings = next

	result := &models.SubmissionResult{
		UserID:      userID,
		Wallet:      wallet,
		WalletCount: next.WalletCount(userID),
		MaxWallets:  next.MaxWallets,
		RoleID:      next.AutoRoleID,
	}
	s.mu.Unlock()

	s.bus.Emit(ctx, events.WalletSubmittedEvent{
		UserID:      userID,
		Wallet:      wallet,
		WalletCount: result.WalletCount,
		MaxWallets:  result.MaxWallets,
	})

	if result.RoleID != nil {
		if err := s.roles.GrantRole(ctx, userID, *result.RoleID); err != nil {
			// Non-fatal: the submission stands even when the grant fails.
			log.WithFields(log.Fields{
				"userID": userID,
				"roleID": *result.RoleID,
			}).Warnf("Failed to grant auto role: %v", err)
			result.RoleErr = err
		} else {
			result.RoleGranted = true
		}
	}

	return result, nil
}

// Snapshot returns a deep copy of the current settings record.
func (s *whitelistService) Snapshot() *models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// SetWhitelistChannel sets the channel hosting the submission prompt and
// makes sure a prompt is present there while submissions are open.
func (s *whitelistService) SetWhitelistChannel(ctx context.Context, channelID int64) error {
	err := s.mutate(ctx, func(next *models.Settings) error {
		next.WhitelistChannelID = &channelID
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Emit(ctx, events.SettingsChangedEvent{
		Setting: "whitelist_channel",
		Value:   strconv.FormatInt(channelID, 10),
	})
	s.ensurePromptPosted(ctx)
	return nil
}

// SetAutoRole sets the role granted on successful submission.
func (s *whitelistService) SetAutoRole(ctx context.Context, roleID int64) error {
	err := s.mutate(ctx, func(next *models.Settings) error {
		next.AutoRoleID = &roleID
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Emit(ctx, events.SettingsChangedEvent{
		Setting: "auto_role",
		Value:   strconv.FormatInt(roleID, 10),
	})
	return nil
}

// SetMaxWallets sets the per-user submission cap.
func (s *whitelistService) SetMaxWallets(ctx context.Context, n int) error {
	if n <= 0 {
		return ErrInvalidMaxWallets
	}

	err := s.mutate(ctx, func(next *models.Settings) error {
		next.MaxWallets = n
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Emit(ctx, events.SettingsChangedEvent{
		Setting: "max_wallets",
		Value:   strconv.Itoa(n),
	})
	return nil
}

// ToggleWhitelistStatus flips the open/closed flag. Turning submissions on
// re-checks that the prompt is present in the configured channel.
func (s *whitelistService) ToggleWhitelistStatus(ctx context.Context) (bool, error) {
	var status bool
	err := s.mutate(ctx, func(next *models.Settings) error {
		next.WhitelistStatus = !next.WhitelistStatus
		status = next.WhitelistStatus
		return nil
	})
	if err != nil {
		return false, err
	}

	s.bus.Emit(ctx, events.SettingsChangedEvent{
		Setting: "whitelist_status",
		Value:   strconv.FormatBool(status),
	})
	if status {
		s.ensurePromptPosted(ctx)
	}
	return status, nil
}

// ToggleDeleteOnLeave flips the purge-on-leave flag.
func (s *whitelistService) ToggleDeleteOnLeave(ctx context.Context) (bool, error) {
	var enabled bool
	err := s.mutate(ctx, func(next *models.Settings) error {
		next.DeleteOnLeave = !next.DeleteOnLeave
		enabled = next.DeleteOnLeave
		return nil
	})
	if err != nil {
		return false, err
	}

	s.bus.Emit(ctx, events.SettingsChangedEvent{
		Setting: "delete_on_leave",
		Value:   strconv.FormatBool(enabled),
	})
	return enabled, nil
}

// ResetAll restores documented defaults in place. Default status is open, but
// the channel is unset after a reset, so the prompt check is a no-op until a
// channel is configured again.
func (s *whitelistService) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	next := models.DefaultSettings()
	if err := s.store.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	s.settings = next
	s.mu.Unlock()

	s.bus.Emit(ctx, events.SettingsChangedEvent{Setting: "reset", Value: "defaults"})
	s.ensurePromptPosted(ctx)
	return nil
}

// OnMemberLeave purges a departing user's wallets when delete-on-leave is
// enabled. A user with nothing on file is a no-op, not a failure.
func (s *whitelistService) OnMemberLeave(ctx context.Context, userID int64) error {
	s.mu.Lock()

	wallets, ok := s.settings.SubmittedWallets[userID]
	if !s.settings.DeleteOnLeave || !ok {
		s.mu.Unlock()
		return nil
	}

	purged := len(wallets)
	next := s.settings.Clone()
	delete(next.SubmittedWallets, userID)

	if err := s.store.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist member cleanup: %w", err)
	}
	s.settings = next
	s.mu.Unlock()

	s.bus.Emit(ctx, events.MemberPurgedEvent{
		UserID:        userID,
		WalletsPurged: purged,
	})
	return nil
}

// mutate applies fn to a clone of the settings, persists it, and swaps it in.
func (s *whitelistService) mutate(ctx context.Context, fn func(next *models.Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Clone()
	if err := fn(next); err != nil {
		return err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	s.settings = next
	return nil
}

// EnsurePrompt re-checks that the submission prompt is present. Called on
// startup so a restart never re-posts a duplicate prompt.
func (s *whitelistService) EnsurePrompt(ctx context.Context) {
	s.ensurePromptPosted(ctx)
}

// ensurePromptPosted posts the submission prompt when a channel is configured,
// submissions are open, and no prompt is already visible. Failures are logged
// and not propagated; the next configuration change retries naturally.
func (s *whitelistService) ensurePromptPosted(ctx context.Context) {
	s.mu.Lock()
	channelID := s.settings.WhitelistChannelID
	open := s.settings.WhitelistStatus
	s.mu.Unlock()

	if channelID == nil || !open {
		return
	}

	exists, err := s.prompts.HasExistingPrompt(ctx, *channelID)
	if err != nil {
		log.Warnf("Failed to check for existing prompt in channel %d: %v", *channelID, err)
		return
	}
	if exists {
		return
	}

	if err := s.prompts.PostPrompt(ctx, *channelID); err != nil {
		log.Errorf("Failed to post submission prompt in channel %d: %v", *channelID, err)
	}
}
