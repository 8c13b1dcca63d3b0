package service

import (
	"context"
	"sync"

	"whitelister/models"
)

// memStore is a thread-safe in-memory SettingsStore used by tests that
// exercise real persistence sequencing without mock bookkeeping.
type memStore struct {
	mu     sync.Mutex
	record *models.Settings
	saves  int
}

func (m *memStore) Load(ctx context.Context) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return nil, nil
	}
	return m.record.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, settings *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = settings.Clone()
	m.saves++
	return nil
}

// nopRoles satisfies RoleGranter for tests that configure no auto role.
type nopRoles struct{}

func (nopRoles) GrantRole(ctx context.Context, userID, roleID int64) error { return nil }

// nopPrompts satisfies PromptManager and reports an existing prompt so no
// posting is attempted.
type nopPrompts struct{}

func (nopPrompts) HasExistingPrompt(ctx context.Context, channelID int64) (bool, error) {
	return true, nil
}

func (nopPrompts) PostPrompt(ctx context.Context, channelID int64) error { return nil }
