package service

import (
	"context"

	"whitelister/models"

	"github.com/stretchr/testify/mock"
)

// MockSettingsStore is a mock implementation of SettingsStore
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Load(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockSettingsStore) Save(ctx context.Context, settings *models.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockRoleGranter is a mock implementation of RoleGranter
type MockRoleGranter struct {
	mock.Mock
}

func (m *MockRoleGranter) GrantRole(ctx context.Context, userID, roleID int64) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

// MockPromptManager is a mock implementation of PromptManager
type MockPromptManager struct {
	mock.Mock
}

func (m *MockPromptManager) HasExistingPrompt(ctx context.Context, channelID int64) (bool, error) {
	args := m.Called(ctx, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromptManager) PostPrompt(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}
