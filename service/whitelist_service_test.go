package service

import (
	"context"
	"errors"
	"testing"

	"whitelister/events"
	"whitelister/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

// newServiceWithSettings builds a service whose store is preloaded with the
// given record. Collaborator mocks are returned for expectations.
func newServiceWithSettings(t *testing.T, settings *models.Settings) (WhitelistService, *MockSettingsStore, *MockRoleGranter, *MockPromptManager) {
	t.Helper()

	store := new(MockSettingsStore)
	roles := new(MockRoleGranter)
	prompts := new(MockPromptManager)

	store.On("Load", mock.Anything).Return(settings, nil).Once()

	svc, err := NewWhitelistService(context.Background(), store, roles, prompts, events.NewBus())
	require.NoError(t, err)

	return svc, store, roles, prompts
}

func TestNewWhitelistService_CreatesAndPersistsDefaults(t *testing.T) {
	ctx := context.Background()

	store := new(MockSettingsStore)
	store.On("Load", ctx).Return(nil, nil).Once()
	store.On("Save", ctx, mock.MatchedBy(func(s *models.Settings) bool {
		return s.WhitelistStatus &&
			s.MaxWallets == models.DefaultMaxWallets &&
			!s.DeleteOnLeave &&
			s.WhitelistChannelID == nil &&
			s.AutoRoleID == nil &&
			len(s.SubmittedWallets) == 0
	})).Return(nil).Once()

	svc, err := NewWhitelistService(ctx, store, new(MockRoleGranter), new(MockPromptManager), events.NewBus())

	require.NoError(t, err)
	assert.True(t, svc.Snapshot().WhitelistStatus)
	store.AssertExpectations(t)
}

func TestNewWhitelistService_CorruptStorageFails(t *testing.T) {
	ctx := context.Background()

	store := new(MockSettingsStore)
	store.On("Load", ctx).Return(nil, errors.New("unexpected end of JSON input")).Once()

	svc, err := NewWhitelistService(ctx, store, new(MockRoleGranter), new(MockPromptManager), events.NewBus())

	assert.Error(t, err)
	assert.Nil(t, svc)
}

func TestSubmit_RecordsWalletAndGrantsRole(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.MaxWallets = 2
	settings.AutoRoleID = int64Ptr(777)

	svc, store, roles, _ := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)
	roles.On("GrantRole", ctx, int64(42), int64(777)).Return(nil).Once()

	result, err := svc.Submit(ctx, 42, "0xAA")

	require.NoError(t, err)
	assert.Equal(t, 1, result.WalletCount)
	assert.Equal(t, 2, result.MaxWallets)
	assert.True(t, result.RoleGranted)
	assert.Nil(t, result.RoleErr)
	assert.Equal(t, []string{"0xAA"}, svc.Snapshot().SubmittedWallets[42])
	roles.AssertExpectations(t)
}

func TestSubmit_RoleGrantFailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.AutoRoleID = int64Ptr(777)

	svc, store, roles, _ := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)
	roles.On("GrantRole", ctx, int64(42), int64(777)).Return(errors.New("role deleted")).Once()

	result, err := svc.Submit(ctx, 42, "0xAA")

	require.NoError(t, err)
	assert.False(t, result.RoleGranted)
	assert.Error(t, result.RoleErr)
	assert.Equal(t, []string{"0xAA"}, svc.Snapshot().SubmittedWallets[42])
}

func TestSubmit_WhitelistClosed(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.WhitelistStatus = false

	svc, store, _, _ := newServiceWithSettings(t, settings)

	result, err := svc.Submit(ctx, 42, "0xAA")

	assert.ErrorIs(t, err, ErrWhitelistClosed)
	assert.Nil(t, result)
	assert.Empty(t, svc.Snapshot().SubmittedWallets)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmit_LimitReached(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.MaxWallets = 2

	svc, store, _, _ := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)

	for _, wallet := range []string{"0xAA", "0xBB"} {
		result, err := svc.Submit(ctx, 42, wallet)
		require.NoError(t, err)
		assert.Equal(t, 2, result.MaxWallets)
	}

	// Third submission is rejected and leaves the record unchanged.
	result, err := svc.Submit(ctx, 42, "0xCC")

	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Nil(t, result)
	assert.Equal(t, []string{"0xAA", "0xBB"}, svc.Snapshot().SubmittedWallets[42])
}

func TestSubmit_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()

	svc, store, _, _ := newServiceWithSettings(t, models.DefaultSettings())
	store.On("Save", ctx, mock.Anything).Return(errors.New("disk full")).Once()

	result, err := svc.Submit(ctx, 42, "0xAA")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, svc.Snapshot().SubmittedWallets)
}

func TestSubmit_NoRoleConfigured(t *testing.T) {
	ctx := context.Background()

	svc, store, roles, _ := newServiceWithSettings(t, models.DefaultSettings())
	store.On("Save", ctx, mock.Anything).Return(nil)

	result, err := svc.Submit(ctx, 42, "0xAA")

	require.NoError(t, err)
	assert.False(t, result.RoleGranted)
	roles.AssertNotCalled(t, "GrantRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetMaxWallets_RejectsNonPositive(t *testing.T) {
	ctx := context.Background()

	svc, store, _, _ := newServiceWithSettings(t, models.DefaultSettings())

	assert.ErrorIs(t, svc.SetMaxWallets(ctx, 0), ErrInvalidMaxWallets)
	assert.ErrorIs(t, svc.SetMaxWallets(ctx, -3), ErrInvalidMaxWallets)
	assert.Equal(t, models.DefaultMaxWallets, svc.Snapshot().MaxWallets)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSetMaxWallets_AcceptsAnyPositive(t *testing.T) {
	ctx := context.Background()

	svc, store, _, _ := newServiceWithSettings(t, models.DefaultSettings())
	store.On("Save", ctx, mock.Anything).Return(nil)

	// UI caps at 25, the store accepts any positive value.
	require.NoError(t, svc.SetMaxWallets(ctx, 100))
	assert.Equal(t, 100, svc.Snapshot().MaxWallets)
}

func TestToggleWhitelistStatus_PostsPromptExactlyOnce(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.WhitelistStatus = false
	settings.WhitelistChannelID = int64Ptr(555)

	svc, store, _, prompts := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)
	prompts.On("HasExistingPrompt", ctx, int64(555)).Return(false, nil).Once()
	prompts.On("PostPrompt", ctx, int64(555)).Return(nil).Once()

	open, err := svc.ToggleWhitelistStatus(ctx)

	require.NoError(t, err)
	assert.True(t, open)
	prompts.AssertExpectations(t)
	prompts.AssertNumberOfCalls(t, "PostPrompt", 1)
}

func TestToggleWhitelistStatus_SkipsPromptWhenAlreadyPresent(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.WhitelistStatus = false
	settings.WhitelistChannelID = int64Ptr(555)

	svc, store, _, prompts := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)
	prompts.On("HasExistingPrompt", ctx, int64(555)).Return(true, nil).Once()

	_, err := svc.ToggleWhitelistStatus(ctx)

	require.NoError(t, err)
	prompts.AssertNotCalled(t, "PostPrompt", mock.Anything, mock.Anything)
}

func TestToggleWhitelistStatus_Off_NoPromptCheck(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.WhitelistChannelID = int64Ptr(555)

	svc, store, _, prompts := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)

	open, err := svc.ToggleWhitelistStatus(ctx)

	require.NoError(t, err)
	assert.False(t, open)
	prompts.AssertNotCalled(t, "HasExistingPrompt", mock.Anything, mock.Anything)
}

func TestSetWhitelistChannel_PostsPromptWhenOpen(t *testing.T) {
	ctx := context.Background()

	svc, store, _, prompts := newServiceWithSettings(t, models.DefaultSettings())
	store.On("Save", ctx, mock.Anything).Return(nil)
	prompts.On("HasExistingPrompt", ctx, int64(555)).Return(false, nil).Once()
	prompts.On("PostPrompt", ctx, int64(555)).Return(nil).Once()

	require.NoError(t, svc.SetWhitelistChannel(ctx, 555))

	snapshot := svc.Snapshot()
	require.NotNil(t, snapshot.WhitelistChannelID)
	assert.Equal(t, int64(555), *snapshot.WhitelistChannelID)
	prompts.AssertExpectations(t)
}

func TestResetAll_RestoresDefaults(t *testing.T) {
	ctx := context.Background()

	settings := &models.Settings{
		WhitelistChannelID: int64Ptr(555),
		AutoRoleID:         int64Ptr(777),
		SubmittedWallets:   map[int64][]string{42: {"0xAA"}},
		WhitelistStatus:    false,
		MaxWallets:         10,
		DeleteOnLeave:      true,
	}

	svc, store, _, _ := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, svc.ResetAll(ctx))

	snapshot := svc.Snapshot()
	assert.Nil(t, snapshot.WhitelistChannelID)
	assert.Nil(t, snapshot.AutoRoleID)
	assert.Empty(t, snapshot.SubmittedWallets)
	assert.True(t, snapshot.WhitelistStatus)
	assert.Equal(t, models.DefaultMaxWallets, snapshot.MaxWallets)
	assert.False(t, snapshot.DeleteOnLeave)
}

func TestResetAll_PromptIsNoOpWithoutChannel(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.WhitelistChannelID = int64Ptr(555)

	svc, store, _, prompts := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil)

	// Reset clears the channel, so the default-open status has nowhere to post.
	require.NoError(t, svc.ResetAll(ctx))

	prompts.AssertNotCalled(t, "HasExistingPrompt", mock.Anything, mock.Anything)
	prompts.AssertNotCalled(t, "PostPrompt", mock.Anything, mock.Anything)
}

func TestOnMemberLeave_DisabledKeepsEntry(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.SubmittedWallets[42] = []string{"0xAA"}

	svc, store, _, _ := newServiceWithSettings(t, settings)

	require.NoError(t, svc.OnMemberLeave(ctx, 42))

	assert.Equal(t, []string{"0xAA"}, svc.Snapshot().SubmittedWallets[42])
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOnMemberLeave_EnabledRemovesOnlyThatUser(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.DeleteOnLeave = true
	settings.SubmittedWallets[42] = []string{"0xAA", "0xBB"}
	settings.SubmittedWallets[43] = []string{"0xCC"}

	svc, store, _, _ := newServiceWithSettings(t, settings)
	store.On("Save", ctx, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.OnMemberLeave(ctx, 42))

	snapshot := svc.Snapshot()
	_, exists := snapshot.SubmittedWallets[42]
	assert.False(t, exists, "departed user's entry should be deleted entirely")
	assert.Equal(t, []string{"0xCC"}, snapshot.SubmittedWallets[43])
}

func TestOnMemberLeave_UnknownUserIsNoOp(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.DeleteOnLeave = true

	svc, store, _, _ := newServiceWithSettings(t, settings)

	require.NoError(t, svc.OnMemberLeave(ctx, 999))
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestEnsurePrompt_NoChannelConfigured(t *testing.T) {
	ctx := context.Background()

	svc, _, _, prompts := newServiceWithSettings(t, models.DefaultSettings())

	svc.EnsurePrompt(ctx)

	prompts.AssertNotCalled(t, "HasExistingPrompt", mock.Anything, mock.Anything)
	prompts.AssertNotCalled(t, "PostPrompt", mock.Anything, mock.Anything)
}

func TestEnsurePrompt_RestartDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.WhitelistChannelID = int64Ptr(555)

	svc, _, _, prompts := newServiceWithSettings(t, settings)
	prompts.On("HasExistingPrompt", ctx, int64(555)).Return(true, nil).Once()

	svc.EnsurePrompt(ctx)

	prompts.AssertNotCalled(t, "PostPrompt", mock.Anything, mock.Anything)
}
