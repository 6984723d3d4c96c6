package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/rbac"
)

type mockAccountAdmin struct{ mock.Mock }

func (m *mockAccountAdmin) SetRoleClaim(ctx context.Context, uid, role string) error {
	return m.Called(ctx, uid, role).Error(0)
}

func (m *mockAccountAdmin) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return m.Called(ctx, uid, disabled).Error(0)
}

func (m *mockAccountAdmin) DeleteAccount(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockAccountAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func newTestService(t *testing.T) (*ServiceImplementation, *mockAccountAdmin) {
	t.Helper()
	store, err := docstore.NewMemoryStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	admin := &mockAccountAdmin{}
	return NewService(NewDocRepository(store), admin, zap.NewNop()), admin
}

func seedUser(t *testing.T, svc *ServiceImplementation, admin *mockAccountAdmin, uid string, role rbac.Role) *User {
	t.Helper()
	admin.On("SetRoleClaim", mock.Anything, uid, mock.Anything).Return(nil).Maybe()
	u, created, err := svc.FindOrCreate(context.Background(), Profile{UID: uid, Email: uid + "@example.com", RoleClaim: role.String()})
	require.NoError(t, err)
	require.True(t, created)
	return u
}

func TestFindOrCreate_NewUserGetsDefaults(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	admin.On("SetRoleClaim", mock.Anything, "uid-1", "user").Return(nil).Once()

	u, created, err := svc.FindOrCreate(ctx, Profile{UID: "uid-1", Email: " Traveller@Example.com ", DisplayName: "Traveller"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "traveller@example.com", u.Email)
	assert.Equal(t, "user", u.Role)
	assert.Equal(t, ProviderPassword, u.AuthProvider)
	assert.Equal(t, DefaultPreferences(), u.Preferences)
	admin.AssertExpectations(t)

	again, created, err := svc.FindOrCreate(ctx, Profile{UID: "uid-1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Traveller", again.DisplayName)
	assert.Equal(t, DefaultCurrency, again.Preferences.Currency)
}

func TestFindOrCreate_HonoursValidRoleClaim(t *testing.T) {
	svc, admin := newTestService(t)

	u, _, err := svc.FindOrCreate(context.Background(), Profile{UID: "agent-1", Provider: ProviderGoogle, RoleClaim: "agent"})
	require.NoError(t, err)
	assert.Equal(t, "agent", u.Role)
	assert.Equal(t, ProviderGoogle, u.AuthProvider)
	admin.AssertNotCalled(t, "SetRoleClaim", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindOrCreate_ClaimFailureIsNotFatal(t *testing.T) {
	svc, admin := newTestService(t)
	admin.On("SetRoleClaim", mock.Anything, "uid-2", "user").Return(errors.New("firebase down"))

	u, created, err := svc.FindOrCreate(context.Background(), Profile{UID: "uid-2", RoleClaim: "superuser"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "user", u.Role)
}

func TestUpdateProfile(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, admin, "uid-1", rbac.RoleUser)

	name := "  New Name "
	cur := "eur"
	airport := "sea"
	u, err := svc.UpdateProfile(ctx, "uid-1", UpdateProfileRequest{
		DisplayName: &name,
		Preferences: &PreferencesRequest{Currency: &cur, HomeAirport: &airport},
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", u.DisplayName)
	assert.Equal(t, "EUR", u.Preferences.Currency)
	assert.Equal(t, "SEA", u.Preferences.HomeAirport)
	assert.Equal(t, DefaultLanguage, u.Preferences.Language)

	_, err = svc.UpdateProfile(ctx, "uid-1", UpdateProfileRequest{})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.UpdateProfile(ctx, "missing", UpdateProfileRequest{DisplayName: &name})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordLogin(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, admin, "uid-1", rbac.RoleUser)

	require.NoError(t, svc.RecordLogin(ctx, "uid-1"))
	u, err := svc.GetUserByID(ctx, "uid-1")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt)
}

func TestListUsers_FilterAndPaginate(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, admin, "u1", rbac.RoleUser)
	seedUser(t, svc, admin, "u2", rbac.RoleUser)
	seedUser(t, svc, admin, "a1", rbac.RoleAgent)

	users, total, err := svc.ListUsers(ctx, ListFilter{}, common.PaginationQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)

	users, total, err = svc.ListUsers(ctx, ListFilter{Role: "agent"}, common.PaginationQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "a1", users[0].ID)
}

func TestChangeRole(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, admin, "admin-1", rbac.RoleAdmin)
	seedUser(t, svc, admin, "u1", rbac.RoleUser)

	admin.On("SetRoleClaim", mock.Anything, "u1", "agent").Return(nil).Once()
	u, err := svc.ChangeRole(ctx, "admin-1", rbac.RoleAdmin, "u1", rbac.RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, "agent", u.Role)

	_, err = svc.ChangeRole(ctx, "admin-1", rbac.RoleAdmin, "admin-1", rbac.RoleUser)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.ChangeRole(ctx, "u1", rbac.RoleAgent, "admin-1", rbac.RoleUser)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.ChangeRole(ctx, "admin-1", rbac.RoleAdmin, "u1", rbac.Role("owner"))
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.ChangeRole(ctx, "admin-1", rbac.RoleAdmin, "missing", rbac.RoleUser)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetStatus_DisableRevokesTokens(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, admin, "u1", rbac.RoleUser)

	admin.On("SetDisabled", mock.Anything, "u1", true).Return(nil).Once()
	admin.On("RevokeRefreshTokens", mock.Anything, "u1").Return(nil).Once()
	u, err := svc.SetStatus(ctx, "admin-1", "u1", true)
	require.NoError(t, err)
	assert.True(t, u.Disabled)

	admin.On("SetDisabled", mock.Anything, "u1", false).Return(nil).Once()
	u, err = svc.SetStatus(ctx, "admin-1", "u1", false)
	require.NoError(t, err)
	assert.False(t, u.Disabled)
	admin.AssertExpectations(t)

	_, err = svc.SetStatus(ctx, "u1", "u1", true)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestDeleteUser(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, admin, "u1", rbac.RoleUser)

	assert.ErrorIs(t, svc.DeleteUser(ctx, "u1", "u1"), common.ErrForbidden)

	admin.On("DeleteAccount", mock.Anything, "u1").Return(nil).Once()
	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "u1"))

	_, err := svc.GetUserByID(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteUser_FirebaseFailureKeepsProfile(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, admin, "u1", rbac.RoleUser)

	admin.On("DeleteAccount", mock.Anything, "u1").Return(errors.New("boom")).Once()
	require.Error(t, svc.DeleteUser(ctx, "admin-1", "u1"))

	_, err := svc.GetUserByID(ctx, "u1")
	assert.NoError(t, err)
}
