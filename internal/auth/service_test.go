package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/user"
)

type mockIdentity struct{ mock.Mock }

func (m *mockIdentity) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*Session)
	return s, args.Error(1)
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	args := m.Called(ctx, email, password, displayName)
	s, _ := args.Get(0).(*Session)
	return s, args.Error(1)
}

func (m *mockIdentity) SignInWithIDP(ctx context.Context, providerID, idToken string) (*Session, error) {
	args := m.Called(ctx, providerID, idToken)
	s, _ := args.Get(0).(*Session)
	return s, args.Error(1)
}

func (m *mockIdentity) SendPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockOAuth struct{ mock.Mock }

func (m *mockOAuth) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockOAuth) ExchangeIDToken(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

// nopAdmin accepts every account change and records revocations.
type nopAdmin struct {
	revoked []string
	err     error
}

func (a *nopAdmin) SetRoleClaim(context.Context, string, string) error { return nil }
func (a *nopAdmin) SetDisabled(context.Context, string, bool) error { return nil }
func (a *nopAdmin) DeleteAccount(context.Context, string) error { return nil }
func (a *nopAdmin) RevokeRefreshTokens(_ context.Context, uid string) error {
	if a.err != nil {
		return a.err
	}
	a.revoked = append(a.revoked, uid)
	return nil
}

type authFixture struct {
	svc      *ServiceImplementation
	identity *mockIdentity
	oauth    *mockOAuth
	users    *user.ServiceImplementation
	admin    *nopAdmin
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store, err := docstore.NewMemoryStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	admin := &nopAdmin{}
	users := user.NewService(user.NewDocRepository(store), admin, zap.NewNop())
	identity := &mockIdentity{}
	oauth := &mockOAuth{}
	return &authFixture{
		svc:      NewService(identity, oauth, users, admin, zap.NewNop()),
		identity: identity,
		oauth:    oauth,
		users:    users,
		admin:    admin,
	}
}

func passwordSession(uid, email string) *Session {
	return &Session{UID: uid, Email: email, IDToken: "id-" + uid, RefreshToken: "rt-" + uid, ExpiresIn: 3600}
}

func TestLogin_ProvisionsAndReturnsTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.identity.On("SignInWithPassword", mock.Anything, "ada@example.com", "secret1").
		Return(passwordSession("uid-1", "ada@example.com"), nil)

	result, err := f.svc.Login(ctx, LoginRequest{Email: " Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", result.User.ID)
	assert.Equal(t, "user", result.User.Role)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, "id-uid-1", result.Tokens.IDToken)
	assert.Equal(t, "Bearer", result.Tokens.TokenType)

	stored, err := f.users.GetUserByID(ctx, "uid-1")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	result, err = f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, result.IsNewUser)
}

func TestLogin_InvalidCredentialsMapped(t *testing.T) {
	f := newAuthFixture(t)
	f.identity.On("SignInWithPassword", mock.Anything, "ada@example.com", "bad").
		Return(nil, &googleapi.Error{Code: 400, Message: "INVALID_LOGIN_CREDENTIALS"})

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "bad"})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password.", apiErr.Message)
}

func TestLogin_DisabledProfileRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.identity.On("SignInWithPassword", mock.Anything, "ada@example.com", "secret1").
		Return(passwordSession("uid-1", "ada@example.com"), nil)
	_, err := f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.users.SetStatus(ctx, "admin-1", "uid-1", true)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "USER_DISABLED", apiErr.Code)
}

func TestSignup(t *testing.T) {
	f := newAuthFixture(t)
	f.identity.On("SignUp", mock.Anything, "new@example.com", "secret1", "New User").
		Return(&Session{UID: "uid-2", Email: "new@example.com", IsNewUser: true, IDToken: "tok"}, nil)
	f.identity.On("SignUp", mock.Anything, "taken@example.com", "secret1", "").
		Return(nil, &googleapi.Error{Code: 400, Message: "EMAIL_EXISTS"})

	result, err := f.svc.Signup(context.Background(), SignupRequest{Email: "new@example.com", Password: "secret1", DisplayName: " New User "})
	require.NoError(t, err)
	assert.Equal(t, "New User", result.User.DisplayName)
	assert.Equal(t, user.ProviderPassword, result.User.AuthProvider)

	_, err = f.svc.Signup(context.Background(), SignupRequest{Email: "taken@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.NewAPIError(http.StatusConflict, "EMAIL_EXISTS", ""))
}

func TestSignInWithGoogle(t *testing.T) {
	f := newAuthFixture(t)
	f.identity.On("SignInWithIDP", mock.Anything, GoogleProviderID, "g-token").
		Return(&Session{UID: "g-1", Email: "g@example.com", EmailVerified: true, PhotoURL: "https://img"}, nil)

	result, err := f.svc.SignInWithGoogle(context.Background(), "g-token")
	require.NoError(t, err)
	assert.Equal(t, user.ProviderGoogle, result.User.AuthProvider)
	assert.True(t, result.User.EmailVerified)
}

func TestHandleGoogleCallback(t *testing.T) {
	f := newAuthFixture(t)
	f.oauth.On("ExchangeIDToken", mock.Anything, "good-code").Return("g-token", nil)
	f.oauth.On("ExchangeIDToken", mock.Anything, "bad-code").Return("", errors.New("invalid_grant"))
	f.identity.On("SignInWithIDP", mock.Anything, GoogleProviderID, "g-token").
		Return(&Session{UID: "g-1", Email: "g@example.com"}, nil)

	result, err := f.svc.HandleGoogleCallback(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "g-1", result.User.ID)

	_, err = f.svc.HandleGoogleCallback(context.Background(), "bad-code")
	assert.ErrorIs(t, err, common.ErrBadGateway)
}

func TestSendPasswordReset_HidesUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.identity.On("SendPasswordReset", mock.Anything, "nobody@example.com").
		Return(&googleapi.Error{Code: 400, Message: "EMAIL_NOT_FOUND"})
	f.identity.On("SendPasswordReset", mock.Anything, "spam@example.com").
		Return(&googleapi.Error{Code: 400, Message: "TOO_MANY_ATTEMPTS_TRY_LATER"})

	assert.NoError(t, f.svc.SendPasswordReset(context.Background(), "Nobody@example.com"))

	err := f.svc.SendPasswordReset(context.Background(), "spam@example.com")
	assert.ErrorIs(t, err, common.NewAPIError(http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS_TRY_LATER", ""))
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.Logout(context.Background(), "uid-1"))
	assert.Equal(t, []string{"uid-1"}, f.admin.revoked)

	f.admin.err = errors.New("network down")
	assert.ErrorIs(t, f.svc.Logout(context.Background(), "uid-1"), common.ErrServiceUnavailable)
}
