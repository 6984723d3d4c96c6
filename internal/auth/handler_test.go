package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *authFixture) {
	t.Helper()
	f := newAuthFixture(t)
	cfg := &config.Config{OAuthStateCookieName: "oauthstate"}
	fakeAuth := func(c *gin.Context) {
		c.Set(common.UserIDKey, "uid-1")
		c.Set(common.FirebaseUIDKey, "uid-1")
		c.Next()
	}
	router := gin.New()
	NewHandler(f.svc, cfg, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"), fakeAuth)
	return router, f
}

func postJSON(router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Login(t *testing.T) {
	router, f := newAuthRouter(t)
	f.identity.On("SignInWithPassword", mock.Anything, "ada@example.com", "secret1").
		Return(passwordSession("uid-1", "ada@example.com"), nil)
	f.identity.On("SignInWithPassword", mock.Anything, "ada@example.com", "nope").
		Return(nil, &googleapi.Error{Code: 400, Message: "INVALID_PASSWORD"})

	w := postJSON(router, "/api/v1/auth/login", LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "uid-1", resp.Data.User.ID)
	assert.Equal(t, "id-uid-1", resp.Data.Token.IDToken)

	w = postJSON(router, "/api/v1/auth/login", LoginRequest{Email: "ada@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var apiErr common.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, "Invalid email or password.", apiErr.Message)

	w = postJSON(router, "/api/v1/auth/login", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_SignupValidation(t *testing.T) {
	router, _ := newAuthRouter(t)
	w := postJSON(router, "/api/v1/auth/signup", SignupRequest{Email: "a@example.com", Password: "123"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_SignupCreated(t *testing.T) {
	router, f := newAuthRouter(t)
	f.identity.On("SignUp", mock.Anything, "a@example.com", "secret1", "").
		Return(&Session{UID: "uid-9", Email: "a@example.com"}, nil)

	w := postJSON(router, "/api/v1/auth/signup", SignupRequest{Email: "a@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandler_PasswordResetAlwaysOK(t *testing.T) {
	router, f := newAuthRouter(t)
	f.identity.On("SendPasswordReset", mock.Anything, "x@example.com").
		Return(&googleapi.Error{Code: 400, Message: "EMAIL_NOT_FOUND"})

	w := postJSON(router, "/api/v1/auth/password-reset", PasswordResetRequest{Email: "x@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_GoogleLoginRedirectsWithState(t *testing.T) {
	router, f := newAuthRouter(t)
	f.oauth.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://accounts.google.com/o/oauth2/auth?x=1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?x=1", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "oauthstate", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	f.oauth.AssertCalled(t, "AuthCodeURL", cookies[0].Value)
}

func googleCallback(router http.Handler, state, cookieState string) *httptest.ResponseRecorder {
	q := url.Values{"code": {"good-code"}, "state": {state}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?"+q.Encode(), nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: "oauthstate", Value: cookieState})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_GoogleCallback(t *testing.T) {
	router, f := newAuthRouter(t)
	f.oauth.On("ExchangeIDToken", mock.Anything, "good-code").Return("g-token", nil)
	f.identity.On("SignInWithIDP", mock.Anything, GoogleProviderID, "g-token").
		Return(&Session{UID: "g-1", Email: "g@example.com"}, nil)

	assert.Equal(t, http.StatusBadRequest, googleCallback(router, "abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, googleCallback(router, "abc", "xyz").Code)
	assert.Equal(t, http.StatusOK, googleCallback(router, "abc", "abc").Code)
}

func TestHandler_MeAndLogout(t *testing.T) {
	router, f := newAuthRouter(t)
	f.identity.On("SignInWithPassword", mock.Anything, "ada@example.com", "secret1").
		Return(passwordSession("uid-1", "ada@example.com"), nil)
	require.Equal(t, http.StatusOK, postJSON(router, "/api/v1/auth/login", LoginRequest{Email: "ada@example.com", Password: "secret1"}).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"uid-1"}, f.admin.revoked)
}
