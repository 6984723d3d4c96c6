// File: internal/auth/service.go
package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/user"
)

// UserProvisioner is the part of the user service that sign-in flows need.
type UserProvisioner interface {
	FindOrCreate(ctx context.Context, profile user.Profile) (*user.User, bool, error)
	RecordLogin(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

// TokenRevoker revokes a user's refresh tokens.
type TokenRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Result, error)
	Signup(ctx context.Context, req SignupRequest) (*Result, error)
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*Result, error)
	GoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (*Result, error)
	SendPasswordReset(ctx context.Context, email string) error
	Logout(ctx context.Context, uid string) error
	CurrentUser(ctx context.Context, uid string) (*user.User, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	identity IdentityProvider
	oauth    GoogleOAuth
	users    UserProvisioner
	revoker  TokenRevoker
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates the authentication service.
func NewService(identity IdentityProvider, oauth GoogleOAuth, users UserProvisioner, revoker TokenRevoker, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		identity: identity,
		oauth:    oauth,
		users:    users,
		revoker:  revoker,
		logger:   logger.Named("AuthService"),
	}
}

// Login signs in with email and password.
func (s *ServiceImplementation) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	session, err := s.identity.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		s.logger.Info("Password sign-in failed", zap.String("email", email), zap.String("code", ErrorCode(err)))
		return nil, MapFirebaseError(err)
	}
	return s.complete(ctx, session, user.ProviderPassword)
}

// Signup creates an email/password account and signs it in.
func (s *ServiceImplementation) Signup(ctx context.Context, req SignupRequest) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	session, err := s.identity.SignUp(ctx, email, req.Password, strings.TrimSpace(req.DisplayName))
	if err != nil {
		s.logger.Info("Sign-up failed", zap.String("email", email), zap.String("code", ErrorCode(err)))
		return nil, MapFirebaseError(err)
	}
	if session.DisplayName == "" {
		session.DisplayName = strings.TrimSpace(req.DisplayName)
	}
	return s.complete(ctx, session, user.ProviderPassword)
}

// SignInWithGoogle exchanges a Google ID token for a Firebase session.
func (s *ServiceImplementation) SignInWithGoogle(ctx context.Context, googleIDToken string) (*Result, error) {
	session, err := s.identity.SignInWithIDP(ctx, GoogleProviderID, googleIDToken)
	if err != nil {
		s.logger.Info("Google sign-in failed", zap.String("code", ErrorCode(err)))
		return nil, MapFirebaseError(err)
	}
	return s.complete(ctx, session, user.ProviderGoogle)
}

func (s *ServiceImplementation) GoogleLoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// HandleGoogleCallback finishes the OAuth code flow. The caller has already checked the state.
func (s *ServiceImplementation) HandleGoogleCallback(ctx context.Context, code string) (*Result, error) {
	idToken, err := s.oauth.ExchangeIDToken(ctx, code)
	if err != nil {
		s.logger.Error("Google code exchange failed", zap.Error(err))
		return nil, common.ErrBadGateway.WithDetails("Could not complete Google sign-in.")
	}
	return s.SignInWithGoogle(ctx, idToken)
}

// SendPasswordReset asks Firebase to email a reset link. Unknown emails succeed silently.
func (s *ServiceImplementation) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.identity.SendPasswordReset(ctx, email); err != nil {
		code := ErrorCode(err)
		if code == "EMAIL_NOT_FOUND" || code == "USER_NOT_FOUND" {
			s.logger.Debug("Password reset requested for unknown email")
			return nil
		}
		s.logger.Warn("Password reset failed", zap.String("code", code), zap.Error(err))
		return MapFirebaseError(err)
	}
	return nil
}

// Logout revokes the caller's refresh tokens so no new ID tokens can be minted.
func (s *ServiceImplementation) Logout(ctx context.Context, uid string) error {
	if err := s.revoker.RevokeRefreshTokens(ctx, uid); err != nil {
		return MapFirebaseError(err)
	}
	return nil
}

func (s *ServiceImplementation) CurrentUser(ctx context.Context, uid string) (*user.User, error) {
	return s.users.GetUserByID(ctx, uid)
}

// complete provisions the local profile for a Firebase session.
func (s *ServiceImplementation) complete(ctx context.Context, session *Session, provider string) (*Result, error) {
	u, created, err := s.users.FindOrCreate(ctx, user.Profile{
		UID:           session.UID,
		Email:         session.Email,
		DisplayName:   session.DisplayName,
		PhotoURL:      session.PhotoURL,
		Provider:      provider,
		EmailVerified: session.EmailVerified,
	})
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, MapFirebaseError(&IdentityError{Code: "USER_DISABLED"})
	}
	if err := s.users.RecordLogin(ctx, u.ID); err != nil {
		s.logger.Warn("Failed to record login", zap.String("userID", u.ID), zap.Error(err))
	}

	s.logger.Info("User signed in", zap.String("userID", u.ID), zap.String("provider", provider), zap.Bool("newUser", created))
	return &Result{
		User: u,
		Tokens: TokenResponse{
			IDToken:      session.IDToken,
			RefreshToken: session.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    session.ExpiresIn,
		},
		IsNewUser: created || session.IsNewUser,
	}, nil
}
