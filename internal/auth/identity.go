// File: internal/auth/identity.go
package auth

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"travel_agent_backend/internal/config"
)

// GoogleProviderID is the Firebase provider id for Google sign-in.
const GoogleProviderID = "google.com"

// Session is the outcome of a successful sign-in against Firebase Authentication.
type Session struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
	IsNewUser     bool
	IDToken       string
	RefreshToken  string
	ExpiresIn     int64
}

// IdentityProvider performs end-user sign-in flows that the Admin SDK does not cover.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Session, error)
	SignInWithIDP(ctx context.Context, providerID, idToken string) (*Session, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// IdentityToolkitClient implements IdentityProvider over the Identity Toolkit REST API.
type IdentityToolkitClient struct {
	relyingParty *identitytoolkit.RelyingpartyService
	requestURI   string
	logger       *zap.Logger
}

var _ IdentityProvider = (*IdentityToolkitClient)(nil)

// NewIdentityToolkitClient creates a client authenticated with the project's web API key.
// Extra options are appended, which lets tests point the client at a local server.
func NewIdentityToolkitClient(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...option.ClientOption) (*IdentityToolkitClient, error) {
	if cfg.FirebaseWebAPIKey == "" {
		logger.Warn("FIREBASE_WEB_API_KEY is not set; password and Google sign-in will fail")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.FirebaseWebAPIKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating identity toolkit service: %w", err)
	}
	requestURI := cfg.GoogleRedirectURI
	if requestURI == "" {
		requestURI = "http://localhost"
	}
	return &IdentityToolkitClient{
		relyingParty: identitytoolkit.NewRelyingpartyService(svc),
		requestURI:   requestURI,
		logger:       logger.Named("IdentityToolkit"),
	}, nil
}

func (c *IdentityToolkitClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.relyingParty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return &Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		PhotoURL:     resp.PhotoUrl,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (c *IdentityToolkitClient) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	resp, err := c.relyingParty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return &Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IsNewUser:    true,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

// SignInWithIDP exchanges an identity provider's ID token for a Firebase session.
func (c *IdentityToolkitClient) SignInWithIDP(ctx context.Context, providerID, idToken string) (*Session, error) {
	postBody := url.Values{}
	postBody.Set("id_token", idToken)
	postBody.Set("providerId", providerID)

	resp, err := c.relyingParty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          postBody.Encode(),
		RequestUri:        c.requestURI,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, &IdentityError{Code: resp.ErrorMessage}
	}
	return &Session{
		UID:           resp.LocalId,
		Email:         resp.Email,
		DisplayName:   resp.DisplayName,
		PhotoURL:      resp.PhotoUrl,
		EmailVerified: resp.EmailVerified,
		IsNewUser:     resp.IsNewUser,
		IDToken:       resp.IdToken,
		RefreshToken:  resp.RefreshToken,
		ExpiresIn:     resp.ExpiresIn,
	}, nil
}

func (c *IdentityToolkitClient) SendPasswordReset(ctx context.Context, email string) error {
	_, err := c.relyingParty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	return err
}

// IdentityError carries a Firebase error code reported in a response body rather than an HTTP status.
type IdentityError struct {
	Code string
}

func (e *IdentityError) Error() string {
	return "firebase auth error: " + e.Code
}
