// File: internal/user/adapter.go
package user

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"travel_agent_backend/internal/middleware"
)

// ProfileFromToken extracts the identity fields carried by a verified Firebase ID token.
func ProfileFromToken(token *auth.Token) Profile {
	p := Profile{
		UID:      token.UID,
		Provider: token.Firebase.SignInProvider,
	}
	if v, ok := token.Claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := token.Claims["email_verified"].(bool); ok {
		p.EmailVerified = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		p.DisplayName = v
	}
	if v, ok := token.Claims["picture"].(string); ok {
		p.PhotoURL = v
	}
	if v, ok := token.Claims["role"].(string); ok {
		p.RoleClaim = v
	}
	return p
}

// Resolver adapts the user service to middleware.UserResolver.
type Resolver struct {
	service Service
	logger  *zap.Logger
}

var _ middleware.UserResolver = (*Resolver)(nil)

// NewResolver creates a Resolver.
func NewResolver(service Service, logger *zap.Logger) *Resolver {
	return &Resolver{service: service, logger: logger.Named("UserResolver")}
}

// ResolveUser loads or provisions the profile behind a verified token.
func (r *Resolver) ResolveUser(ctx context.Context, token *auth.Token) (*middleware.AuthenticatedUser, error) {
	u, created, err := r.service.FindOrCreate(ctx, ProfileFromToken(token))
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.Debug("Provisioned profile on first request", zap.String("userID", u.ID))
	}
	return &middleware.AuthenticatedUser{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Disabled: u.Disabled,
	}, nil
}
