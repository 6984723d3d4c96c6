// File: internal/firebase/service.go
package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// RoleClaim is the custom claim carrying the user's role in ID tokens.
const RoleClaim = "role"

// FirebaseService wraps the Admin SDK auth operations the API needs.
type FirebaseService struct {
	authClient *auth.Client
	logger     *zap.Logger
}

// NewFirebaseService creates a FirebaseService around an Admin SDK auth client.
func NewFirebaseService(authClient *auth.Client, logger *zap.Logger) *FirebaseService {
	return &FirebaseService{
		authClient: authClient,
		logger:     logger.Named("FirebaseService"),
	}
}

// VerifyIDToken verifies a Firebase ID token and checks it has not been revoked.
func (s *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := s.authClient.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	s.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	return token, nil
}

// RevokeRefreshTokens revokes all refresh tokens for a given user.
func (s *FirebaseService) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.Info("Successfully revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}

// SetRoleClaim stores role as a custom claim. It appears in ID tokens issued after the next refresh.
func (s *FirebaseService) SetRoleClaim(ctx context.Context, uid, role string) error {
	if err := s.authClient.SetCustomUserClaims(ctx, uid, map[string]interface{}{RoleClaim: role}); err != nil {
		s.logger.Error("Failed to set role claim", zap.Error(err), zap.String("uid", uid), zap.String("role", role))
		return fmt.Errorf("failed to set custom claims: %w", err)
	}
	return nil
}

// SetDisabled enables or disables the Firebase account.
func (s *FirebaseService) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	if _, err := s.authClient.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Disabled(disabled)); err != nil {
		s.logger.Error("Failed to update account status", zap.Error(err), zap.String("uid", uid), zap.Bool("disabled", disabled))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteAccount removes the Firebase account. A missing account is not an error.
func (s *FirebaseService) DeleteAccount(ctx context.Context, uid string) error {
	if err := s.authClient.DeleteUser(ctx, uid); err != nil && !auth.IsUserNotFound(err) {
		s.logger.Error("Failed to delete account", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
