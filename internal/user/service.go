// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/rbac"
)

// AccountAdmin is the subset of the Firebase Admin SDK the user service drives.
type AccountAdmin interface {
	SetRoleClaim(ctx context.Context, uid, role string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
	DeleteAccount(ctx context.Context, uid string) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Service defines the interface for user business logic.
type Service interface {
	FindOrCreate(ctx context.Context, profile Profile) (*User, bool, error)
	RecordLogin(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error)
	ListUsers(ctx context.Context, filter ListFilter, page common.PaginationQuery) ([]*User, int64, error)
	ChangeRole(ctx context.Context, actorID string, actorRole rbac.Role, targetID string, role rbac.Role) (*User, error)
	SetStatus(ctx context.Context, actorID, targetID string, disabled bool) (*User, error)
	DeleteUser(ctx context.Context, actorID, targetID string) error
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	admin  AccountAdmin
	logger *zap.Logger
	now    func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, admin AccountAdmin, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		admin:  admin,
		logger: logger.Named("UserService"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FindOrCreate returns the local profile for a Firebase account, creating it on first sight.
// The boolean reports whether the profile was created.
func (s *ServiceImplementation) FindOrCreate(ctx context.Context, profile Profile) (*User, bool, error) {
	if profile.UID == "" {
		return nil, false, common.ErrBadRequest.WithDetails("Firebase UID is required.")
	}

	existing, err := s.repo.FindByID(ctx, profile.UID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, fmt.Errorf("looking up user %s: %w", profile.UID, err)
	}

	role := rbac.DefaultRole
	if claimed, perr := rbac.ParseRole(profile.RoleClaim); perr == nil {
		role = claimed
	}

	now := s.now()
	provider := profile.Provider
	if provider == "" {
		provider = ProviderPassword
	}
	u := &User{
		ID:            profile.UID,
		Email:         strings.ToLower(strings.TrimSpace(profile.Email)),
		DisplayName:   profile.DisplayName,
		PhotoURL:      profile.PhotoURL,
		Role:          role.String(),
		AuthProvider:  provider,
		EmailVerified: profile.EmailVerified,
		Preferences:   DefaultPreferences(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("Failed to create user profile", zap.String("userID", u.ID), zap.Error(err))
		return nil, false, fmt.Errorf("creating user profile: %w", err)
	}

	if profile.RoleClaim != role.String() {
		if err := s.admin.SetRoleClaim(ctx, u.ID, u.Role); err != nil {
			s.logger.Warn("Failed to set role claim for new user", zap.String("userID", u.ID), zap.Error(err))
		}
	}

	s.logger.Info("User profile created", zap.String("userID", u.ID), zap.String("role", u.Role), zap.String("provider", u.AuthProvider))
	return u, true, nil
}

// RecordLogin stamps last_login_at.
func (s *ServiceImplementation) RecordLogin(ctx context.Context, id string) error {
	now := s.now()
	return s.repo.Update(ctx, id, map[string]interface{}{
		"last_login_at": now,
		"updated_at":    now,
	})
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies the caller's own profile changes.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	fields := map[string]interface{}{}
	if req.DisplayName != nil {
		fields["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.PhotoURL != nil {
		fields["photo_url"] = *req.PhotoURL
	}
	if p := req.Preferences; p != nil {
		if p.Currency != nil {
			fields["preferences.currency"] = strings.ToUpper(*p.Currency)
		}
		if p.Language != nil {
			fields["preferences.language"] = *p.Language
		}
		if p.HomeAirport != nil {
			fields["preferences.home_airport"] = strings.ToUpper(*p.HomeAirport)
		}
	}
	if len(fields) == 0 {
		return nil, common.ErrBadRequest.WithDetails("No fields to update.")
	}
	fields["updated_at"] = s.now()

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) ListUsers(ctx context.Context, filter ListFilter, page common.PaginationQuery) ([]*User, int64, error) {
	return s.repo.List(ctx, filter, page)
}

// ChangeRole assigns a new role to another account and mirrors it into the role claim.
func (s *ServiceImplementation) ChangeRole(ctx context.Context, actorID string, actorRole rbac.Role, targetID string, role rbac.Role) (*User, error) {
	if actorID == targetID {
		return nil, common.ErrForbidden.WithDetails("You cannot change your own role.")
	}
	if !role.Valid() {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown role %q.", role))
	}
	if !rbac.CanAssignRole(actorRole, role) {
		return nil, common.ErrForbidden.WithDetails("You cannot assign this role.")
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	current := target.RoleValue()
	if !current.Valid() {
		current = rbac.RoleGuest
	}
	if !actorRole.AtLeast(current) {
		return nil, common.ErrForbidden.WithDetails("You cannot modify a user with a higher role.")
	}
	if target.Role == role.String() {
		return target, nil
	}

	if err := s.repo.Update(ctx, targetID, map[string]interface{}{
		"role":       role.String(),
		"updated_at": s.now(),
	}); err != nil {
		return nil, err
	}
	if err := s.admin.SetRoleClaim(ctx, targetID, role.String()); err != nil {
		s.logger.Warn("Failed to mirror role claim", zap.String("userID", targetID), zap.Error(err))
	}
	s.logger.Info("User role changed",
		zap.String("actorID", actorID),
		zap.String("userID", targetID),
		zap.String("from", target.Role),
		zap.String("to", role.String()),
	)
	return s.repo.FindByID(ctx, targetID)
}

// SetStatus enables or disables another account. Disabling revokes its refresh tokens.
func (s *ServiceImplementation) SetStatus(ctx context.Context, actorID, targetID string, disabled bool) (*User, error) {
	if actorID == targetID {
		return nil, common.ErrForbidden.WithDetails("You cannot change the status of your own account.")
	}
	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return nil, err
	}

	if err := s.admin.SetDisabled(ctx, targetID, disabled); err != nil {
		return nil, fmt.Errorf("updating firebase account status: %w", err)
	}
	if disabled {
		if err := s.admin.RevokeRefreshTokens(ctx, targetID); err != nil {
			s.logger.Warn("Failed to revoke refresh tokens", zap.String("userID", targetID), zap.Error(err))
		}
	}
	if err := s.repo.Update(ctx, targetID, map[string]interface{}{
		"disabled":   disabled,
		"updated_at": s.now(),
	}); err != nil {
		return nil, err
	}
	s.logger.Info("User status changed", zap.String("actorID", actorID), zap.String("userID", targetID), zap.Bool("disabled", disabled))
	return s.repo.FindByID(ctx, targetID)
}

// DeleteUser removes the Firebase account and the profile document.
func (s *ServiceImplementation) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return common.ErrForbidden.WithDetails("You cannot delete your own account.")
	}
	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.admin.DeleteAccount(ctx, targetID); err != nil {
		return fmt.Errorf("deleting firebase account: %w", err)
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("deleting user profile: %w", err)
	}
	s.logger.Info("User deleted", zap.String("actorID", actorID), zap.String("userID", targetID))
	return nil
}
