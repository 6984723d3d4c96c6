// File: internal/user/model.go
package user

import (
	"time"

	"travel_agent_backend/internal/rbac"
)

// CollectionName is the document collection holding user profiles, keyed by Firebase UID.
const CollectionName = "users"

// Auth providers as reported by Firebase.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// Default preferences for new accounts.
const (
	DefaultCurrency = "USD"
	DefaultLanguage = "en"
)

// Preferences are the traveller's defaults used when planning trips.
type Preferences struct {
	Currency    string `json:"currency"`
	Language    string `json:"language"`
	HomeAirport string `json:"home_airport"`
}

// DefaultPreferences returns the preferences given to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{Currency: DefaultCurrency, Language: DefaultLanguage}
}

func (p Preferences) toMap() map[string]interface{} {
	return map[string]interface{}{
		"currency":     p.Currency,
		"language":     p.Language,
		"home_airport": p.HomeAirport,
	}
}

// User is the stored profile of an account.
type User struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	DisplayName   string      `json:"display_name"`
	PhotoURL      string      `json:"photo_url"`
	Role          string      `json:"role"`
	AuthProvider  string      `json:"auth_provider"`
	EmailVerified bool        `json:"email_verified"`
	Disabled      bool        `json:"disabled"`
	Preferences   Preferences `json:"preferences"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	LastLoginAt   *time.Time  `json:"last_login_at,omitempty"`
}

// RoleValue returns the typed role. Stored values that are not roles yield an invalid Role.
func (u *User) RoleValue() rbac.Role {
	return rbac.Role(u.Role)
}

// toFields builds the full document for u.
func (u *User) toFields() map[string]interface{} {
	fields := map[string]interface{}{
		"email":          u.Email,
		"display_name":   u.DisplayName,
		"photo_url":      u.PhotoURL,
		"role":           u.Role,
		"auth_provider":  u.AuthProvider,
		"email_verified": u.EmailVerified,
		"disabled":       u.Disabled,
		"preferences":    u.Preferences.toMap(),
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
		"last_login_at":  nil,
	}
	if u.LastLoginAt != nil {
		fields["last_login_at"] = *u.LastLoginAt
	}
	return fields
}

// Profile is what the identity provider knows about an account.
type Profile struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	Provider      string
	EmailVerified bool
	// RoleClaim is the role custom claim, if the token carried one.
	RoleClaim string
}

// --- DTOs (Data Transfer Objects) for API requests/responses ---

// PreferencesRequest holds optional preference changes.
type PreferencesRequest struct {
	Currency    *string `json:"currency" binding:"omitempty,len=3"`
	Language    *string `json:"language" binding:"omitempty,min=2,max=10"`
	HomeAirport *string `json:"home_airport" binding:"omitempty,len=3"`
}

// UpdateProfileRequest is the body of PATCH /users/me.
type UpdateProfileRequest struct {
	DisplayName *string             `json:"display_name" binding:"omitempty,max=100"`
	PhotoURL    *string             `json:"photo_url" binding:"omitempty,url"`
	Preferences *PreferencesRequest `json:"preferences"`
}

// UpdateRoleRequest is the body of PUT /users/:id/role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin agent user guest"`
}

// UpdateStatusRequest is the body of PUT /users/:id/status.
type UpdateStatusRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// ListFilter narrows user listings.
type ListFilter struct {
	Role string `form:"role" binding:"omitempty,oneof=admin agent user guest"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID            string      `json:"id"`
	Email         string      `json:"email,omitempty"`
	DisplayName   string      `json:"display_name,omitempty"`
	PhotoURL      string      `json:"photo_url,omitempty"`
	Role          string      `json:"role"`
	Permissions   []string    `json:"permissions"`
	AuthProvider  string      `json:"auth_provider"`
	EmailVerified bool        `json:"email_verified"`
	Disabled      bool        `json:"disabled"`
	Preferences   Preferences `json:"preferences"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	LastLoginAt   *time.Time  `json:"last_login_at,omitempty"`
}

// ToUserResponse converts a User to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	perms := rbac.PermissionsForRole(u.RoleValue())
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		Role:          u.Role,
		Permissions:   names,
		AuthProvider:  u.AuthProvider,
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
		Preferences:   u.Preferences,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

// ToUserResponses converts a slice of users.
func ToUserResponses(users []*User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}
