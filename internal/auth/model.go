// File: internal/auth/model.go
package auth

import "travel_agent_backend/internal/user"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
}

// GoogleSignInRequest is the body of POST /auth/google.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// PasswordResetRequest is the body of POST /auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TokenResponse carries the Firebase tokens issued to the client.
type TokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Result is the outcome of a successful sign-in.
type Result struct {
	User      *user.User
	Tokens    TokenResponse
	IsNewUser bool
}

// ResultResponse is the JSON form of Result.
type ResultResponse struct {
	User      user.UserResponse `json:"user"`
	Token     TokenResponse     `json:"token"`
	IsNewUser bool              `json:"is_new_user"`
}

// ToResultResponse converts a Result for the API.
func ToResultResponse(r *Result) ResultResponse {
	return ResultResponse{
		User:      user.ToUserResponse(r.User),
		Token:     r.Tokens,
		IsNewUser: r.IsNewUser,
	}
}
