// File: internal/middleware/auth.go
package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/rbac"
)

// TokenVerifier checks Firebase ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthenticatedUser is the local account behind a verified token.
type AuthenticatedUser struct {
	ID       string
	Email    string
	Role     string
	Disabled bool
}

// UserResolver maps a verified token to the local account, creating it on first sight.
type UserResolver interface {
	ResolveUser(ctx context.Context, token *auth.Token) (*AuthenticatedUser, error)
}

// AuthMiddleware verifies the bearer Firebase ID token and loads the caller's account.
func AuthMiddleware(verifier TokenVerifier, resolver UserResolver, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		idToken := common.GetTokenFromContext(c)
		if idToken == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			logger.Error("Failed to resolve user for token", zap.String("uid", token.UID), zap.Error(err))
			common.RespondWithError(c, err)
			return
		}
		if user.Disabled {
			logger.Info("Disabled user rejected", zap.String("userID", user.ID))
			common.RespondWithError(c, common.ErrForbidden.WithDetails("This account has been disabled."))
			return
		}

		c.Set(common.UserIDKey, user.ID)
		c.Set(common.UserEmailKey, user.Email)
		c.Set(common.UserRoleKey, user.Role)
		c.Set(common.FirebaseUIDKey, token.UID)

		logger.Debug("User authenticated successfully",
			zap.String("userID", user.ID),
			zap.String("role", user.Role),
		)

		c.Next()
	}
}

// RoleFromContext returns the caller's role as set by AuthMiddleware.
func RoleFromContext(c *gin.Context) rbac.Role {
	return rbac.Role(common.GetUserRoleFromContext(c))
}

// ActorFromContext returns the authenticated caller.
func ActorFromContext(c *gin.Context) rbac.Actor {
	return rbac.Actor{ID: common.GetUserIDFromContext(c), Role: RoleFromContext(c)}
}

// RoleAuthMiddleware allows only callers holding one of the listed roles.
func RoleAuthMiddleware(allowedRoles ...rbac.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := RoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
