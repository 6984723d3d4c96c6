// File: internal/auth/handler.go
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/platform/crypto"
	"travel_agent_backend/internal/user"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	service Service
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/google", h.googleSignIn)
		authGroup.GET("/google/login", h.googleLogin)
		authGroup.GET("/google/callback", h.googleCallback)
		authGroup.POST("/password-reset", h.passwordReset)

		authGroup.GET("/me", authMW, h.me)
		authGroup.POST("/logout", authMW, h.logout)
	}
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Login: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", ToResultResponse(result))
}

func (h *Handler) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Signup: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	result, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account created successfully.", ToResultResponse(result))
}

func (h *Handler) googleSignIn(c *gin.Context) {
	var req GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	result, err := h.service.SignInWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Google sign-in successful.", ToResultResponse(result))
}

func (h *Handler) googleLogin(c *gin.Context) {
	state, err := setOAuthStateCookie(c, h.cfg)
	if err != nil {
		h.logger.Error("Failed to generate OAuth state", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not initiate Google login."))
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.service.GoogleLoginURL(state))
}

func (h *Handler) googleCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.logger.Info("Google returned an error on callback", zap.String("error", errParam))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Google sign-in was cancelled or denied."))
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing code or state."))
		return
	}

	storedState, err := consumeOAuthStateCookie(c, h.cfg)
	if err != nil {
		h.logger.Warn("OAuth state cookie missing", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid session or state mismatch."))
		return
	}
	if !crypto.TokensEqual(state, storedState) {
		h.logger.Warn("OAuth state mismatch")
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("OAuth state mismatch."))
		return
	}

	result, err := h.service.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Google sign-in successful.", ToResultResponse(result))
}

func (h *Handler) passwordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	if err := h.service.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "If an account exists for this email, a password reset link has been sent.", nil)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.service.CurrentUser(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Current user retrieved successfully.", user.ToUserResponse(u))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), common.GetFirebaseUIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Logged out successfully.", nil)
}
