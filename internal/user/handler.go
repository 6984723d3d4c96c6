// File: internal/user/handler.go
package user

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/rbac"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("UserHandler"),
	}
}

// RegisterRoutes sets up the routes for user operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	userGroup := router.Group("/users")
	userGroup.Use(authMW)
	{
		userGroup.GET("/me", middleware.RequirePermission(rbac.UsersReadSelf), h.getMe)
		userGroup.PATCH("/me", middleware.RequirePermission(rbac.UsersUpdateSelf), h.updateMe)
		userGroup.GET("", middleware.RequirePermission(rbac.UsersReadAny), h.listUsers)
		userGroup.GET("/:id", middleware.RequirePermission(rbac.UsersReadSelf, rbac.UsersReadAny), h.getUserByID)
		userGroup.PUT("/:id/role", middleware.RequirePermission(rbac.UsersManageRoles), h.updateRole)
		userGroup.PUT("/:id/status", middleware.RequirePermission(rbac.UsersUpdateAny), h.updateStatus)
		userGroup.DELETE("/:id", middleware.RequirePermission(rbac.UsersDeleteAny), h.deleteUser)
	}
}

func (h *Handler) getMe(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == "" {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Current user retrieved successfully.", ToUserResponse(usr))
}

func (h *Handler) updateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update profile: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	usr, err := h.service.UpdateProfile(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", ToUserResponse(usr))
}

func (h *Handler) listUsers(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	page := common.GetPaginationParams(c)
	users, total, err := h.service.ListUsers(c.Request.Context(), filter, page)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Users retrieved successfully.", ToUserResponses(users),
		common.NewPagination(total, page.Page, page.PageSize))
}

func (h *Handler) getUserByID(c *gin.Context) {
	targetID := c.Param("id")
	actorID := common.GetUserIDFromContext(c)
	if !rbac.CanAccessResource(middleware.RoleFromContext(c), actorID, targetID, rbac.UsersReadSelf, rbac.UsersReadAny) {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You can only view your own profile."))
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User retrieved successfully.", ToUserResponse(usr))
}

func (h *Handler) updateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	usr, err := h.service.ChangeRole(c.Request.Context(),
		common.GetUserIDFromContext(c), middleware.RoleFromContext(c),
		c.Param("id"), rbac.Role(req.Role))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User role updated successfully.", ToUserResponse(usr))
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	usr, err := h.service.SetStatus(c.Request.Context(), common.GetUserIDFromContext(c), c.Param("id"), *req.Disabled)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User status updated successfully.", ToUserResponse(usr))
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), common.GetUserIDFromContext(c), c.Param("id")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
