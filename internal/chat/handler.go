// File: internal/chat/handler.go
package chat

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/rbac"
)

// Handler struct holds dependencies for chat handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new chat handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("ChatHandler")}
}

// RegisterRoutes sets up the routes for chat sessions.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/chat/sessions")
	group.Use(authMW)
	{
		group.POST("", middleware.RequirePermission(rbac.ChatCreate), h.createSession)
		group.GET("", middleware.RequirePermission(rbac.ChatReadOwn, rbac.ChatReadAny), h.listSessions)
		group.GET("/:id", middleware.RequirePermission(rbac.ChatReadOwn, rbac.ChatReadAny), h.getSession)
		group.DELETE("/:id", middleware.RequirePermission(rbac.ChatDeleteOwn), h.deleteSession)
		group.POST("/:id/messages", middleware.RequirePermission(rbac.ChatCreate), h.addMessage)
	}
}

func (h *Handler) createSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create chat session: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	session, err := h.service.CreateSession(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Chat session created successfully.", ToSessionResponse(session, true))
}

func (h *Handler) listSessions(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	page := common.GetPaginationParams(c)
	sessions, total, err := h.service.ListSessions(c.Request.Context(), middleware.ActorFromContext(c), q, page)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Chat sessions retrieved successfully.", ToSessionResponses(sessions),
		common.NewPagination(total, page.Page, page.PageSize))
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Chat session retrieved successfully.", ToSessionResponse(session, true))
}

func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) addMessage(c *gin.Context) {
	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	session, err := h.service.AddMessage(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Message added successfully.", ToSessionResponse(session, true))
}
