// File: internal/backup/handler.go
package backup

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/rbac"
)

// RestoreRequest optionally limits a restore to some collections.
type RestoreRequest struct {
	Collections []string `json:"collections" binding:"omitempty,dive,required"`
}

// Handler exposes backups to administrators.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new backup handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("BackupHandler")}
}

// RegisterRoutes sets up the admin backup routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/admin/backups")
	group.Use(authMW)
	{
		group.GET("", middleware.RequirePermission(rbac.SystemBackup), h.list)
		group.POST("", middleware.RequirePermission(rbac.SystemBackup), h.create)
		group.POST("/:name/restore", middleware.RequirePermission(rbac.SystemRestore), h.restore)
	}
}

func (h *Handler) list(c *gin.Context) {
	backups, err := h.service.List(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Backups retrieved successfully.", backups)
}

func (h *Handler) create(c *gin.Context) {
	info, err := h.service.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("Backup failed", zap.String("actorID", common.GetUserIDFromContext(c)), zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	h.logger.Info("Backup requested", zap.String("actorID", common.GetUserIDFromContext(c)), zap.String("name", info.Name))
	common.RespondCreated(c, "Backup created successfully.", info)
}

func (h *Handler) restore(c *gin.Context) {
	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	result, err := h.service.Restore(c.Request.Context(), c.Param("name"), req.Collections)
	if err != nil {
		h.logger.Error("Restore failed", zap.String("actorID", common.GetUserIDFromContext(c)), zap.String("name", c.Param("name")), zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	h.logger.Warn("Backup restored", zap.String("actorID", common.GetUserIDFromContext(c)), zap.String("name", result.Name))
	common.RespondOK(c, "Backup restored successfully.", result)
}
