// File: internal/migration/handler.go
package migration

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/rbac"
)

// Handler exposes the migration runner to administrators.
type Handler struct {
	runner *Runner
	logger *zap.Logger
}

// NewHandler creates a new migration handler.
func NewHandler(runner *Runner, logger *zap.Logger) *Handler {
	return &Handler{runner: runner, logger: logger.Named("MigrationHandler")}
}

// RegisterRoutes sets up the admin migration routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/admin/migrations")
	group.Use(authMW, middleware.RequirePermission(rbac.SystemMigrate))
	{
		group.GET("", h.status)
		group.POST("/up", h.up)
		group.POST("/rollback", h.rollback)
	}
}

func (h *Handler) status(c *gin.Context) {
	status, err := h.runner.Status(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Migration status retrieved successfully.", status)
}

func (h *Handler) up(c *gin.Context) {
	applied, err := h.runner.Up(c.Request.Context())
	if err != nil {
		h.logger.Error("Migration run failed", zap.String("actorID", common.GetUserIDFromContext(c)), zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails(gin.H{
			"error":   err.Error(),
			"applied": applied,
		}))
		return
	}
	if applied == nil {
		applied = []Record{}
	}
	h.logger.Info("Migrations applied", zap.String("actorID", common.GetUserIDFromContext(c)), zap.Int("count", len(applied)))
	common.RespondOK(c, "Migrations applied successfully.", applied)
}

func (h *Handler) rollback(c *gin.Context) {
	rec, err := h.runner.Rollback(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrNothingApplied):
			common.RespondWithError(c, common.ErrConflict.WithDetails("No migrations have been applied."))
		case errors.Is(err, ErrIrreversible):
			common.RespondWithError(c, common.ErrConflict.WithDetails(err.Error()))
		default:
			common.RespondWithError(c, err)
		}
		return
	}
	h.logger.Info("Migration rolled back", zap.String("actorID", common.GetUserIDFromContext(c)), zap.Int("version", rec.Version))
	common.RespondOK(c, "Migration rolled back successfully.", rec)
}
