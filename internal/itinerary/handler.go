// File: internal/itinerary/handler.go
package itinerary

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/rbac"
)

// Handler struct holds dependencies for itinerary handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new itinerary handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("ItineraryHandler")}
}

// RegisterRoutes sets up the routes for itinerary operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/itineraries")
	group.Use(authMW)
	{
		group.POST("", middleware.RequirePermission(rbac.ItinerariesCreate), h.createItinerary)
		group.GET("", middleware.RequirePermission(rbac.ItinerariesReadOwn, rbac.ItinerariesReadAny), h.listItineraries)
		group.GET("/search", middleware.RequirePermission(rbac.ItinerariesReadOwn, rbac.ItinerariesReadAny), h.searchItineraries)
		group.GET("/:id", middleware.RequirePermission(rbac.ItinerariesReadOwn, rbac.ItinerariesReadAny), h.getItinerary)
		group.PATCH("/:id", middleware.RequirePermission(rbac.ItinerariesUpdateOwn, rbac.ItinerariesUpdateAny), h.updateItinerary)
		group.DELETE("/:id", middleware.RequirePermission(rbac.ItinerariesDeleteOwn, rbac.ItinerariesDeleteAny), h.deleteItinerary)
	}
}

func (h *Handler) createItinerary(c *gin.Context) {
	var req CreateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create itinerary: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	it, err := h.service.CreateItinerary(c.Request.Context(), middleware.ActorFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Itinerary created successfully.", ToItineraryResponse(it))
}

func (h *Handler) getItinerary(c *gin.Context) {
	it, err := h.service.GetItinerary(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Itinerary retrieved successfully.", ToItineraryResponse(it))
}

func (h *Handler) listItineraries(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	page := common.GetPaginationParams(c)
	items, total, err := h.service.ListItineraries(c.Request.Context(), middleware.ActorFromContext(c), q, page)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Itineraries retrieved successfully.", ToItineraryResponses(items),
		common.NewPagination(total, page.Page, page.PageSize))
}

func (h *Handler) searchItineraries(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	page := common.GetPaginationParams(c)
	items, total, err := h.service.SearchItineraries(c.Request.Context(), middleware.ActorFromContext(c), q, page)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Search completed successfully.", ToItineraryResponses(items),
		common.NewPagination(total, page.Page, page.PageSize))
}

func (h *Handler) updateItinerary(c *gin.Context) {
	var req UpdateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update itinerary: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	it, err := h.service.UpdateItinerary(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Itinerary updated successfully.", ToItineraryResponse(it))
}

func (h *Handler) deleteItinerary(c *gin.Context) {
	if err := h.service.DeleteItinerary(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
