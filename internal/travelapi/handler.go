// File: internal/travelapi/handler.go
package travelapi

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/rbac"
)

// Handler serves the weather and flight lookups.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new travel API handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("TravelHandler")}
}

// RegisterRoutes sets up /weather and /flights.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/weather", authMW, middleware.RequirePermission(rbac.TravelWeather), h.weather)
	router.GET("/flights", authMW, middleware.RequirePermission(rbac.TravelFlights), h.flights)
}

// queryError reports malformed query parameters as 400.
func queryError(err error) *common.APIError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return common.ErrBadRequest.WithDetails(common.FormatValidationErrors(ve))
	}
	return common.ErrBadRequest.WithDetails(err.Error())
}

func (h *Handler) weather(c *gin.Context) {
	var q WeatherQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, queryError(err))
		return
	}
	w, err := h.service.CurrentWeather(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Weather retrieved successfully.", w)
}

func (h *Handler) flights(c *gin.Context) {
	var q FlightsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, queryError(err))
		return
	}
	flights, err := h.service.SearchFlights(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Flights retrieved successfully.", flights)
}
