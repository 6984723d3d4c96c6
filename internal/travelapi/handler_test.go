package travelapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/rbac"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(svc Service, role rbac.Role) *gin.Engine {
	router := gin.New()
	auth := func(c *gin.Context) {
		c.Set(common.UserIDKey, "u1")
		c.Set(common.UserRoleKey, role.String())
		c.Next()
	}
	NewHandler(svc, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"), auth)
	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler_Weather(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{body: openWeatherLisbon}, nil)
	router := newRouter(svc, rbac.RoleGuest)

	assert.Equal(t, http.StatusOK, get(router, "/api/v1/weather?city=Lisbon").Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/weather?lat=38.7&lon=-9.1").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/weather").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/weather?lat=abc&lon=1").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/weather?lat=120&lon=1").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/weather?city=Oslo&units=kelvin").Code)
}

func TestHandler_Flights(t *testing.T) {
	svc := newTestService(t, nil, &fakeUpstream{body: aviationStackJFKLAX})
	router := newRouter(svc, rbac.RoleUser)

	assert.Equal(t, http.StatusOK, get(router, "/api/v1/flights?dep=JFK&arr=LAX&date=2026-05-01").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/flights?dep=JFK").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/flights?dep=JFK1&arr=LAX").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/flights?dep=JFK&arr=LAX&date=May1").Code)
}

func TestHandler_Unconfigured(t *testing.T) {
	svc := newTestService(t, nil, nil)
	router := newRouter(svc, rbac.RoleUser)
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/api/v1/weather?city=Oslo").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/api/v1/flights?dep=JFK&arr=LAX").Code)
}

func TestHandler_UnknownRoleDenied(t *testing.T) {
	svc := newTestService(t, nil, nil)
	router := newRouter(svc, rbac.Role("intruder"))
	assert.Equal(t, http.StatusForbidden, get(router, "/api/v1/weather?city=Oslo").Code)
}
