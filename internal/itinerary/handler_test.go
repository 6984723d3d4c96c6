package itinerary

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/rbac"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeAuth(userID string, role rbac.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(common.UserIDKey, userID)
		c.Set(common.UserRoleKey, role.String())
		c.Next()
	}
}

func routerFor(svc Service, actor rbac.Actor) *gin.Engine {
	router := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"), fakeAuth(actor.ID, actor.Role))
	return router
}

func perform(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateAndGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := routerFor(svc, alice)

	w := perform(router, http.MethodPost, "/api/v1/itineraries", map[string]interface{}{
		"title":       "Kyoto in autumn",
		"destination": "Kyoto",
		"start_date":  "2026-11-01",
		"end_date":    "2026-11-07",
		"days": []map[string]interface{}{
			{"day": 1, "items": []map[string]interface{}{{"title": "Fushimi Inari", "time": "08:00", "kind": "activity"}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data ItineraryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Data.UserID)
	assert.Equal(t, 1, created.Data.DayCount)

	w = perform(router, http.MethodGet, "/api/v1/itineraries/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(routerFor(svc, bob), http.MethodGet, "/api/v1/itineraries/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/itineraries/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	router := routerFor(svc, alice)

	w := perform(router, http.MethodPost, "/api/v1/itineraries", map[string]interface{}{"destination": "Kyoto"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(router, http.MethodPost, "/api/v1/itineraries", map[string]interface{}{
		"title": "x", "destination": "y", "start_date": "11/01/2026",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(router, http.MethodPost, "/api/v1/itineraries", map[string]interface{}{
		"title": "x", "destination": "y", "status": "archived",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_GuestCannotCreate(t *testing.T) {
	svc, _, _ := newTestService(t)
	w := perform(routerFor(svc, guest), http.MethodPost, "/api/v1/itineraries", map[string]interface{}{
		"title": "x", "destination": "y",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_ListUpdateDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	it := createTrip(t, svc, alice, "Alice trip")
	createTrip(t, svc, bob, "Bob trip")
	router := routerFor(svc, alice)

	w := perform(router, http.MethodGet, "/api/v1/itineraries?page=1&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data       []ItineraryResponse `json:"data"`
		Pagination common.Pagination   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.EqualValues(t, 1, list.Pagination.TotalItems)

	w = perform(router, http.MethodGet, "/api/v1/itineraries?all=true", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(routerFor(svc, agent), http.MethodGet, "/api/v1/itineraries?all=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodPatch, "/api/v1/itineraries/"+it.ID, map[string]interface{}{"status": "booked"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Data ItineraryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, StatusBooked, updated.Data.Status)

	w = perform(router, http.MethodDelete, "/api/v1/itineraries/"+it.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_Search(t *testing.T) {
	svc, idx, _ := newTestService(t)
	createTrip(t, svc, alice, "Ramen crawl")
	router := routerFor(svc, alice)

	w := perform(router, http.MethodGet, "/api/v1/itineraries/search", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/itineraries/search?q=ramen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []ItineraryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)

	idx.down = true
	w = perform(router, http.MethodGet, "/api/v1/itineraries/search?q=ramen", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
