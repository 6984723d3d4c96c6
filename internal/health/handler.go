// File: internal/health/handler.go
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/middleware"
	"travel_agent_backend/internal/platform/elasticsearch"
	"travel_agent_backend/internal/rbac"
)

const checkTimeout = 3 * time.Second

// Component states.
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDisabled = "disabled"
)

// Check tests one dependency. Detail is reported on success, e.g. a server version.
type Check struct {
	Name string
	// Critical checks make the service unready when they fail.
	Critical bool
	Run      func(ctx context.Context) (detail string, err error)
}

// errDisabled marks an optional component that is switched off.
var errDisabled = errors.New("disabled")

// ComponentStatus is the result of one check.
type ComponentStatus struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Report is the readiness response body.
type Report struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

// Handler serves liveness and readiness checks.
type Handler struct {
	checks []Check
	logger *zap.Logger
}

// NewHandler creates the checks for the document store and Elasticsearch.
func NewHandler(store docstore.Store, es *elasticsearch.ESClientWrapper, logger *zap.Logger) *Handler {
	return NewHandlerWithChecks(logger,
		Check{
			Name:     "docstore",
			Critical: true,
			Run: func(ctx context.Context) (string, error) {
				return "", store.Ping(ctx)
			},
		},
		Check{
			Name: "elasticsearch",
			Run: func(ctx context.Context) (string, error) {
				if !es.Enabled() {
					return "", errDisabled
				}
				return es.ServerVersion(ctx)
			},
		},
	)
}

// NewHandlerWithChecks creates a handler running checks.
func NewHandlerWithChecks(logger *zap.Logger, checks ...Check) *Handler {
	return &Handler{checks: checks, logger: logger.Named("HealthHandler")}
}

// RegisterRoutes sets up GET /health on the engine root and the readiness checks under v1.
func (h *Handler) RegisterRoutes(root gin.IRoutes, v1 *gin.RouterGroup, authMW gin.HandlerFunc) {
	root.GET("/health", h.liveness)
	v1.GET("/health", h.readiness)
	v1.GET("/health/details", authMW, middleware.RequirePermission(rbac.SystemHealthDetails), h.details)
}

func (h *Handler) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Travel Agent API is healthy!"})
}

// Run executes every check and reports whether all critical ones passed.
func (h *Handler) Run(ctx context.Context) (*Report, bool) {
	report := &Report{Status: "ok", Components: make(map[string]ComponentStatus, len(h.checks)), CheckedAt: time.Now().UTC()}
	ready := true
	for _, check := range h.checks {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		start := time.Now()
		detail, err := check.Run(cctx)
		cancel()

		st := ComponentStatus{Status: StatusUp, Detail: detail, LatencyMS: time.Since(start).Milliseconds()}
		switch {
		case errors.Is(err, errDisabled):
			st.Status = StatusDisabled
		case err != nil:
			st.Status = StatusDown
			st.Error = err.Error()
			h.logger.Warn("Health check failed", zap.String("component", check.Name), zap.Error(err))
			if check.Critical {
				ready = false
				report.Status = "unavailable"
			} else if report.Status == "ok" {
				report.Status = "degraded"
			}
		}
		report.Components[check.Name] = st
	}
	return report, ready
}

func (h *Handler) respond(c *gin.Context, withErrors bool) {
	report, ready := h.Run(c.Request.Context())
	if !withErrors {
		for name, st := range report.Components {
			st.Error = ""
			report.Components[name] = st
		}
	}
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

func (h *Handler) readiness(c *gin.Context) { h.respond(c, false) }

func (h *Handler) details(c *gin.Context) { h.respond(c, true) }
