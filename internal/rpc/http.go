package rpc

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devmesh-org/taskmesh/internal/authn"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/resilience"
)

// HTTPServer wraps the mcp-go streamable HTTP transport with gin health,
// readiness, and Prometheus metrics routes, matching the teacher's
// router/health-handler/metrics-handler layout in
// apps/mcp-server/internal/api/server.go.
type HTTPServer struct {
	router  *gin.Engine
	metrics *observability.PrometheusMetrics
}

// HealthChecker reports the health of a single dependency (database, cache).
// A non-nil error marks the dependency unhealthy.
type HealthChecker func() error

// AuthOptions configures the auth and rate-limiting middleware mounted
// ahead of /mcp. A nil Validator is only valid when Testing is true.
type AuthOptions struct {
	Enabled    bool
	Testing    bool
	TestUserID string
	Validator  *authn.JWTValidator
	RateLimit  resilience.RateLimiterConfig
}

// NewHTTPServer mounts the mcp-go streamable HTTP transport at /mcp behind
// the auth and rate-limit middleware, and adds /health, /ready, /metrics
// alongside it. checks are named readiness probes (e.g. "database",
// "cache") run on every /ready request.
func NewHTTPServer(s *Server, metrics *observability.PrometheusMetrics, checks map[string]HealthChecker, auth AuthOptions) *HTTPServer {
	router := gin.New()
	router.Use(gin.Recovery())

	streamSrv := server.NewStreamableHTTPServer(s.mcp)
	mcpGroup := router.Group("/mcp")
	mcpGroup.Use(resilience.GinMiddleware(auth.RateLimit))
	mcpGroup.Use(authn.Middleware(auth.Enabled, auth.Testing, auth.TestUserID, auth.Validator))
	mcpGroup.Any("", gin.WrapH(streamSrv))
	mcpGroup.Any("/*path", gin.WrapH(streamSrv))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		components := gin.H{}
		healthy := true
		for name, check := range checks {
			if err := check(); err != nil {
				components[name] = err.Error()
				healthy = false
			} else {
				components[name] = "healthy"
			}
		}
		status := http.StatusOK
		statusText := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			statusText = "not_ready"
		}
		c.JSON(status, gin.H{"status": statusText, "components": components})
	})

	if metrics != nil {
		handler := promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})
		router.GET("/metrics", gin.WrapH(handler))
	}

	return &HTTPServer{router: router, metrics: metrics}
}

// Router exposes the gin engine, e.g. for http.Server composition in
// cmd/server.
func (h *HTTPServer) Router() *gin.Engine {
	return h.router
}
