package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metricsHandler may be nil to skip
// the Prometheus endpoint.
func SetupRoutes(router *gin.Engine, handler *Handler, metricsHandler http.Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Discovery endpoints
		discovery := v1.Group("/discovery")
		{
			discovery.POST("/search", handler.StartDiscovery) // POST /api/v1/discovery/search
		}

		// Session endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:id", handler.GetSession) // GET /api/v1/sessions/:id
		}

		// Domain registry endpoints
		domains := v1.Group("/domains")
		{
			domains.GET("", handler.ListDomains)                    // GET /api/v1/domains
			domains.GET("/retry-ready", handler.ListRetryReady)     // GET /api/v1/domains/retry-ready
			domains.GET("/:name", handler.GetDomain)                // GET /api/v1/domains/:name
			domains.POST("/:name/blacklist", handler.BlacklistDomain) // POST /api/v1/domains/:name/blacklist
			domains.POST("/:name/no-funds", handler.MarkNoFunds)    // POST /api/v1/domains/:name/no-funds
		}

		// Candidate review endpoints
		candidates := v1.Group("/candidates")
		{
			candidates.GET("", handler.ListCandidates)                   // GET /api/v1/candidates
			candidates.POST("/:id/status", handler.UpdateCandidateStatus) // POST /api/v1/candidates/:id/status
		}
	}
}
