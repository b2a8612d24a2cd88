package main

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matchwise/backend/internal/middleware"
	"github.com/matchwise/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(allowedOrigins()...))

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", svc.metricsHandler.Metrics)

	api := r.Group("/api")
	{
		// Matches
		api.POST("/projects/:id/matches/rebuild", svc.rebuildLimiter.Middleware(), svc.matchHandler.Rebuild)
		api.GET("/projects/:id/matches", svc.matchHandler.ListByProject)
		api.GET("/matches", svc.matchHandler.List)
		api.GET("/matches/:id", svc.matchHandler.Get)
		api.DELETE("/matches/:id", svc.matchHandler.Delete)

		// Tunables
		api.GET("/system-configs", svc.systemConfigHandler.List)
		api.GET("/system-configs/:key", svc.systemConfigHandler.Get)
		api.PUT("/system-configs/:key", svc.systemConfigHandler.Update)

		// Scheduler
		api.GET("/scheduler/jobs", svc.schedulerHandler.ListJobs)
		api.POST("/scheduler/jobs/:name/run", svc.jobLimiter.Middleware(), svc.schedulerHandler.RunJob)

		// Job audit trail
		api.GET("/system-logs", svc.systemLogHandler.List)
	}
}

// allowedOrigins reads CORS_ORIGINS as a comma separated list. Empty allows any origin.
func allowedOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
