package main

import (
	"support-lookup/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, limiter gin.HandlerFunc) {
	// health checks stay outside the limiter
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	api := r.Group("/")
	if limiter != nil {
		api.Use(limiter)
	}
	h.Register(api)
}
