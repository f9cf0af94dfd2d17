package main

import (
	"github.com/arborhq/arbor/internal/config"
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, h *appHandlers) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for connection request creation
	requestLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Health check
	r.GET("/health", h.health.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.auth.Register)
			auth.POST("/login", h.auth.Login)
		}

		// Viewer-facing routes: identity is optional, anonymous callers
		// get the public view.
		open := api.Group("", middleware.AuthOptional())
		{
			open.GET("/trees/:id/access", h.access.GetTreeAccess)
			open.GET("/persons/:id/visibility", h.access.GetPersonVisibility)
			open.GET("/trees/:id/privacy", h.treePrivacy.Get)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", h.auth.GetCurrentUser)

			// Tree privacy settings
			protected.PUT("/trees/:id/privacy", h.treePrivacy.Update)

			// Member privacy overrides
			protected.GET("/persons/:id/privacy", h.memberPrivacy.Get)
			protected.PUT("/persons/:id/privacy", h.memberPrivacy.Upsert)

			// Connection requests
			protected.POST("/trees/:id/connection-requests",
				requestLimiter.Middleware(), h.requests.Create)
			protected.GET("/trees/:id/connection-requests", h.requests.List)
			protected.PUT("/connection-requests/:id/review", h.requests.Review)

			// Family connections (access grants)
			protected.GET("/trees/:id/connections", h.connections.List)
			protected.POST("/trees/:id/connections", h.connections.Invite)
			protected.PUT("/connections/:id", h.connections.Update)
			protected.DELETE("/connections/:id", h.connections.Remove)

			// Block list
			protected.GET("/trees/:id/blocked-users", h.blockList.List)
			protected.DELETE("/trees/:id/blocked-users/:userID", h.blockList.Remove)

			// Audit log
			protected.GET("/trees/:id/audit-log", h.auditLog.List)
		}
	}
}
