package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/internal/middleware"
	"github.com/travelit/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	window := time.Duration(svc.cfg.RateLimit.WindowMinutes) * time.Minute
	authLimiter := middleware.NewWindowLimiter(svc.cfg.RateLimit.Auth, window,
		"Too many authentication attempts, please try again later.")
	generalLimiter := middleware.NewWindowLimiter(svc.cfg.RateLimit.General, window,
		"Too many requests, please try again later.")

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", svc.healthHandler.Metrics)
	r.Static(svc.cfg.Storage.PublicPath, svc.cfg.Storage.UploadDir)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), svc.authHandler.Register)
			auth.POST("/login", authLimiter.Middleware(), svc.authHandler.Login)
			auth.GET("/verify", generalLimiter.Middleware(), svc.authHandler.Verify)
		}

		// Protected routes
		protected := api.Group("", generalLimiter.Middleware(), middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.Me)

			// Friends
			protected.GET("/friends/pending/me", svc.friendHandler.Pending)
			protected.GET("/friends/:userId", svc.friendHandler.List)
			protected.POST("/friends/request", svc.friendHandler.Request)
			protected.PUT("/friends/accept", svc.friendHandler.Accept)
			protected.POST("/friends/remove", svc.friendHandler.Remove)

			// Maps
			protected.GET("/maps/user/:userId", svc.mapHandler.ListForUser)
			protected.GET("/maps/invitations/me", svc.mapHandler.Invitations)
			protected.GET("/maps/:mapId/members", svc.mapHandler.Members)
			protected.GET("/maps/:mapId/user-markers/:userId", svc.mapHandler.UserMarkers)
			protected.POST("/maps/create", svc.mapHandler.Create)
			protected.POST("/maps/invitations/accept", svc.mapHandler.AcceptInvitation)
			protected.POST("/maps/invitations/decline", svc.mapHandler.DeclineInvitation)
			protected.PUT("/maps/:mapId/rename", svc.mapHandler.Rename)
			protected.PUT("/maps/:mapId/user-markers", svc.mapHandler.UpdateUserMarkers)
			protected.DELETE("/maps/:mapId", svc.mapHandler.Delete)

			// Markers
			protected.GET("/markers/user/:userId/all", svc.markerHandler.ListAll)
			protected.GET("/markers/user/:userId/personal", svc.markerHandler.ListPersonal)
			protected.GET("/markers/map/:mapId", svc.markerHandler.ListForMap)
			protected.GET("/markers/:markerId/maps", svc.markerHandler.MapIDs)
			protected.POST("/markers", svc.markerHandler.Create)
			protected.PUT("/markers/:markerId", svc.markerHandler.Update)
			protected.PUT("/markers/:markerId/map-links", svc.markerHandler.UpdateMapLinks)
			protected.DELETE("/markers/:markerId", svc.markerHandler.Delete)

			// Users
			protected.GET("/users/:userId", svc.userHandler.Get)
			account := protected.Group("/users/me", middleware.AuditLog(svc.systemLogs))
			{
				account.PUT("/password", svc.userHandler.ChangePassword)
				account.DELETE("", svc.userHandler.DeleteAccount)
				account.POST("/avatar", svc.userHandler.UploadAvatar)
			}
		}
	}
}
