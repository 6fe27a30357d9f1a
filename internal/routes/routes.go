package routes

import (
	"callback-registry-api/internal/handlers"
	"callback-registry-api/internal/middleware"
	"callback-registry-api/internal/registry"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(reg *registry.Registry) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Callback Registry API is running",
		})
	})

	// Ephemeral callback dispatch: everything under the mount prefix,
	// any method
	ginRouter.Any(reg.MountPrefix()+"*key", handlers.DispatchCallback(reg))

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		// Login endpoint
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Registry introspection endpoints
		protectedRoutes.GET("/callbacks", handlers.ListCallbacks(reg))
		protectedRoutes.DELETE("/callbacks/:key", handlers.DeleteCallback(reg))
		// Journal endpoints
		protectedRoutes.GET("/journal", handlers.GetJournal)
		protectedRoutes.GET("/stats", handlers.GetStats)
		// Event feed (WebSocket)
		protectedRoutes.GET("/events", handlers.EventsHandler)
	}

	return ginRouter
}
