package http

import (
	"github.com/gin-gonic/gin"

	"github.com/wellnesslens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/analysis", handler.Analyze)
		v1.GET("/capabilities", handler.Capabilities)

		profile := v1.Group("/profile")
		{
			profile.GET("/:key", handler.GetProfile)
			profile.PUT("/:key", handler.PutProfile)
		}
	}

	return router
}
