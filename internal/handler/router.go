package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries the handlers and settings mounted by NewRouter.
type RouterConfig struct {
	Health *HealthHandler
	Ready  *ReadyHandler
	Files  *FilesHandler
	AI     *AIHandler

	// APIKey guards /api/v1 when set.
	APIKey string
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware())

	// Register routes
	router.GET("/health", cfg.Health.Handle)
	router.GET("/ready", cfg.Ready.Handle)

	// API v1 routes
	v1 := router.Group("/api/v1", APIKeyMiddleware(cfg.APIKey, logger))
	{
		v1.POST("/files", cfg.Files.Upload)
		v1.GET("/files", cfg.Files.List)
		v1.GET("/files/:id", cfg.Files.Get)
		v1.POST("/files/:id/ai", cfg.AI.ProcessFile)
		v1.POST("/ai/process", cfg.AI.ProcessText)
	}

	return router
}
