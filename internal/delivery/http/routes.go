package http

import (
	"github.com/cartwise/backend/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := handler.logger

	router := gin.New()
	router.MaxMultipartMemory = maxAudioUploadBytes

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger.With(zap.String("component", "access"))))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/", handler.Root)
	router.GET("/health", handler.HealthCheck)

	// Catalog and cart
	router.GET("/items", handler.ListItems)
	router.GET("/items_dropdown", handler.ListItemsDropdown)
	router.GET("/cart", handler.GetCart)

	// Assistant
	router.POST("/chat", handler.Chat)
	router.POST("/transcribe", handler.Transcribe)
	router.POST("/voice-chat", handler.VoiceChat)

	return router
}
