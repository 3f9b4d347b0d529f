package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-ledger/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Ledger queries (public read access)
		v1.GET("/balances/:principal", handler.GetBalance)
		v1.GET("/tokens/:token", handler.GetToken)
		v1.GET("/operators/:owner/:operator", handler.GetOperator)

		// Ledger operations (require authentication)
		authed := v1.Group("", middleware.Auth(authCfg))
		{
			authed.POST("/tokens", handler.Mint)
			authed.DELETE("/tokens/:token", handler.Burn)
			authed.POST("/tokens/:token/approvals", handler.Approve)
			authed.POST("/tokens/:token/transfers", handler.Transfer)
			authed.PUT("/operators/:operator", handler.SetOperator)
		}
	}
}
