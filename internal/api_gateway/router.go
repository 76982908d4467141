package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/interbank-transfer-saga/internal/api_gateway/handler"
	"github.com/interbank-transfer-saga/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	transferHandler *handler.TransferHandler,
	flowHandler *handler.FlowHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.CreateAccount)
			accounts.GET("", accountHandler.ListAccounts)
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.GET("/:id/transfers", transferHandler.ListTransfers)
			accounts.GET("/:id/flows", flowHandler.ListFlows)
			accounts.GET("/:id/flows/totals", flowHandler.CounterpartyTotals)
		}

		// Transfer operations
		transfers := v1.Group("/transfers")
		{
			transfers.POST("", transferHandler.CreateTransfer)
			transfers.GET("/:id", transferHandler.GetTransfer)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
