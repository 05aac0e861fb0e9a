package api_gateway

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/propdesk-cashbook/internal/api_gateway/handler"
	"github.com/propdesk-cashbook/internal/api_gateway/middleware"
	"github.com/propdesk-cashbook/internal/config"
)

// handlers groups every HTTP handler the router mounts
type handlers struct {
	transactions  *handler.TransactionHandler
	dailyBalances *handler.DailyBalanceHandler
	reports       *handler.ReportHandler
	health        *handler.HealthHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, auth config.AuthConfig, h handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	if auth.Enabled() {
		v1.Use(middleware.BearerAuth(auth.JWTSecret, auth.Issuer))
	}
	{
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", h.transactions.Create)
			transactions.GET("/:voucher", h.transactions.GetByVoucher)
		}

		dailyBalances := v1.Group("/daily-balances")
		{
			dailyBalances.GET("/:date", h.dailyBalances.Get)
			dailyBalances.PUT("/:date/opening", h.dailyBalances.SetOpening)
			dailyBalances.PUT("/:date/accounts", h.dailyBalances.SetAccounts)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/range", h.reports.Range)
			reports.GET("/monthly", h.reports.Monthly)
			reports.GET("/yearly", h.reports.Yearly)
			reports.GET("/export", h.reports.Export)
		}
	}

	// Health check endpoint for monitoring, outside auth
	r.GET("/health", h.health.Check)
}
