package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emires65/simpleprofit-dao-trader/internal/api/handlers"
	"github.com/emires65/simpleprofit-dao-trader/internal/api/middleware"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/di"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))

	healthHandlers := handlers.NewHealthHandlers(container.DB, container.Redis)
	planHandlers := handlers.NewPlanHandlers(container.PlansService)
	investmentHandlers := handlers.NewInvestmentHandlers(
		container.InvestingService,
		container.AccrualService,
		container.Config.Accrual.WindowDays,
	)
	transactionHandlers := handlers.NewTransactionHandlers(container.ReconciliationService)
	profileHandlers := handlers.NewProfileHandlers(container.ProfilesService)
	notificationHandlers := handlers.NewNotificationHandlers(container.NotificationsService)
	adminHandlers := handlers.NewAdminHandlers(
		container.AdminAuthService,
		container.ReconciliationService,
		container.ProfilesService,
		container.PlansService,
		container.NotificationsService,
		container.AdminLogRepo,
	)

	router.GET("/health", healthHandlers.Health)
	router.GET("/ready", healthHandlers.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Plan catalog is public: prospective users browse before signing up
	v1.GET("/plans", planHandlers.ListPlans)
	v1.GET("/plans/:id", planHandlers.GetPlan)

	v1.POST("/admin/login", adminHandlers.Login)

	authed := v1.Group("")
	authed.Use(middleware.Auth(container.Config.JWT.Secret))
	{
		authed.GET("/profile", profileHandlers.GetProfile)

		authed.POST("/investments", investmentHandlers.Subscribe)
		authed.GET("/investments", investmentHandlers.ListInvestments)
		authed.GET("/investments/stats", investmentHandlers.GetStats)

		authed.POST("/transactions", transactionHandlers.SubmitRequest)
		authed.GET("/transactions", transactionHandlers.ListTransactions)

		authed.GET("/notifications", notificationHandlers.ListNotifications)
		authed.POST("/notifications/:id/read", notificationHandlers.MarkNotificationRead)

		authed.GET("/settings/deposit-wallets", notificationHandlers.GetDepositWallets)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminRequired(container.Config.JWT.Secret))
	{
		admin.GET("/transactions", adminHandlers.ListAllTransactions)
		admin.POST("/transactions/:id/approve", adminHandlers.ApproveTransaction)
		admin.POST("/transactions/:id/reject", adminHandlers.RejectTransaction)

		admin.GET("/users", adminHandlers.ListUsers)
		admin.PUT("/users/:id/financials", adminHandlers.AdjustUserFinancials)
		admin.POST("/users/:id/rebuild-balance", adminHandlers.RebuildUserBalance)

		admin.POST("/plans", adminHandlers.CreatePlan)
		admin.PUT("/plans/:id", adminHandlers.UpdatePlan)
		admin.DELETE("/plans/:id", adminHandlers.DeletePlan)

		admin.POST("/notifications/broadcast", adminHandlers.Broadcast)
		admin.PUT("/settings/deposit-wallets", adminHandlers.UpdateDepositWallets)

		admin.GET("/logs", adminHandlers.ListAdminLogs)
	}

	return router
}
