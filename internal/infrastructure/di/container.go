// Package di wires repositories, services and infrastructure together.
package di

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/accrual"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/adminauth"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/investing"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/notifications"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/plans"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/profiles"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/reconciliation"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/cache"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/config"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/database"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/events"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/repositories"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *sqlx.DB
	Redis  cache.RedisClient

	PlanRepo         *repositories.PlanRepository
	InvestmentRepo   *repositories.InvestmentRepository
	TransactionRepo  *repositories.TransactionRepository
	ProfileRepo      *repositories.ProfileRepository
	AdminLogRepo     *repositories.AdminLogRepository
	AdminUserRepo    *repositories.AdminUserRepository
	NotificationRepo *repositories.NotificationRepository
	SettingsRepo     *repositories.SettingsRepository

	AccrualService        *accrual.Service
	InvestingService      *investing.Service
	ReconciliationService *reconciliation.Service
	PlansService          *plans.Service
	ProfilesService       *profiles.Service
	NotificationsService  *notifications.Service
	AdminAuthService      *adminauth.Service
}

// NewContainer builds the dependency graph
func NewContainer(cfg *config.Config, log *logger.Logger, db *sqlx.DB, redis cache.RedisClient) *Container {
	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  redis,
	}

	c.PlanRepo = repositories.NewPlanRepository(db)
	c.InvestmentRepo = repositories.NewInvestmentRepository(db)
	c.TransactionRepo = repositories.NewTransactionRepository(db)
	c.ProfileRepo = repositories.NewProfileRepository(db)
	c.AdminLogRepo = repositories.NewAdminLogRepository(db)
	c.AdminUserRepo = repositories.NewAdminUserRepository(db)
	c.NotificationRepo = repositories.NewNotificationRepository(db)
	c.SettingsRepo = repositories.NewSettingsRepository(db)

	txRunner := database.NewTxRunner(db)
	publisher := events.NewRedisPublisher(redis, log.Zap())

	c.AccrualService = accrual.NewService(
		c.InvestmentRepo,
		c.PlanRepo,
		c.ProfileRepo,
		txRunner,
		publisher,
		log,
	)

	c.InvestingService = investing.NewService(
		c.InvestmentRepo,
		c.PlanRepo,
		c.ProfileRepo,
		c.TransactionRepo,
		txRunner,
		publisher,
		log,
	)

	c.ReconciliationService = reconciliation.NewService(
		c.TransactionRepo,
		c.ProfileRepo,
		c.AdminLogRepo,
		txRunner,
		publisher,
		log,
		decimal.NewFromFloat(cfg.Referral.BonusPercent),
	)

	c.PlansService = plans.NewService(c.PlanRepo, c.AdminLogRepo, txRunner, log)

	c.ProfilesService = profiles.NewService(c.ProfileRepo, c.AdminLogRepo, txRunner, publisher, log)

	c.NotificationsService = notifications.NewService(
		c.NotificationRepo,
		c.ProfileRepo,
		c.SettingsRepo,
		c.AdminLogRepo,
		txRunner,
		publisher,
		log,
	)

	c.AdminAuthService = adminauth.NewService(
		c.AdminUserRepo,
		c.AdminLogRepo,
		log,
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTTL)*time.Second,
		cfg.JWT.Issuer,
	)

	return c
}
