// Package repositories defines the persistence interfaces consumed by the
// domain services. Implementations live in internal/infrastructure.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
)

// TxRunner executes a function inside a storage transaction. Effects made
// through repositories within fn are committed together or not at all.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PlanRepository persists investment plans
type PlanRepository interface {
	Create(ctx context.Context, plan *entities.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error)
	List(ctx context.Context) ([]*entities.Plan, error)
	Update(ctx context.Context, plan *entities.Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActiveInvestments(ctx context.Context, planID uuid.UUID) (int, error)
}

// InvestmentRepository persists user investments
type InvestmentRepository interface {
	Create(ctx context.Context, investment *entities.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error)
	ListExpiredActive(ctx context.Context, asOf time.Time, limit int) ([]*entities.Investment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.InvestmentStatus) error
	UpdateTotalReturn(ctx context.Context, id uuid.UUID, totalReturn decimal.Decimal) error
	ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TransactionRepository persists the append-only transaction ledger
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error)
	ListByStatus(ctx context.Context, status entities.TransactionStatus, limit, offset int) ([]*entities.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Transaction, error)
	// UpdateStatusIfPending flips a pending transaction to the given terminal
	// status. Returns the number of rows changed: 0 means the transaction was
	// already terminal (or missing) and no effect was applied.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) (int64, error)
	// SumCompletedByUser returns the signed net effect of completed
	// transactions for balance rebuilds: credits minus debits.
	SumCompletedByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// ProfileRepository persists the cached per-user aggregate
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	// GetForUpdate locks the profile row for the duration of the surrounding
	// transaction; every balance mutation goes through this.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	UpdateProfit(ctx context.Context, id uuid.UUID, profit decimal.Decimal) error
	UpdateRefBonus(ctx context.Context, id uuid.UUID, refBonus decimal.Decimal) error
	UpdateFinancials(ctx context.Context, id uuid.UUID, req *entities.AdjustFinancialsRequest) error
	List(ctx context.Context, limit, offset int) ([]*entities.Profile, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// AdminLogRepository appends immutable audit entries
type AdminLogRepository interface {
	Create(ctx context.Context, log *entities.AdminLog) error
	List(ctx context.Context, limit, offset int) ([]*entities.AdminLog, error)
}

// AdminUserRepository reads back-office accounts
type AdminUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error)
	Create(ctx context.Context, admin *entities.AdminUser) error
}

// NotificationRepository persists in-app notifications
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*entities.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

// SettingsRepository persists key/value site settings
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*entities.SiteSetting, error)
	Upsert(ctx context.Context, setting *entities.SiteSetting) error
}
