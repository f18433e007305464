package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentStatus represents the lifecycle state of an investment
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// Validate checks if the investment status is valid
func (s InvestmentStatus) Validate() error {
	switch s {
	case InvestmentStatusActive, InvestmentStatusCompleted, InvestmentStatusCancelled:
		return nil
	default:
		return fmt.Errorf("invalid investment status: %s", s)
	}
}

// Investment represents a user's capital commitment to a plan
type Investment struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	UserID      uuid.UUID        `json:"user_id" db:"user_id"`
	PlanID      uuid.UUID        `json:"plan_id" db:"plan_id"`
	Amount      decimal.Decimal  `json:"amount" db:"amount"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	EndDate     time.Time        `json:"end_date" db:"end_date"`
	Status      InvestmentStatus `json:"status" db:"status"`
	TotalReturn decimal.Decimal  `json:"total_return" db:"total_return"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// Validate validates the investment
func (i *Investment) Validate() error {
	if i.ID == uuid.Nil {
		return fmt.Errorf("investment ID is required")
	}

	if i.UserID == uuid.Nil {
		return fmt.Errorf("user ID is required")
	}

	if i.PlanID == uuid.Nil {
		return fmt.Errorf("plan ID is required")
	}

	if !i.Amount.IsPositive() {
		return fmt.Errorf("investment amount must be positive")
	}

	if err := i.Status.Validate(); err != nil {
		return err
	}

	if i.EndDate.Before(i.StartDate) {
		return fmt.Errorf("end date precedes start date")
	}

	return nil
}

// IsActive reports whether the investment is still accruing
func (i *Investment) IsActive() bool {
	return i.Status == InvestmentStatusActive
}

// IsExpired reports whether the investment's term has elapsed at the given time
func (i *Investment) IsExpired(asOf time.Time) bool {
	return !asOf.Before(i.EndDate)
}

// SubscribeRequest represents a user committing funds to a plan
type SubscribeRequest struct {
	PlanID uuid.UUID       `json:"plan_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// InvestmentStats aggregates a user's active investment figures for the dashboard
type InvestmentStats struct {
	ActiveInvestments int                `json:"active_investments"`
	TotalInvested     decimal.Decimal    `json:"total_invested"`
	CurrentProfit     decimal.Decimal    `json:"current_profit"`
	TotalROI          decimal.Decimal    `json:"total_roi"` // percent
	DailyProfits      []DailyProfitPoint `json:"daily_profits"`
}

// DailyProfitPoint is one day of the accrued-profit series
type DailyProfitPoint struct {
	Date   time.Time       `json:"date"`
	Profit decimal.Decimal `json:"profit"`
}
