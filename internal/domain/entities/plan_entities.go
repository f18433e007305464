package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan represents an investment product with a fixed daily return and duration
type Plan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	MinDeposit   decimal.Decimal `json:"min_deposit" db:"min_deposit"`
	MaxDeposit   decimal.Decimal `json:"max_deposit" db:"max_deposit"`
	DailyReturn  decimal.Decimal `json:"daily_return" db:"daily_return"` // percent per day
	DurationDays int             `json:"duration_days" db:"duration_days"`
	BonusPct     decimal.Decimal `json:"bonus_percentage" db:"bonus_percentage"`
	Description  string          `json:"description" db:"description"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate validates the plan invariants
func (p *Plan) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("plan ID is required")
	}

	if p.Name == "" {
		return fmt.Errorf("plan name is required")
	}

	if p.MinDeposit.IsNegative() {
		return fmt.Errorf("min deposit cannot be negative")
	}

	if p.MinDeposit.GreaterThan(p.MaxDeposit) {
		return fmt.Errorf("min deposit %s exceeds max deposit %s",
			p.MinDeposit.String(), p.MaxDeposit.String())
	}

	if p.DailyReturn.IsNegative() {
		return fmt.Errorf("daily return cannot be negative")
	}

	if p.DurationDays <= 0 {
		return fmt.Errorf("duration must be at least one day")
	}

	if p.BonusPct.IsNegative() {
		return fmt.Errorf("bonus percentage cannot be negative")
	}

	return nil
}

// AcceptsAmount reports whether the amount is within the plan's deposit range
func (p *Plan) AcceptsAmount(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinDeposit) && amount.LessThanOrEqual(p.MaxDeposit)
}

// CreatePlanRequest represents an admin request to create a plan
type CreatePlanRequest struct {
	Name         string          `json:"name" binding:"required"`
	MinDeposit   decimal.Decimal `json:"min_deposit" binding:"required"`
	MaxDeposit   decimal.Decimal `json:"max_deposit" binding:"required"`
	DailyReturn  decimal.Decimal `json:"daily_return"`
	DurationDays int             `json:"duration_days" binding:"required,min=1"`
	BonusPct     decimal.Decimal `json:"bonus_percentage"`
	Description  string          `json:"description"`
}

// UpdatePlanRequest represents an admin request to update a plan
type UpdatePlanRequest struct {
	Name         *string          `json:"name,omitempty"`
	MinDeposit   *decimal.Decimal `json:"min_deposit,omitempty"`
	MaxDeposit   *decimal.Decimal `json:"max_deposit,omitempty"`
	DailyReturn  *decimal.Decimal `json:"daily_return,omitempty"`
	DurationDays *int             `json:"duration_days,omitempty"`
	BonusPct     *decimal.Decimal `json:"bonus_percentage,omitempty"`
	Description  *string          `json:"description,omitempty"`
}

// ApplyTo overlays the request's non-nil fields onto the plan
func (r *UpdatePlanRequest) ApplyTo(plan *Plan) {
	if r.Name != nil {
		plan.Name = *r.Name
	}
	if r.MinDeposit != nil {
		plan.MinDeposit = *r.MinDeposit
	}
	if r.MaxDeposit != nil {
		plan.MaxDeposit = *r.MaxDeposit
	}
	if r.DailyReturn != nil {
		plan.DailyReturn = *r.DailyReturn
	}
	if r.DurationDays != nil {
		plan.DurationDays = *r.DurationDays
	}
	if r.BonusPct != nil {
		plan.BonusPct = *r.BonusPct
	}
	if r.Description != nil {
		plan.Description = *r.Description
	}
}
