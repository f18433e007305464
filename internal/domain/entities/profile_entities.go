package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile is the per-user cached aggregate. It is a materialized view, not a
// source of truth: balance is the net effect of completed transactions, profit
// is the cached output of the accrual engine. Only the engine writes it.
type Profile struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	FullName   string          `json:"full_name" db:"full_name"`
	Balance    decimal.Decimal `json:"balance" db:"balance"`
	Profit     decimal.Decimal `json:"profit" db:"profit"`
	Bonus      decimal.Decimal `json:"bonus" db:"bonus"`
	RefBonus   decimal.Decimal `json:"ref_bonus" db:"ref_bonus"`
	ReferrerID *uuid.UUID      `json:"referrer_id,omitempty" db:"referrer_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate validates the profile
func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("profile ID is required")
	}

	if p.Balance.IsNegative() {
		return fmt.Errorf("balance cannot be negative")
	}

	return nil
}

// CanDebit reports whether the balance covers the requested amount
func (p *Profile) CanDebit(amount decimal.Decimal) bool {
	return p.Balance.GreaterThanOrEqual(amount)
}

// AdjustFinancialsRequest is an admin override of cached profile fields
type AdjustFinancialsRequest struct {
	Balance  *decimal.Decimal `json:"balance,omitempty"`
	Profit   *decimal.Decimal `json:"profit,omitempty"`
	Bonus    *decimal.Decimal `json:"bonus,omitempty"`
	RefBonus *decimal.Decimal `json:"ref_bonus,omitempty"`
}

// IsEmpty reports whether the request carries no changes
func (r *AdjustFinancialsRequest) IsEmpty() bool {
	return r.Balance == nil && r.Profit == nil && r.Bonus == nil && r.RefBonus == nil
}

// Validate rejects negative overrides
func (r *AdjustFinancialsRequest) Validate() error {
	for name, v := range map[string]*decimal.Decimal{
		"balance":   r.Balance,
		"profit":    r.Profit,
		"bonus":     r.Bonus,
		"ref_bonus": r.RefBonus,
	} {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	return nil
}
