package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of ledger transaction
type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeWithdrawal   TransactionType = "withdrawal"
	TransactionTypeInvestment   TransactionType = "investment"
	TransactionTypeSubscription TransactionType = "subscription"
	TransactionTypeBonus        TransactionType = "bonus"
	TransactionTypeReferral     TransactionType = "referral"
)

// Validate checks if the transaction type is valid
func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeInvestment,
		TransactionTypeSubscription, TransactionTypeBonus, TransactionTypeReferral:
		return nil
	default:
		return fmt.Errorf("invalid transaction type: %s", t)
	}
}

// IsRequestable reports whether users may submit this type themselves.
// Everything else is appended by the engine.
func (t TransactionType) IsRequestable() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Validate checks if the transaction status is valid
func (s TransactionStatus) Validate() error {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid transaction status: %s", s)
	}
}

// IsTerminal reports whether the status permits no further transitions
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction is an append-only ledger entry; status is the only field ever
// mutated after creation, exactly once (pending -> completed|failed).
type Transaction struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	UserID      uuid.UUID         `json:"user_id" db:"user_id"`
	Type        TransactionType   `json:"type" db:"type"`
	Amount      decimal.Decimal   `json:"amount" db:"amount"`
	Status      TransactionStatus `json:"status" db:"status"`
	Description string            `json:"description" db:"description"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// Validate validates the transaction
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("transaction ID is required")
	}

	if t.UserID == uuid.Nil {
		return fmt.Errorf("user ID is required")
	}

	if err := t.Type.Validate(); err != nil {
		return err
	}

	if err := t.Status.Validate(); err != nil {
		return err
	}

	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive")
	}

	return nil
}

// MarkCompleted marks the transaction as completed
func (t *Transaction) MarkCompleted() {
	t.Status = TransactionStatusCompleted
}

// MarkFailed marks the transaction as failed
func (t *Transaction) MarkFailed() {
	t.Status = TransactionStatusFailed
}

// SubmitRequestInput represents a user deposit or withdrawal request
type SubmitRequestInput struct {
	Type   TransactionType `json:"type" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}
