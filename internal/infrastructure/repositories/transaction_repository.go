package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/database"
)

// TransactionRepository handles money movement persistence
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

// Create inserts a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	query := `
		INSERT INTO transactions (id, user_id, type, amount, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	_, err := r.ext(ctx).ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.Status,
		tx.Description,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, description, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var tx entities.Transaction
	err := sqlx.GetContext(ctx, r.ext(ctx), &tx, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.NotFoundError("TRANSACTION")
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return &tx, nil
}

// ListByUser retrieves a user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, description, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var transactions []*entities.Transaction
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &transactions, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, nil
}

// ListByStatus retrieves transactions in a given status, oldest first
func (r *TransactionRepository) ListByStatus(ctx context.Context, status entities.TransactionStatus, limit, offset int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, description, created_at, updated_at
		FROM transactions
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	var transactions []*entities.Transaction
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &transactions, query, status, limit, offset); err != nil {
		return nil, fmt.Errorf("list transactions by status: %w", err)
	}

	return transactions, nil
}

// List retrieves all transactions, newest first
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, description, created_at, updated_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var transactions []*entities.Transaction
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &transactions, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, nil
}

// UpdateStatusIfPending transitions a transaction out of pending. The
// WHERE clause guards the state machine: a transaction already settled
// matches zero rows and the caller sees it in the returned count.
func (r *TransactionRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) (int64, error) {
	if err := status.Validate(); err != nil {
		return 0, fmt.Errorf("validate status: %w", err)
	}

	query := `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`

	result, err := r.ext(ctx).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("update transaction status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return rows, nil
}

// SumCompletedByUser returns the signed net of a user's completed
// transactions: withdrawals and investment funding debit, everything
// else credits. Used to rebuild a cached balance from the ledger.
func (r *TransactionRepository) SumCompletedByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE WHEN type IN ('withdrawal', 'investment', 'subscription') THEN -amount ELSE amount END
		), 0)
		FROM transactions
		WHERE user_id = $1 AND status = 'completed'
	`

	var sum decimal.Decimal
	if err := sqlx.GetContext(ctx, r.ext(ctx), &sum, query, userID); err != nil {
		return decimal.Zero, fmt.Errorf("sum completed transactions: %w", err)
	}

	return sum, nil
}
