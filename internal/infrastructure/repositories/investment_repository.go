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

// InvestmentRepository handles investment position persistence
type InvestmentRepository struct {
	db *sqlx.DB
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *sqlx.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

// Create inserts a new investment position
func (r *InvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	if err := inv.Validate(); err != nil {
		return fmt.Errorf("validate investment: %w", err)
	}

	query := `
		INSERT INTO investments (id, user_id, plan_id, amount, start_date, end_date, status, total_return, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := r.ext(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.UserID,
		inv.PlanID,
		inv.Amount,
		inv.StartDate,
		inv.EndDate,
		inv.Status,
		inv.TotalReturn,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create investment: %w", err)
	}

	return nil
}

// GetByID retrieves an investment by ID
func (r *InvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	query := `
		SELECT id, user_id, plan_id, amount, start_date, end_date, status, total_return, created_at, updated_at
		FROM investments
		WHERE id = $1
	`

	var inv entities.Investment
	err := sqlx.GetContext(ctx, r.ext(ctx), &inv, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.NotFoundError("INVESTMENT")
		}
		return nil, fmt.Errorf("get investment: %w", err)
	}

	return &inv, nil
}

// ListByUser retrieves all investments for a user, newest first
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	query := `
		SELECT id, user_id, plan_id, amount, start_date, end_date, status, total_return, created_at, updated_at
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var investments []*entities.Investment
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &investments, query, userID); err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	return investments, nil
}

// ListActiveByUser retrieves a user's active investments
func (r *InvestmentRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	query := `
		SELECT id, user_id, plan_id, amount, start_date, end_date, status, total_return, created_at, updated_at
		FROM investments
		WHERE user_id = $1 AND status = 'active'
		ORDER BY start_date ASC
	`

	var investments []*entities.Investment
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &investments, query, userID); err != nil {
		return nil, fmt.Errorf("list active investments: %w", err)
	}

	return investments, nil
}

// ListExpiredActive retrieves active investments whose end date has passed
func (r *InvestmentRepository) ListExpiredActive(ctx context.Context, asOf time.Time, limit int) ([]*entities.Investment, error) {
	query := `
		SELECT id, user_id, plan_id, amount, start_date, end_date, status, total_return, created_at, updated_at
		FROM investments
		WHERE status = 'active' AND end_date <= $1
		ORDER BY end_date ASC
		LIMIT $2
	`

	var investments []*entities.Investment
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &investments, query, asOf, limit); err != nil {
		return nil, fmt.Errorf("list expired investments: %w", err)
	}

	return investments, nil
}

// UpdateStatus transitions an investment to a new status
func (r *InvestmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.InvestmentStatus) error {
	if err := status.Validate(); err != nil {
		return fmt.Errorf("validate status: %w", err)
	}

	query := `UPDATE investments SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.ext(ctx).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update investment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("INVESTMENT")
	}

	return nil
}

// UpdateTotalReturn records the accrued return on an investment
func (r *InvestmentRepository) UpdateTotalReturn(ctx context.Context, id uuid.UUID, totalReturn decimal.Decimal) error {
	query := `UPDATE investments SET total_return = $1, updated_at = $2 WHERE id = $3`

	result, err := r.ext(ctx).ExecContext(ctx, query, totalReturn, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update total return: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("INVESTMENT")
	}

	return nil
}

// ListActiveUserIDs retrieves the distinct users holding active investments
func (r *InvestmentRepository) ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM investments WHERE status = 'active'`

	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &ids, query); err != nil {
		return nil, fmt.Errorf("list active user ids: %w", err)
	}

	return ids, nil
}
