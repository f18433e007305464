package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/database"
)

// PlanRepository handles investment plan persistence
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

// Create inserts a new plan
func (r *PlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}

	query := `
		INSERT INTO plans (id, name, min_deposit, max_deposit, daily_return, duration_days, bonus_percentage, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := r.ext(ctx).ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.MinDeposit,
		plan.MaxDeposit,
		plan.DailyReturn,
		plan.DurationDays,
		plan.BonusPct,
		plan.Description,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("plan already exists: %w", err)
		}
		return fmt.Errorf("create plan: %w", err)
	}

	return nil
}

// GetByID retrieves a plan by ID
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	query := `
		SELECT id, name, min_deposit, max_deposit, daily_return, duration_days, bonus_percentage, description, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	var plan entities.Plan
	err := sqlx.GetContext(ctx, r.ext(ctx), &plan, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.NotFoundError("PLAN")
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}

	return &plan, nil
}

// List retrieves all plans ordered by minimum deposit
func (r *PlanRepository) List(ctx context.Context) ([]*entities.Plan, error) {
	query := `
		SELECT id, name, min_deposit, max_deposit, daily_return, duration_days, bonus_percentage, description, created_at, updated_at
		FROM plans
		ORDER BY min_deposit ASC
	`

	var plans []*entities.Plan
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &plans, query); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	return plans, nil
}

// Update rewrites a plan's mutable fields
func (r *PlanRepository) Update(ctx context.Context, plan *entities.Plan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}

	query := `
		UPDATE plans
		SET name = $1, min_deposit = $2, max_deposit = $3, daily_return = $4,
		    duration_days = $5, bonus_percentage = $6, description = $7, updated_at = $8
		WHERE id = $9
	`

	plan.UpdatedAt = time.Now().UTC()

	result, err := r.ext(ctx).ExecContext(ctx, query,
		plan.Name,
		plan.MinDeposit,
		plan.MaxDeposit,
		plan.DailyReturn,
		plan.DurationDays,
		plan.BonusPct,
		plan.Description,
		plan.UpdatedAt,
		plan.ID,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("PLAN")
	}

	return nil
}

// Delete removes a plan
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.ext(ctx).ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("PLAN")
	}

	return nil
}

// CountActiveInvestments counts active investments referencing a plan
func (r *PlanRepository) CountActiveInvestments(ctx context.Context, planID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM investments WHERE plan_id = $1 AND status = 'active'`

	var count int
	if err := sqlx.GetContext(ctx, r.ext(ctx), &count, query, planID); err != nil {
		return 0, fmt.Errorf("count active investments: %w", err)
	}

	return count, nil
}
