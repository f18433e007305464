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

// ProfileRepository handles the cached per-user financial aggregate
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

const profileColumns = `id, full_name, balance, profit, bonus, ref_bonus, referrer_id, created_at, updated_at`

// GetByID retrieves a profile by user ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	var profile entities.Profile
	err := sqlx.GetContext(ctx, r.ext(ctx), &profile, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.NotFoundError("PROFILE")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

// GetForUpdate locks the profile row until the surrounding transaction
// ends. Callers must be inside WithinTx; against the bare pool the lock
// is released immediately and provides no serialization.
func (r *ProfileRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 FOR UPDATE`

	var profile entities.Profile
	err := sqlx.GetContext(ctx, r.ext(ctx), &profile, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.NotFoundError("PROFILE")
		}
		return nil, fmt.Errorf("get profile for update: %w", err)
	}

	return &profile, nil
}

// UpdateBalance sets the cached balance
func (r *ProfileRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return domainerrors.ValidationError("balance", "cannot be negative")
	}
	return r.setColumn(ctx, id, "balance", balance)
}

// UpdateProfit sets the cached accrued profit
func (r *ProfileRepository) UpdateProfit(ctx context.Context, id uuid.UUID, profit decimal.Decimal) error {
	return r.setColumn(ctx, id, "profit", profit)
}

// UpdateRefBonus sets the cached referral bonus
func (r *ProfileRepository) UpdateRefBonus(ctx context.Context, id uuid.UUID, refBonus decimal.Decimal) error {
	return r.setColumn(ctx, id, "ref_bonus", refBonus)
}

func (r *ProfileRepository) setColumn(ctx context.Context, id uuid.UUID, column string, value decimal.Decimal) error {
	query := fmt.Sprintf(`UPDATE profiles SET %s = $1, updated_at = $2 WHERE id = $3`, column)

	result, err := r.ext(ctx).ExecContext(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", column, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("PROFILE")
	}

	return nil
}

// UpdateFinancials applies an admin override to the cached fields.
// Only the fields present in the request are touched.
func (r *ProfileRepository) UpdateFinancials(ctx context.Context, id uuid.UUID, req *entities.AdjustFinancialsRequest) error {
	if req.IsEmpty() {
		return domainerrors.ValidationError("fields", "at least one field is required")
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validate financials: %w", err)
	}

	query := `
		UPDATE profiles
		SET balance   = COALESCE($1, balance),
		    profit    = COALESCE($2, profit),
		    bonus     = COALESCE($3, bonus),
		    ref_bonus = COALESCE($4, ref_bonus),
		    updated_at = $5
		WHERE id = $6
	`

	result, err := r.ext(ctx).ExecContext(ctx, query,
		req.Balance,
		req.Profit,
		req.Bonus,
		req.RefBonus,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update profile financials: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("PROFILE")
	}

	return nil
}

// List retrieves profiles ordered by creation time
func (r *ProfileRepository) List(ctx context.Context, limit, offset int) ([]*entities.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var profiles []*entities.Profile
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &profiles, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, nil
}

// ListIDs retrieves every profile ID
func (r *ProfileRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &ids, `SELECT id FROM profiles`); err != nil {
		return nil, fmt.Errorf("list profile ids: %w", err)
	}

	return ids, nil
}
