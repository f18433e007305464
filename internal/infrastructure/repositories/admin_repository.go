package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/database"
)

// AdminLogRepository appends and reads the back-office audit trail
type AdminLogRepository struct {
	db *sqlx.DB
}

// NewAdminLogRepository creates a new admin log repository
func NewAdminLogRepository(db *sqlx.DB) *AdminLogRepository {
	return &AdminLogRepository{db: db}
}

func (r *AdminLogRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

// adminLogRow maps the jsonb details column for scanning
type adminLogRow struct {
	entities.AdminLog
	DetailsRaw []byte `db:"details"`
}

// Create appends an audit entry. Entries are never updated or deleted.
func (r *AdminLogRepository) Create(ctx context.Context, log *entities.AdminLog) error {
	details, err := json.Marshal(log.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	query := `
		INSERT INTO admin_logs (id, admin_id, action, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	log.CreatedAt = time.Now().UTC()

	_, err = r.ext(ctx).ExecContext(ctx, query,
		log.ID,
		log.AdminID,
		log.Action,
		details,
		log.IPAddress,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create admin log: %w", err)
	}

	return nil
}

// List retrieves audit entries, newest first
func (r *AdminLogRepository) List(ctx context.Context, limit, offset int) ([]*entities.AdminLog, error) {
	query := `
		SELECT id, admin_id, action, details, ip_address, created_at
		FROM admin_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var rows []adminLogRow
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list admin logs: %w", err)
	}

	logs := make([]*entities.AdminLog, 0, len(rows))
	for i := range rows {
		log := rows[i].AdminLog
		if len(rows[i].DetailsRaw) > 0 {
			if err := json.Unmarshal(rows[i].DetailsRaw, &log.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		logs = append(logs, &log)
	}

	return logs, nil
}

// AdminUserRepository reads and seeds back-office accounts
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new admin user repository
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

// GetByEmail retrieves an admin account by email
func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, role, created_at
		FROM admin_users
		WHERE email = $1
	`

	var admin entities.AdminUser
	err := sqlx.GetContext(ctx, r.ext(ctx), &admin, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.NotFoundError("ADMIN_USER")
		}
		return nil, fmt.Errorf("get admin user: %w", err)
	}

	return &admin, nil
}

// Create inserts a back-office account
func (r *AdminUserRepository) Create(ctx context.Context, admin *entities.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	admin.CreatedAt = time.Now().UTC()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("admin email already registered: %w", err)
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	return nil
}
