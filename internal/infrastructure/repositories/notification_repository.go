package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/database"
)

// NotificationRepository handles in-app notification persistence
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

// CreateBatch inserts notifications in a single statement. Broadcasts
// fan out to every user, so row-at-a-time inserts do not scale here.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*entities.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	now := time.Now().UTC()
	args := make([]interface{}, 0, len(notifications)*6)
	query := `INSERT INTO notifications (id, user_id, title, message, read, created_at) VALUES `

	for i, n := range notifications {
		n.CreatedAt = now
		if i > 0 {
			query += ", "
		}
		base := i * 6
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, n.ID, n.UserID, n.Title, n.Message, n.Read, n.CreatedAt)
	}

	if _, err := r.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error) {
	query := `
		SELECT id, user_id, title, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var notifications []*entities.Notification
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &notifications, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks a notification as read. The user ID in the WHERE clause
// keeps users from acknowledging each other's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`

	result, err := r.ext(ctx).ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("NOTIFICATION")
	}

	return nil
}

// SettingsRepository handles key/value site settings documents
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) ext(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

// Get retrieves a settings document by key
func (r *SettingsRepository) Get(ctx context.Context, key string) (*entities.SiteSetting, error) {
	query := `SELECT key, value, updated_at FROM site_settings WHERE key = $1`

	var row struct {
		Key       string    `db:"key"`
		Value     []byte    `db:"value"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := sqlx.GetContext(ctx, r.ext(ctx), &row, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.NotFoundError("SETTING")
		}
		return nil, fmt.Errorf("get setting: %w", err)
	}

	setting := &entities.SiteSetting{Key: row.Key, UpdatedAt: row.UpdatedAt}
	if len(row.Value) > 0 {
		if err := json.Unmarshal(row.Value, &setting.Value); err != nil {
			return nil, fmt.Errorf("unmarshal setting: %w", err)
		}
	}

	return setting, nil
}

// Upsert writes a settings document, replacing any existing value
func (r *SettingsRepository) Upsert(ctx context.Context, setting *entities.SiteSetting) error {
	value, err := json.Marshal(setting.Value)
	if err != nil {
		return fmt.Errorf("marshal setting: %w", err)
	}

	query := `
		INSERT INTO site_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	setting.UpdatedAt = time.Now().UTC()

	if _, err := r.ext(ctx).ExecContext(ctx, query, setting.Key, value, setting.UpdatedAt); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}

	return nil
}
