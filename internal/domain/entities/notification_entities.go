package entities

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for a user
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BroadcastRequest is an admin request to notify every user
type BroadcastRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SiteSetting is a key/value settings document (deposit wallet addresses etc.)
type SiteSetting struct {
	Key       string                 `json:"key" db:"key"`
	Value     map[string]interface{} `json:"value" db:"value"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// SettingKeyDepositWallets is the settings document holding deposit addresses
const SettingKeyDepositWallets = "deposit_wallets"
