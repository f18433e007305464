package entities

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies an admin operation recorded in admin_logs
type AuditAction string

const (
	AuditActionApproveTransaction   AuditAction = "approve_transaction"
	AuditActionRejectTransaction    AuditAction = "reject_transaction"
	AuditActionUpdateUserFinancials AuditAction = "update_user_financials"
	AuditActionCreatePlan           AuditAction = "create_plan"
	AuditActionUpdatePlan           AuditAction = "update_plan"
	AuditActionDeletePlan           AuditAction = "delete_plan"
	AuditActionUpdateSettings       AuditAction = "update_settings"
	AuditActionBroadcast            AuditAction = "broadcast_notification"
	AuditActionAdminLogin           AuditAction = "admin_login"
)

// AdminLog is an immutable audit entry for an admin action
type AdminLog struct {
	ID        uuid.UUID              `json:"id" db:"id"`
	AdminID   uuid.UUID              `json:"admin_id" db:"admin_id"`
	Action    AuditAction            `json:"action" db:"action"`
	Details   map[string]interface{} `json:"details,omitempty" db:"details"`
	IPAddress string                 `json:"ip_address" db:"ip_address"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}

// AdminRole is the role assigned to a back-office account
type AdminRole string

const (
	AdminRoleAdmin AdminRole = "admin"
)

// AdminUser is a back-office account with a bcrypt-hashed credential.
// Replaces the shared-password login the legacy dashboard used.
type AdminUser struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         AdminRole `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
