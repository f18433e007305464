package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a change-feed event
type EventType string

const (
	EventProfileChanged      EventType = "profile_changed"
	EventTransactionChanged  EventType = "transaction_changed"
	EventInvestmentChanged   EventType = "investment_changed"
	EventNotificationCreated EventType = "notification_created"
)

// ChangeEvent is a typed change notification keyed by user. The core emits
// exactly one per committed mutation; delivery is the transport's problem.
type ChangeEvent struct {
	Type       EventType              `json:"type"`
	UserID     uuid.UUID              `json:"user_id"`
	ResourceID uuid.UUID              `json:"resource_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// ErrorResponse is the HTTP error envelope
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
