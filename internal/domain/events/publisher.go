// Package events defines the change-feed contract between the core and the
// realtime transport. The core guarantees one event per committed mutation;
// delivery semantics belong to the transport.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
)

// Publisher emits typed change events keyed by user
type Publisher interface {
	Publish(ctx context.Context, event entities.ChangeEvent) error
}

// ProfileChanged builds a profile-changed event for a user
func ProfileChanged(userID uuid.UUID, payload map[string]interface{}) entities.ChangeEvent {
	return entities.ChangeEvent{
		Type:       entities.EventProfileChanged,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// TransactionChanged builds a transaction-changed event
func TransactionChanged(userID, txID uuid.UUID, status string) entities.ChangeEvent {
	return entities.ChangeEvent{
		Type:       entities.EventTransactionChanged,
		UserID:     userID,
		ResourceID: txID,
		Payload:    map[string]interface{}{"status": status},
		OccurredAt: time.Now().UTC(),
	}
}

// InvestmentChanged builds an investment-changed event
func InvestmentChanged(userID, investmentID uuid.UUID, status string) entities.ChangeEvent {
	return entities.ChangeEvent{
		Type:       entities.EventInvestmentChanged,
		UserID:     userID,
		ResourceID: investmentID,
		Payload:    map[string]interface{}{"status": status},
		OccurredAt: time.Now().UTC(),
	}
}

// NotificationCreated builds a notification-created event
func NotificationCreated(userID, notificationID uuid.UUID) entities.ChangeEvent {
	return entities.ChangeEvent{
		Type:       entities.EventNotificationCreated,
		UserID:     userID,
		ResourceID: notificationID,
		OccurredAt: time.Now().UTC(),
	}
}
