// Package notifications handles in-app messages and site settings.
package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/events"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

// Service manages in-app notifications and site settings
type Service struct {
	notificationRepo repositories.NotificationRepository
	profileRepo      repositories.ProfileRepository
	settingsRepo     repositories.SettingsRepository
	adminLogRepo     repositories.AdminLogRepository
	txRunner         repositories.TxRunner
	publisher        events.Publisher
	logger           *logger.Logger
}

// NewService creates a new notifications service
func NewService(
	notificationRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileRepository,
	settingsRepo repositories.SettingsRepository,
	adminLogRepo repositories.AdminLogRepository,
	txRunner repositories.TxRunner,
	publisher events.Publisher,
	logger *logger.Logger,
) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		settingsRepo:     settingsRepo,
		adminLogRepo:     adminLogRepo,
		txRunner:         txRunner,
		publisher:        publisher,
		logger:           logger,
	}
}

// Broadcast fans a message out to every user. The rows and the audit
// entry commit together; per-user events go out after commit.
func (s *Service) Broadcast(ctx context.Context, adminID uuid.UUID, req *entities.BroadcastRequest, ip string) (int, error) {
	userIDs, err := s.profileRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	notifications := make([]*entities.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, &entities.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Title:   req.Title,
			Message: req.Message,
		})
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
			return err
		}
		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:      uuid.New(),
			AdminID: adminID,
			Action:  entities.AuditActionBroadcast,
			Details: map[string]interface{}{
				"title":      req.Title,
				"recipients": len(notifications),
			},
			IPAddress: ip,
		})
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Notification broadcast",
		"admin_id", adminID,
		"recipients", len(notifications))

	for _, n := range notifications {
		s.publisher.Publish(ctx, events.NotificationCreated(n.UserID, n.ID))
	}

	return len(notifications), nil
}

// ListByUser returns a user's notifications, newest first
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead acknowledges a notification for its owner
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

// GetDepositWallets returns the deposit address settings document.
// Missing document means no addresses configured yet, not an error.
func (s *Service) GetDepositWallets(ctx context.Context) (*entities.SiteSetting, error) {
	setting, err := s.settingsRepo.Get(ctx, entities.SettingKeyDepositWallets)
	if err != nil {
		return nil, err
	}
	return setting, nil
}

// UpdateDepositWallets rewrites the deposit address settings document
func (s *Service) UpdateDepositWallets(ctx context.Context, adminID uuid.UUID, value map[string]interface{}, ip string) (*entities.SiteSetting, error) {
	setting := &entities.SiteSetting{
		Key:   entities.SettingKeyDepositWallets,
		Value: value,
	}

	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.settingsRepo.Upsert(ctx, setting); err != nil {
			return err
		}
		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:      uuid.New(),
			AdminID: adminID,
			Action:  entities.AuditActionUpdateSettings,
			Details: map[string]interface{}{
				"key": setting.Key,
			},
			IPAddress: ip,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Settings updated", "key", setting.Key, "admin_id", adminID)
	return setting, nil
}
