// Package profiles exposes the cached per-user aggregate and the admin
// override that rewrites it.
package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/events"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
	"github.com/emires65/simpleprofit-dao-trader/pkg/metrics"
)

// Service reads profiles and applies admin financial adjustments
type Service struct {
	profileRepo  repositories.ProfileRepository
	adminLogRepo repositories.AdminLogRepository
	txRunner     repositories.TxRunner
	publisher    events.Publisher
	logger       *logger.Logger
}

// NewService creates a new profiles service
func NewService(
	profileRepo repositories.ProfileRepository,
	adminLogRepo repositories.AdminLogRepository,
	txRunner repositories.TxRunner,
	publisher events.Publisher,
	logger *logger.Logger,
) *Service {
	return &Service{
		profileRepo:  profileRepo,
		adminLogRepo: adminLogRepo,
		txRunner:     txRunner,
		publisher:    publisher,
		logger:       logger,
	}
}

// Get returns a user's profile
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	return s.profileRepo.GetByID(ctx, userID)
}

// List returns profiles for the admin user view
func (s *Service) List(ctx context.Context, limit, offset int) ([]*entities.Profile, error) {
	return s.profileRepo.List(ctx, limit, offset)
}

// AdjustFinancials overwrites cached profile fields on admin authority.
// The override and its audit row commit together; the accrual engine
// will reconverge profit on its next pass if the admin moved it.
func (s *Service) AdjustFinancials(ctx context.Context, adminID, userID uuid.UUID, req *entities.AdjustFinancialsRequest, ip string) (*entities.Profile, error) {
	if req.IsEmpty() {
		return nil, domainerrors.ValidationError("fields", "at least one field is required")
	}
	if err := req.Validate(); err != nil {
		return nil, domainerrors.ValidationError("fields", err.Error())
	}

	var updated *entities.Profile
	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.profileRepo.GetForUpdate(ctx, userID); err != nil {
			return err
		}

		if err := s.profileRepo.UpdateFinancials(ctx, userID, req); err != nil {
			return err
		}

		var err error
		updated, err = s.profileRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		details := map[string]interface{}{"user_id": userID.String()}
		if req.Balance != nil {
			details["balance"] = req.Balance.String()
		}
		if req.Profit != nil {
			details["profit"] = req.Profit.String()
		}
		if req.Bonus != nil {
			details["bonus"] = req.Bonus.String()
		}
		if req.RefBonus != nil {
			details["ref_bonus"] = req.RefBonus.String()
		}

		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:        uuid.New(),
			AdminID:   adminID,
			Action:    entities.AuditActionUpdateUserFinancials,
			Details:   details,
			IPAddress: ip,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.BalanceMutationsTotal.WithLabelValues("admin_adjust").Inc()
	s.logger.Info("Profile financials adjusted",
		"user_id", userID,
		"admin_id", adminID)

	s.publisher.Publish(ctx, events.ProfileChanged(userID, map[string]interface{}{
		"balance":   updated.Balance,
		"profit":    updated.Profit,
		"bonus":     updated.Bonus,
		"ref_bonus": updated.RefBonus,
	}))

	return updated, nil
}
