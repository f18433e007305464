// Package plans manages the investment plan catalog.
package plans

import (
	"context"

	"github.com/google/uuid"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

// Service manages the plan catalog
type Service struct {
	planRepo     repositories.PlanRepository
	adminLogRepo repositories.AdminLogRepository
	txRunner     repositories.TxRunner
	logger       *logger.Logger
}

// NewService creates a new plans service
func NewService(
	planRepo repositories.PlanRepository,
	adminLogRepo repositories.AdminLogRepository,
	txRunner repositories.TxRunner,
	logger *logger.Logger,
) *Service {
	return &Service{
		planRepo:     planRepo,
		adminLogRepo: adminLogRepo,
		txRunner:     txRunner,
		logger:       logger,
	}
}

// List returns the full catalog
func (s *Service) List(ctx context.Context) ([]*entities.Plan, error) {
	return s.planRepo.List(ctx)
}

// Get returns a single plan
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	return s.planRepo.GetByID(ctx, id)
}

// Create adds a plan to the catalog
func (s *Service) Create(ctx context.Context, adminID uuid.UUID, req *entities.CreatePlanRequest, ip string) (*entities.Plan, error) {
	plan := &entities.Plan{
		ID:           uuid.New(),
		Name:         req.Name,
		MinDeposit:   req.MinDeposit,
		MaxDeposit:   req.MaxDeposit,
		DailyReturn:  req.DailyReturn,
		DurationDays: req.DurationDays,
		BonusPct:     req.BonusPct,
		Description:  req.Description,
	}

	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.planRepo.Create(ctx, plan); err != nil {
			return err
		}
		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:      uuid.New(),
			AdminID: adminID,
			Action:  entities.AuditActionCreatePlan,
			Details: map[string]interface{}{
				"plan_id": plan.ID.String(),
				"name":    plan.Name,
			},
			IPAddress: ip,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Plan created", "plan_id", plan.ID, "name", plan.Name, "admin_id", adminID)
	return plan, nil
}

// Update rewrites a plan's fields. Accrual for existing investments picks
// up the new rate on the next pass; terms are not grandfathered.
func (s *Service) Update(ctx context.Context, adminID, planID uuid.UUID, req *entities.UpdatePlanRequest, ip string) (*entities.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(plan)

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.planRepo.Update(ctx, plan); err != nil {
			return err
		}
		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:      uuid.New(),
			AdminID: adminID,
			Action:  entities.AuditActionUpdatePlan,
			Details: map[string]interface{}{
				"plan_id": plan.ID.String(),
				"name":    plan.Name,
			},
			IPAddress: ip,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Plan updated", "plan_id", plan.ID, "admin_id", adminID)
	return plan, nil
}

// Delete removes a plan. Refused while active investments reference it;
// deleting would leave them without a rate and the accrual engine would
// have to skip them as dangling.
func (s *Service) Delete(ctx context.Context, adminID, planID uuid.UUID, ip string) error {
	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		count, err := s.planRepo.CountActiveInvestments(ctx, planID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.InvalidStateError("plan", "referenced", "delete")
		}

		if err := s.planRepo.Delete(ctx, planID); err != nil {
			return err
		}

		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:      uuid.New(),
			AdminID: adminID,
			Action:  entities.AuditActionDeletePlan,
			Details: map[string]interface{}{
				"plan_id": planID.String(),
			},
			IPAddress: ip,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Plan deleted", "plan_id", planID, "admin_id", adminID)
	return nil
}
