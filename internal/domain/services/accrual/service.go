// Package accrual computes time-based investment profit and keeps the
// cached profile.profit column in step with it. Profit is always derived
// from the investment rows; the profile column is a materialized copy
// that readers may use but never author.
package accrual

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/events"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
	"github.com/emires65/simpleprofit-dao-trader/pkg/metrics"
)

var hundred = decimal.NewFromInt(100)

// Service is the profit accrual engine
type Service struct {
	investmentRepo repositories.InvestmentRepository
	planRepo       repositories.PlanRepository
	profileRepo    repositories.ProfileRepository
	txRunner       repositories.TxRunner
	publisher      events.Publisher
	logger         *logger.Logger
}

// NewService creates a new accrual service
func NewService(
	investmentRepo repositories.InvestmentRepository,
	planRepo repositories.PlanRepository,
	profileRepo repositories.ProfileRepository,
	txRunner repositories.TxRunner,
	publisher events.Publisher,
	logger *logger.Logger,
) *Service {
	return &Service{
		investmentRepo: investmentRepo,
		planRepo:       planRepo,
		profileRepo:    profileRepo,
		txRunner:       txRunner,
		publisher:      publisher,
		logger:         logger,
	}
}

// ComputeProfit returns the profit an investment has earned by asOf:
// amount * daily_return% * whole days elapsed. Days are clamped to the
// plan's term, so a matured position stops earning, and to zero, so a
// start date in the future earns nothing rather than a negative amount.
func ComputeProfit(inv *entities.Investment, plan *entities.Plan, asOf time.Time) decimal.Decimal {
	days := wholeDaysBetween(inv.StartDate, asOf)
	if days < 0 {
		days = 0
	}
	if int(days) > plan.DurationDays {
		days = int64(plan.DurationDays)
	}

	dailyRate := plan.DailyReturn.Div(hundred)
	return inv.Amount.Mul(dailyRate).Mul(decimal.NewFromInt(days))
}

func wholeDaysBetween(start, end time.Time) int64 {
	return int64(end.Sub(start).Hours() / 24)
}

// AggregateProfit sums accrued profit across a user's active investments.
// An investment whose plan no longer exists contributes zero: a missing
// rate is not a zero rate, so the position is skipped and flagged rather
// than silently valued.
func (s *Service) AggregateProfit(ctx context.Context, userID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	investments, err := s.investmentRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	plans := make(map[uuid.UUID]*entities.Plan)

	for _, inv := range investments {
		plan, ok := plans[inv.PlanID]
		if !ok {
			plan, err = s.planRepo.GetByID(ctx, inv.PlanID)
			if err != nil {
				if domainerrors.IsNotFound(err) {
					s.logger.Warn("Skipping investment with missing plan",
						"investment_id", inv.ID,
						"plan_id", inv.PlanID)
					metrics.DataIntegrityAnomalies.Inc()
					plans[inv.PlanID] = nil
					continue
				}
				return decimal.Zero, err
			}
			plans[inv.PlanID] = plan
		}
		if plan == nil {
			continue
		}

		total = total.Add(ComputeProfit(inv, plan, asOf))
	}

	return total, nil
}

// Accrue recomputes a user's aggregate profit and writes it through to
// the cached profile column. All computation happens before the write
// transaction opens, so the row lock is held only for the update itself.
// Re-running with an unchanged clock writes the same value: idempotent.
func (s *Service) Accrue(ctx context.Context, userID uuid.UUID, asOf time.Time) error {
	profit, err := s.AggregateProfit(ctx, userID, asOf)
	if err != nil {
		return err
	}

	var changed bool
	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		profile, err := s.profileRepo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if profile.Profit.Equal(profit) {
			return nil
		}

		changed = true
		return s.profileRepo.UpdateProfit(ctx, userID, profit)
	})
	if err != nil {
		return err
	}

	if changed {
		metrics.BalanceMutationsTotal.WithLabelValues("accrue_profit").Inc()
		s.publisher.Publish(ctx, events.ProfileChanged(userID, map[string]interface{}{
			"profit": profit,
		}))
	}

	return nil
}

// AccrueAll runs Accrue for every user holding active investments.
// Failures are per-user: one bad profile does not stall the sweep.
func (s *Service) AccrueAll(ctx context.Context, asOf time.Time) (int, error) {
	userIDs, err := s.investmentRepo.ListActiveUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	var failures int
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return failures, ctx.Err()
		}
		if err := s.Accrue(ctx, userID, asOf); err != nil {
			failures++
			s.logger.Error("Profit accrual failed for user",
				"user_id", userID,
				"error", err)
		}
	}

	return failures, nil
}

// DailySeries returns one point per day over the trailing window, each
// the aggregate profit the user's current active investments had accrued
// by end of that day. The series is recomputed from investment terms, so
// it reflects today's positions, not a historical record.
func (s *Service) DailySeries(ctx context.Context, userID uuid.UUID, windowDays int, asOf time.Time) ([]entities.DailyProfitPoint, error) {
	investments, err := s.investmentRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	plans := make(map[uuid.UUID]*entities.Plan)
	for _, inv := range investments {
		if _, ok := plans[inv.PlanID]; ok {
			continue
		}
		plan, err := s.planRepo.GetByID(ctx, inv.PlanID)
		if err != nil {
			if domainerrors.IsNotFound(err) {
				metrics.DataIntegrityAnomalies.Inc()
				plans[inv.PlanID] = nil
				continue
			}
			return nil, err
		}
		plans[inv.PlanID] = plan
	}

	day := asOf.Truncate(24 * time.Hour)
	points := make([]entities.DailyProfitPoint, 0, windowDays)

	for i := windowDays - 1; i >= 0; i-- {
		date := day.AddDate(0, 0, -i)
		total := decimal.Zero
		for _, inv := range investments {
			plan := plans[inv.PlanID]
			if plan == nil {
				continue
			}
			total = total.Add(ComputeProfit(inv, plan, date))
		}
		points = append(points, entities.DailyProfitPoint{Date: date, Profit: total})
	}

	return points, nil
}

// Stats assembles the dashboard aggregate for a user's active positions
func (s *Service) Stats(ctx context.Context, userID uuid.UUID, windowDays int, asOf time.Time) (*entities.InvestmentStats, error) {
	investments, err := s.investmentRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	invested := decimal.Zero
	for _, inv := range investments {
		invested = invested.Add(inv.Amount)
	}

	profit, err := s.AggregateProfit(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	series, err := s.DailySeries(ctx, userID, windowDays, asOf)
	if err != nil {
		return nil, err
	}

	roi := decimal.Zero
	if invested.IsPositive() {
		roi = profit.Div(invested).Mul(hundred)
	}

	return &entities.InvestmentStats{
		ActiveInvestments: len(investments),
		TotalInvested:     invested,
		CurrentProfit:     profit,
		TotalROI:          roi,
		DailyProfits:      series,
	}, nil
}
