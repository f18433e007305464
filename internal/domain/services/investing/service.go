// Package investing handles plan subscription and investment reads.
package investing

import (
	"context"
	"fmt"
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

// Service handles investment subscriptions
type Service struct {
	investmentRepo  repositories.InvestmentRepository
	planRepo        repositories.PlanRepository
	profileRepo     repositories.ProfileRepository
	transactionRepo repositories.TransactionRepository
	txRunner        repositories.TxRunner
	publisher       events.Publisher
	logger          *logger.Logger
}

// NewService creates a new investing service
func NewService(
	investmentRepo repositories.InvestmentRepository,
	planRepo repositories.PlanRepository,
	profileRepo repositories.ProfileRepository,
	transactionRepo repositories.TransactionRepository,
	txRunner repositories.TxRunner,
	publisher events.Publisher,
	logger *logger.Logger,
) *Service {
	return &Service{
		investmentRepo:  investmentRepo,
		planRepo:        planRepo,
		profileRepo:     profileRepo,
		transactionRepo: transactionRepo,
		txRunner:        txRunner,
		publisher:       publisher,
		logger:          logger,
	}
}

// Subscribe commits funds from a user's balance into a plan. The balance
// debit, the investment row, and the ledger entry land in one DB
// transaction; a failure at any point leaves all three untouched.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID, req *entities.SubscribeRequest) (*entities.Investment, error) {
	if !req.Amount.IsPositive() {
		return nil, domainerrors.ValidationError("amount", "must be positive")
	}

	plan, err := s.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}

	if !plan.AcceptsAmount(req.Amount) {
		return nil, domainerrors.ValidationError("amount",
			fmt.Sprintf("must be between %s and %s for plan %s",
				plan.MinDeposit, plan.MaxDeposit, plan.Name))
	}

	now := time.Now().UTC()
	investment := &entities.Investment{
		ID:          uuid.New(),
		UserID:      userID,
		PlanID:      plan.ID,
		Amount:      req.Amount,
		StartDate:   now,
		EndDate:     now.AddDate(0, 0, plan.DurationDays),
		Status:      entities.InvestmentStatusActive,
		TotalReturn: decimal.Zero,
	}

	ledgerEntry := &entities.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        entities.TransactionTypeInvestment,
		Amount:      req.Amount,
		Status:      entities.TransactionStatusCompleted,
		Description: fmt.Sprintf("Subscription to %s", plan.Name),
	}

	var newBalance decimal.Decimal
	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		profile, err := s.profileRepo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if !profile.CanDebit(req.Amount) {
			return domainerrors.InsufficientFundsError(profile.Balance.String(), req.Amount.String())
		}

		newBalance = profile.Balance.Sub(req.Amount)
		if err := s.profileRepo.UpdateBalance(ctx, userID, newBalance); err != nil {
			return err
		}

		if err := s.investmentRepo.Create(ctx, investment); err != nil {
			return err
		}

		return s.transactionRepo.Create(ctx, ledgerEntry)
	})
	if err != nil {
		return nil, err
	}

	metrics.BalanceMutationsTotal.WithLabelValues("subscribe").Inc()
	s.logger.Info("Investment subscribed",
		"user_id", userID,
		"plan_id", plan.ID,
		"amount", req.Amount,
		"investment_id", investment.ID)

	s.publisher.Publish(ctx, events.ProfileChanged(userID, map[string]interface{}{
		"balance": newBalance,
	}))
	s.publisher.Publish(ctx, events.TransactionChanged(userID, ledgerEntry.ID, string(ledgerEntry.Status)))
	s.publisher.Publish(ctx, events.InvestmentChanged(userID, investment.ID, string(investment.Status)))

	return investment, nil
}

// ListByUser returns a user's investment positions
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	return s.investmentRepo.ListByUser(ctx, userID)
}

// ExpireMatured transitions active investments past their end date to
// completed, recording the final accrued return on the way out. Returns
// the number of positions closed.
func (s *Service) ExpireMatured(ctx context.Context, asOf time.Time, batchSize int) (int, error) {
	expired, err := s.investmentRepo.ListExpiredActive(ctx, asOf, batchSize)
	if err != nil {
		return 0, err
	}

	var closed int
	for _, inv := range expired {
		if ctx.Err() != nil {
			return closed, ctx.Err()
		}

		plan, err := s.planRepo.GetByID(ctx, inv.PlanID)
		if err != nil && !domainerrors.IsNotFound(err) {
			return closed, err
		}

		err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
			if plan != nil {
				finalReturn := inv.Amount.Mul(plan.DailyReturn.Div(decimal.NewFromInt(100))).
					Mul(decimal.NewFromInt(int64(plan.DurationDays)))
				if err := s.investmentRepo.UpdateTotalReturn(ctx, inv.ID, finalReturn); err != nil {
					return err
				}
			}
			return s.investmentRepo.UpdateStatus(ctx, inv.ID, entities.InvestmentStatusCompleted)
		})
		if err != nil {
			s.logger.Error("Failed to expire investment",
				"investment_id", inv.ID,
				"error", err)
			continue
		}

		closed++
		s.publisher.Publish(ctx, events.InvestmentChanged(inv.UserID, inv.ID, string(entities.InvestmentStatusCompleted)))
	}

	return closed, nil
}
