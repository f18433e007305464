// Package reconciliation owns the transaction lifecycle: user-submitted
// deposit and withdrawal requests and the admin decisions that settle
// them against the cached balance.
package reconciliation

import (
	"context"
	"fmt"

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

// Service settles pending transactions against profile balances
type Service struct {
	transactionRepo repositories.TransactionRepository
	profileRepo     repositories.ProfileRepository
	adminLogRepo    repositories.AdminLogRepository
	txRunner        repositories.TxRunner
	publisher       events.Publisher
	logger          *logger.Logger
	referralPct     decimal.Decimal
}

// NewService creates a new reconciliation service. referralPct is the
// percentage of an approved deposit credited to the depositor's referrer.
func NewService(
	transactionRepo repositories.TransactionRepository,
	profileRepo repositories.ProfileRepository,
	adminLogRepo repositories.AdminLogRepository,
	txRunner repositories.TxRunner,
	publisher events.Publisher,
	logger *logger.Logger,
	referralPct decimal.Decimal,
) *Service {
	return &Service{
		transactionRepo: transactionRepo,
		profileRepo:     profileRepo,
		adminLogRepo:    adminLogRepo,
		txRunner:        txRunner,
		publisher:       publisher,
		logger:          logger,
		referralPct:     referralPct,
	}
}

// SubmitRequest records a deposit or withdrawal request as a pending
// transaction. No balance is touched until an admin approves it.
func (s *Service) SubmitRequest(ctx context.Context, userID uuid.UUID, req *entities.SubmitRequestInput) (*entities.Transaction, error) {
	if !req.Type.IsRequestable() {
		return nil, domainerrors.ValidationError("type", "only deposit and withdrawal may be requested")
	}
	if !req.Amount.IsPositive() {
		return nil, domainerrors.ValidationError("amount", "must be positive")
	}

	// Existence check; the balance itself is only consulted at approval.
	if _, err := s.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	tx := &entities.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		Status:      entities.TransactionStatusPending,
		Description: fmt.Sprintf("%s request", req.Type),
	}

	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TransactionChanged(userID, tx.ID, string(tx.Status)))

	return tx, nil
}

// Approve settles a pending transaction. A deposit credits the balance;
// a withdrawal debits it after re-checking sufficiency at approval time,
// since the balance may have moved since the request was made. The
// status flip, the balance write, the audit row, and any referral credit
// commit together.
func (s *Service) Approve(ctx context.Context, adminID, txID uuid.UUID, ip string) (*entities.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	if tx.Status.IsTerminal() {
		metrics.TransactionTransitionsTotal.WithLabelValues(string(tx.Type), "rejected_terminal").Inc()
		return nil, domainerrors.InvalidStateError("transaction", string(tx.Status), "approve")
	}

	var (
		newBalance decimal.Decimal
		referral   *referralCredit
	)

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		profile, err := s.profileRepo.GetForUpdate(ctx, tx.UserID)
		if err != nil {
			return err
		}

		switch tx.Type {
		case entities.TransactionTypeDeposit:
			newBalance = profile.Balance.Add(tx.Amount)
		case entities.TransactionTypeWithdrawal:
			if !profile.CanDebit(tx.Amount) {
				// Leave the transaction pending; the admin can retry
				// once the balance covers it, or reject.
				return domainerrors.InsufficientFundsError(profile.Balance.String(), tx.Amount.String())
			}
			newBalance = profile.Balance.Sub(tx.Amount)
		default:
			return domainerrors.InvalidStateError("transaction", string(tx.Type), "approve")
		}

		// The pending guard in the WHERE clause is what makes a racing
		// second approval a no-op instead of a double credit.
		rows, err := s.transactionRepo.UpdateStatusIfPending(ctx, tx.ID, entities.TransactionStatusCompleted)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domainerrors.InvalidStateError("transaction", "terminal", "approve")
		}

		if err := s.profileRepo.UpdateBalance(ctx, tx.UserID, newBalance); err != nil {
			return err
		}

		if tx.Type == entities.TransactionTypeDeposit && profile.ReferrerID != nil {
			referral, err = s.creditReferrer(ctx, *profile.ReferrerID, tx)
			if err != nil {
				return err
			}
		}

		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:      uuid.New(),
			AdminID: adminID,
			Action:  entities.AuditActionApproveTransaction,
			Details: map[string]interface{}{
				"transaction_id": tx.ID.String(),
				"user_id":        tx.UserID.String(),
				"type":           tx.Type,
				"amount":         tx.Amount.String(),
			},
			IPAddress: ip,
		})
	})
	if err != nil {
		return nil, err
	}

	tx.MarkCompleted()
	metrics.TransactionTransitionsTotal.WithLabelValues(string(tx.Type), "completed").Inc()
	metrics.BalanceMutationsTotal.WithLabelValues("approve_" + string(tx.Type)).Inc()
	s.logger.Info("Transaction approved",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount", tx.Amount,
		"admin_id", adminID)

	s.publisher.Publish(ctx, events.TransactionChanged(tx.UserID, tx.ID, string(tx.Status)))
	s.publisher.Publish(ctx, events.ProfileChanged(tx.UserID, map[string]interface{}{
		"balance": newBalance,
	}))
	if referral != nil {
		s.publisher.Publish(ctx, events.TransactionChanged(referral.referrerID, referral.txID, string(entities.TransactionStatusCompleted)))
		s.publisher.Publish(ctx, events.ProfileChanged(referral.referrerID, map[string]interface{}{
			"ref_bonus": referral.newRefBonus,
		}))
	}

	return tx, nil
}

type referralCredit struct {
	referrerID  uuid.UUID
	txID        uuid.UUID
	newRefBonus decimal.Decimal
}

// creditReferrer runs inside the approval transaction. The referrer's
// row is locked second, always in depositor-then-referrer order, which
// is safe because referral chains are acyclic.
func (s *Service) creditReferrer(ctx context.Context, referrerID uuid.UUID, deposit *entities.Transaction) (*referralCredit, error) {
	referrer, err := s.profileRepo.GetForUpdate(ctx, referrerID)
	if err != nil {
		if domainerrors.IsNotFound(err) {
			s.logger.Warn("Referrer profile missing, skipping referral credit",
				"referrer_id", referrerID,
				"deposit_id", deposit.ID)
			metrics.DataIntegrityAnomalies.Inc()
			return nil, nil
		}
		return nil, err
	}

	bonus := deposit.Amount.Mul(s.referralPct).Div(hundred)
	if !bonus.IsPositive() {
		return nil, nil
	}

	newRefBonus := referrer.RefBonus.Add(bonus)
	if err := s.profileRepo.UpdateRefBonus(ctx, referrerID, newRefBonus); err != nil {
		return nil, err
	}

	refTx := &entities.Transaction{
		ID:          uuid.New(),
		UserID:      referrerID,
		Type:        entities.TransactionTypeReferral,
		Amount:      bonus,
		Status:      entities.TransactionStatusCompleted,
		Description: fmt.Sprintf("Referral bonus on deposit %s", deposit.ID),
	}
	if err := s.transactionRepo.Create(ctx, refTx); err != nil {
		return nil, err
	}

	metrics.BalanceMutationsTotal.WithLabelValues("referral_credit").Inc()

	return &referralCredit{
		referrerID:  referrerID,
		txID:        refTx.ID,
		newRefBonus: newRefBonus,
	}, nil
}

// Reject fails a pending transaction. No balance effect.
func (s *Service) Reject(ctx context.Context, adminID, txID uuid.UUID, ip string) (*entities.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	if tx.Status.IsTerminal() {
		metrics.TransactionTransitionsTotal.WithLabelValues(string(tx.Type), "rejected_terminal").Inc()
		return nil, domainerrors.InvalidStateError("transaction", string(tx.Status), "reject")
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		rows, err := s.transactionRepo.UpdateStatusIfPending(ctx, tx.ID, entities.TransactionStatusFailed)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domainerrors.InvalidStateError("transaction", "terminal", "reject")
		}

		return s.adminLogRepo.Create(ctx, &entities.AdminLog{
			ID:      uuid.New(),
			AdminID: adminID,
			Action:  entities.AuditActionRejectTransaction,
			Details: map[string]interface{}{
				"transaction_id": tx.ID.String(),
				"user_id":        tx.UserID.String(),
				"type":           tx.Type,
				"amount":         tx.Amount.String(),
			},
			IPAddress: ip,
		})
	})
	if err != nil {
		return nil, err
	}

	tx.MarkFailed()
	metrics.TransactionTransitionsTotal.WithLabelValues(string(tx.Type), "failed").Inc()
	s.logger.Info("Transaction rejected",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"admin_id", adminID)

	s.publisher.Publish(ctx, events.TransactionChanged(tx.UserID, tx.ID, string(tx.Status)))

	return tx, nil
}

// RebuildBalance recomputes a profile's balance from the completed
// transaction ledger and writes it back. Audit and recovery tool: the
// ledger is the source of truth, the profile column only a cache of it.
func (s *Service) RebuildBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var rebuilt decimal.Decimal

	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		profile, err := s.profileRepo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		rebuilt, err = s.transactionRepo.SumCompletedByUser(ctx, userID)
		if err != nil {
			return err
		}

		if rebuilt.IsNegative() {
			// The ledger itself is inconsistent; flag it rather than
			// writing a balance the profile invariant forbids.
			metrics.DataIntegrityAnomalies.Inc()
			return domainerrors.DataIntegrityError("profile", "negative ledger sum")
		}

		if profile.Balance.Equal(rebuilt) {
			return nil
		}

		s.logger.Warn("Balance drift detected during rebuild",
			"user_id", userID,
			"cached", profile.Balance,
			"rebuilt", rebuilt)
		metrics.DataIntegrityAnomalies.Inc()

		return s.profileRepo.UpdateBalance(ctx, userID, rebuilt)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return rebuilt, nil
}

// ListByUser returns a user's transactions, newest first
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	return s.transactionRepo.ListByUser(ctx, userID, limit, offset)
}

// ListPending returns pending transactions awaiting admin review
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*entities.Transaction, error) {
	return s.transactionRepo.ListByStatus(ctx, entities.TransactionStatusPending, limit, offset)
}

// List returns all transactions for the admin ledger view
func (s *Service) List(ctx context.Context, limit, offset int) ([]*entities.Transaction, error) {
	return s.transactionRepo.List(ctx, limit, offset)
}
