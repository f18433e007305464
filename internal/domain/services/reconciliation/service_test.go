package reconciliation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories/memstore"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

func newTestService(store *memstore.Store, pub *memstore.RecordingPublisher) *Service {
	return NewService(
		store.TransactionsRepo(),
		store.Profiles(),
		store.AdminLogsRepo(),
		store,
		pub,
		logger.New("error", "development"),
		decimal.NewFromInt(5),
	)
}

func seedUser(store *memstore.Store, balance string) uuid.UUID {
	userID := uuid.New()
	store.SeedProfile(&entities.Profile{
		ID:      userID,
		Balance: decimal.RequireFromString(balance),
	})
	return userID
}

func seedPendingTx(store *memstore.Store, userID uuid.UUID, txType entities.TransactionType, amount string) uuid.UUID {
	txID := uuid.New()
	store.SeedTransaction(&entities.Transaction{
		ID:     txID,
		UserID: userID,
		Type:   txType,
		Amount: decimal.RequireFromString(amount),
		Status: entities.TransactionStatusPending,
	})
	return txID
}

func TestSubmitRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("records a pending request without touching the balance", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "250")

		tx, err := svc.SubmitRequest(ctx, userID, &entities.SubmitRequestInput{
			Type:   entities.TransactionTypeWithdrawal,
			Amount: decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		assert.Equal(t, entities.TransactionStatusPending, tx.Status)
		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(250)))
		assert.Len(t, pub.EventsOfType(entities.EventTransactionChanged), 1)
	})

	t.Run("rejects types users may not request", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := seedUser(store, "250")

		for _, txType := range []entities.TransactionType{
			entities.TransactionTypeBonus,
			entities.TransactionTypeReferral,
			entities.TransactionTypeInvestment,
		} {
			_, err := svc.SubmitRequest(ctx, userID, &entities.SubmitRequestInput{
				Type:   txType,
				Amount: decimal.NewFromInt(10),
			})
			assert.True(t, domainerrors.IsInvalidInput(err), "type %s", txType)
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := seedUser(store, "250")

		_, err := svc.SubmitRequest(ctx, userID, &entities.SubmitRequestInput{
			Type:   entities.TransactionTypeDeposit,
			Amount: decimal.NewFromInt(-5),
		})
		assert.True(t, domainerrors.IsInvalidInput(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())

		_, err := svc.SubmitRequest(ctx, uuid.New(), &entities.SubmitRequestInput{
			Type:   entities.TransactionTypeDeposit,
			Amount: decimal.NewFromInt(50),
		})
		assert.True(t, domainerrors.IsNotFound(err))
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("deposit credits the balance and leaves an audit row", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "100")
		txID := seedPendingTx(store, userID, entities.TransactionTypeDeposit, "400")

		tx, err := svc.Approve(ctx, adminID, txID, "203.0.113.9")
		require.NoError(t, err)

		assert.Equal(t, entities.TransactionStatusCompleted, tx.Status)
		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(500)),
			"got %s", store.Profile(userID).Balance)

		logs := store.AdminLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, entities.AuditActionApproveTransaction, logs[0].Action)
		assert.Equal(t, adminID, logs[0].AdminID)
		assert.Equal(t, txID.String(), logs[0].Details["transaction_id"])

		assert.Len(t, pub.EventsOfType(entities.EventTransactionChanged), 1)
		assert.Len(t, pub.EventsOfType(entities.EventProfileChanged), 1)
	})

	t.Run("withdrawal debits after re-checking sufficiency", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "500")
		txID := seedPendingTx(store, userID, entities.TransactionTypeWithdrawal, "300")

		tx, err := svc.Approve(ctx, adminID, txID, "")
		require.NoError(t, err)

		assert.Equal(t, entities.TransactionStatusCompleted, tx.Status)
		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(200)))
	})

	t.Run("withdrawal exceeding the balance stays pending", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "100")
		txID := seedPendingTx(store, userID, entities.TransactionTypeWithdrawal, "300")

		_, err := svc.Approve(ctx, adminID, txID, "")
		require.Error(t, err)
		assert.True(t, domainerrors.IsInsufficientFunds(err))

		// The request stays open for a later retry or rejection, and
		// nothing was written.
		assert.Equal(t, entities.TransactionStatusPending, store.Transaction(txID).Status)
		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(100)))
		assert.Empty(t, store.AdminLogs())
		assert.Empty(t, pub.Events())
	})

	t.Run("second decision is refused without a double credit", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "100")
		txID := seedPendingTx(store, userID, entities.TransactionTypeDeposit, "400")

		_, err := svc.Approve(ctx, adminID, txID, "")
		require.NoError(t, err)

		_, err = svc.Approve(ctx, adminID, txID, "")
		assert.True(t, domainerrors.IsInvalidState(err))
		_, err = svc.Reject(ctx, adminID, txID, "")
		assert.True(t, domainerrors.IsInvalidState(err))

		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(500)),
			"balance must reflect exactly one credit, got %s", store.Profile(userID).Balance)
		assert.Len(t, store.AdminLogs(), 1)
	})

}

func TestApproveReferral(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("credits the referrer once per approved deposit", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)

		referrerID := seedUser(store, "0")
		depositorID := uuid.New()
		store.SeedProfile(&entities.Profile{
			ID:         depositorID,
			Balance:    decimal.Zero,
			ReferrerID: &referrerID,
		})
		txID := seedPendingTx(store, depositorID, entities.TransactionTypeDeposit, "1000")

		_, err := svc.Approve(ctx, adminID, txID, "")
		require.NoError(t, err)

		// 5% of 1000
		referrer := store.Profile(referrerID)
		assert.True(t, referrer.RefBonus.Equal(decimal.NewFromInt(50)),
			"got %s", referrer.RefBonus)
		assert.True(t, referrer.Balance.IsZero(), "bonus accrues separately from balance")

		var refTxs []*entities.Transaction
		for _, tx := range store.Transactions() {
			if tx.Type == entities.TransactionTypeReferral {
				refTxs = append(refTxs, tx)
			}
		}
		require.Len(t, refTxs, 1)
		assert.Equal(t, referrerID, refTxs[0].UserID)
		assert.Equal(t, entities.TransactionStatusCompleted, refTxs[0].Status)
		assert.True(t, refTxs[0].Amount.Equal(decimal.NewFromInt(50)))

		// Depositor and referrer each get a profile event.
		assert.Len(t, pub.EventsOfType(entities.EventProfileChanged), 2)
		assert.Len(t, pub.EventsOfType(entities.EventTransactionChanged), 2)
	})

	t.Run("no referrer, no credit", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "0")
		txID := seedPendingTx(store, userID, entities.TransactionTypeDeposit, "1000")

		_, err := svc.Approve(ctx, adminID, txID, "")
		require.NoError(t, err)

		for _, tx := range store.Transactions() {
			assert.NotEqual(t, entities.TransactionTypeReferral, tx.Type)
		}
	})

	t.Run("missing referrer row is skipped, approval still lands", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)

		ghost := uuid.New()
		depositorID := uuid.New()
		store.SeedProfile(&entities.Profile{
			ID:         depositorID,
			Balance:    decimal.Zero,
			ReferrerID: &ghost,
		})
		txID := seedPendingTx(store, depositorID, entities.TransactionTypeDeposit, "1000")

		_, err := svc.Approve(ctx, adminID, txID, "")
		require.NoError(t, err)

		assert.True(t, store.Profile(depositorID).Balance.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, entities.TransactionStatusCompleted, store.Transaction(txID).Status)
	})

	t.Run("withdrawal never triggers referral credit", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)

		referrerID := seedUser(store, "0")
		userID := uuid.New()
		store.SeedProfile(&entities.Profile{
			ID:         userID,
			Balance:    decimal.NewFromInt(500),
			ReferrerID: &referrerID,
		})
		txID := seedPendingTx(store, userID, entities.TransactionTypeWithdrawal, "200")

		_, err := svc.Approve(ctx, adminID, txID, "")
		require.NoError(t, err)

		assert.True(t, store.Profile(referrerID).RefBonus.IsZero())
	})
}

func TestApproveRollback(t *testing.T) {
	ctx := context.Background()

	t.Run("audit failure rolls back the credit and the status flip", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "100")
		txID := seedPendingTx(store, userID, entities.TransactionTypeDeposit, "400")

		store.FailNext("admin_logs.create", assert.AnError)

		_, err := svc.Approve(ctx, uuid.New(), txID, "")
		require.Error(t, err)

		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(100)),
			"credit must roll back, got %s", store.Profile(userID).Balance)
		assert.Equal(t, entities.TransactionStatusPending, store.Transaction(txID).Status)
		assert.Empty(t, pub.Events())
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("fails the transaction with no balance effect", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := seedUser(store, "100")
		txID := seedPendingTx(store, userID, entities.TransactionTypeWithdrawal, "50")

		tx, err := svc.Reject(ctx, adminID, txID, "203.0.113.9")
		require.NoError(t, err)

		assert.Equal(t, entities.TransactionStatusFailed, tx.Status)
		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(100)))

		logs := store.AdminLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, entities.AuditActionRejectTransaction, logs[0].Action)
		assert.Len(t, pub.EventsOfType(entities.EventTransactionChanged), 1)
	})

	t.Run("terminal transaction cannot be rejected", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := seedUser(store, "100")
		txID := uuid.New()
		store.SeedTransaction(&entities.Transaction{
			ID:     txID,
			UserID: userID,
			Type:   entities.TransactionTypeDeposit,
			Amount: decimal.NewFromInt(50),
			Status: entities.TransactionStatusCompleted,
		})

		_, err := svc.Reject(ctx, adminID, txID, "")
		assert.True(t, domainerrors.IsInvalidState(err))
	})
}

func TestRebuildBalance(t *testing.T) {
	ctx := context.Background()

	seedCompleted := func(store *memstore.Store, userID uuid.UUID, txType entities.TransactionType, amount string) {
		store.SeedTransaction(&entities.Transaction{
			ID:     uuid.New(),
			UserID: userID,
			Type:   txType,
			Amount: decimal.RequireFromString(amount),
			Status: entities.TransactionStatusCompleted,
		})
	}

	t.Run("corrects a drifted cache from the ledger", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := seedUser(store, "9999")

		seedCompleted(store, userID, entities.TransactionTypeDeposit, "1000")
		seedCompleted(store, userID, entities.TransactionTypeBonus, "50")
		seedCompleted(store, userID, entities.TransactionTypeWithdrawal, "300")
		seedCompleted(store, userID, entities.TransactionTypeInvestment, "200")
		// Pending rows never count.
		seedPendingTx(store, userID, entities.TransactionTypeDeposit, "500")

		rebuilt, err := svc.RebuildBalance(ctx, userID)
		require.NoError(t, err)

		want := decimal.NewFromInt(550)
		assert.True(t, rebuilt.Equal(want), "got %s", rebuilt)
		assert.True(t, store.Profile(userID).Balance.Equal(want))
	})

	t.Run("matching cache is left alone", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := seedUser(store, "700")
		seedCompleted(store, userID, entities.TransactionTypeDeposit, "700")

		rebuilt, err := svc.RebuildBalance(ctx, userID)
		require.NoError(t, err)
		assert.True(t, rebuilt.Equal(decimal.NewFromInt(700)))
	})

	t.Run("negative ledger sum is refused", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := seedUser(store, "100")
		seedCompleted(store, userID, entities.TransactionTypeWithdrawal, "400")

		_, err := svc.RebuildBalance(ctx, userID)
		require.Error(t, err)
		assert.True(t, domainerrors.IsDataIntegrity(err))
		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(100)),
			"a broken ledger must not overwrite the cache")
	})
}
