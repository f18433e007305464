package investing

import (
	"context"
	"errors"
	"testing"
	"time"

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
		store.Investments(),
		store.Plans(),
		store.Profiles(),
		store.TransactionsRepo(),
		store,
		pub,
		logger.New("error", "development"),
	)
}

func seedUserAndPlan(store *memstore.Store, balance string) (uuid.UUID, *entities.Plan) {
	userID := uuid.New()
	store.SeedProfile(&entities.Profile{
		ID:      userID,
		Balance: decimal.RequireFromString(balance),
	})
	plan := &entities.Plan{
		ID:           uuid.New(),
		Name:         "Growth",
		MinDeposit:   decimal.NewFromInt(100),
		MaxDeposit:   decimal.NewFromInt(5000),
		DailyReturn:  decimal.NewFromInt(1),
		DurationDays: 30,
	}
	store.SeedPlan(plan)
	return userID, plan
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("debits balance and records position and ledger entry", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID, plan := seedUserAndPlan(store, "1000")

		inv, err := svc.Subscribe(ctx, userID, &entities.SubscribeRequest{
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(400),
		})
		require.NoError(t, err)

		assert.Equal(t, entities.InvestmentStatusActive, inv.Status)
		assert.Equal(t, inv.StartDate.AddDate(0, 0, 30), inv.EndDate)

		profile := store.Profile(userID)
		assert.True(t, profile.Balance.Equal(decimal.NewFromInt(600)), "got %s", profile.Balance)

		txs := store.Transactions()
		require.Len(t, txs, 1)
		assert.Equal(t, entities.TransactionTypeInvestment, txs[0].Type)
		assert.Equal(t, entities.TransactionStatusCompleted, txs[0].Status)
		assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(400)))

		assert.Len(t, pub.EventsOfType(entities.EventProfileChanged), 1)
		assert.Len(t, pub.EventsOfType(entities.EventTransactionChanged), 1)
		assert.Len(t, pub.EventsOfType(entities.EventInvestmentChanged), 1)
	})

	t.Run("rejects amount below plan minimum", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID, plan := seedUserAndPlan(store, "1000")

		_, err := svc.Subscribe(ctx, userID, &entities.SubscribeRequest{
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(50),
		})
		assert.True(t, domainerrors.IsInvalidInput(err))
	})

	t.Run("rejects amount above plan maximum", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID, plan := seedUserAndPlan(store, "100000")

		_, err := svc.Subscribe(ctx, userID, &entities.SubscribeRequest{
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(6000),
		})
		assert.True(t, domainerrors.IsInvalidInput(err))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID, plan := seedUserAndPlan(store, "1000")

		_, err := svc.Subscribe(ctx, userID, &entities.SubscribeRequest{
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(-400),
		})
		assert.True(t, domainerrors.IsInvalidInput(err))
	})

	t.Run("insufficient balance leaves everything untouched", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID, plan := seedUserAndPlan(store, "300")

		_, err := svc.Subscribe(ctx, userID, &entities.SubscribeRequest{
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(400),
		})
		assert.True(t, domainerrors.IsInsufficientFunds(err))

		profile := store.Profile(userID)
		assert.True(t, profile.Balance.Equal(decimal.NewFromInt(300)))
		assert.Empty(t, store.Transactions())
		assert.Empty(t, pub.Events())
	})

	t.Run("ledger failure rolls back the debit and the position", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID, plan := seedUserAndPlan(store, "1000")

		store.FailNext("transactions.create", errors.New("connection reset"))

		inv, err := svc.Subscribe(ctx, userID, &entities.SubscribeRequest{
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(400),
		})
		require.Error(t, err)
		assert.Nil(t, inv)

		// No partial state: the debit and the investment row both
		// disappeared with the failed transaction.
		profile := store.Profile(userID)
		assert.True(t, profile.Balance.Equal(decimal.NewFromInt(1000)),
			"debit must roll back, got %s", profile.Balance)
		assert.Empty(t, store.Transactions())
		assert.Empty(t, pub.Events())
	})
}

func TestExpireMatured(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	store := memstore.New()
	pub := memstore.NewRecordingPublisher()
	svc := newTestService(store, pub)
	userID, plan := seedUserAndPlan(store, "0")

	matured := &entities.Investment{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    plan.ID,
		Amount:    decimal.NewFromInt(1000),
		StartDate: now.AddDate(0, 0, -40),
		EndDate:   now.AddDate(0, 0, -10),
		Status:    entities.InvestmentStatusActive,
	}
	running := &entities.Investment{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    plan.ID,
		Amount:    decimal.NewFromInt(1000),
		StartDate: now.AddDate(0, 0, -5),
		EndDate:   now.AddDate(0, 0, 25),
		Status:    entities.InvestmentStatusActive,
	}
	store.SeedInvestment(matured)
	store.SeedInvestment(running)

	closed, err := svc.ExpireMatured(ctx, now, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	got := store.Investment(matured.ID)
	assert.Equal(t, entities.InvestmentStatusCompleted, got.Status)
	// Final return locked in at full term: 1000 * 1% * 30
	assert.True(t, got.TotalReturn.Equal(decimal.NewFromInt(300)), "got %s", got.TotalReturn)

	assert.Equal(t, entities.InvestmentStatusActive, store.Investment(running.ID).Status)
	assert.Len(t, pub.EventsOfType(entities.EventInvestmentChanged), 1)
}
