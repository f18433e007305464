package profiles

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
		store.Profiles(),
		store.AdminLogsRepo(),
		store,
		pub,
		logger.New("error", "development"),
	)
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestAdjustFinancials(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("overwrites only the named fields", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)

		userID := uuid.New()
		store.SeedProfile(&entities.Profile{
			ID:      userID,
			Balance: decimal.NewFromInt(100),
			Profit:  decimal.NewFromInt(40),
			Bonus:   decimal.NewFromInt(10),
		})

		updated, err := svc.AdjustFinancials(ctx, adminID, userID, &entities.AdjustFinancialsRequest{
			Balance: decimalPtr("750"),
		}, "203.0.113.9")
		require.NoError(t, err)

		assert.True(t, updated.Balance.Equal(decimal.NewFromInt(750)))
		assert.True(t, updated.Profit.Equal(decimal.NewFromInt(40)), "untouched field moved")
		assert.True(t, updated.Bonus.Equal(decimal.NewFromInt(10)))

		logs := store.AdminLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, entities.AuditActionUpdateUserFinancials, logs[0].Action)
		assert.Equal(t, "750", logs[0].Details["balance"])
		assert.NotContains(t, logs[0].Details, "profit")

		assert.Len(t, pub.EventsOfType(entities.EventProfileChanged), 1)
	})

	t.Run("empty request is invalid", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := uuid.New()
		store.SeedProfile(&entities.Profile{ID: userID})

		_, err := svc.AdjustFinancials(ctx, adminID, userID, &entities.AdjustFinancialsRequest{}, "")
		assert.True(t, domainerrors.IsInvalidInput(err))
	})

	t.Run("negative override is refused", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())
		userID := uuid.New()
		store.SeedProfile(&entities.Profile{ID: userID, Balance: decimal.NewFromInt(100)})

		_, err := svc.AdjustFinancials(ctx, adminID, userID, &entities.AdjustFinancialsRequest{
			Balance: decimalPtr("-5"),
		}, "")
		assert.True(t, domainerrors.IsInvalidInput(err))
		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("unknown user", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())

		_, err := svc.AdjustFinancials(ctx, adminID, uuid.New(), &entities.AdjustFinancialsRequest{
			Balance: decimalPtr("100"),
		}, "")
		assert.True(t, domainerrors.IsNotFound(err))
	})

	t.Run("audit failure rolls back the override", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		userID := uuid.New()
		store.SeedProfile(&entities.Profile{ID: userID, Balance: decimal.NewFromInt(100)})

		store.FailNext("admin_logs.create", assert.AnError)

		_, err := svc.AdjustFinancials(ctx, adminID, userID, &entities.AdjustFinancialsRequest{
			Balance: decimalPtr("999"),
		}, "")
		require.Error(t, err)

		assert.True(t, store.Profile(userID).Balance.Equal(decimal.NewFromInt(100)),
			"override must roll back with the audit write")
		assert.Empty(t, pub.Events())
	})
}
