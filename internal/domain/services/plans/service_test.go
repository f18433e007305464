package plans

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

func newTestService(store *memstore.Store) *Service {
	return NewService(
		store.Plans(),
		store.AdminLogsRepo(),
		store,
		logger.New("error", "development"),
	)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newTestService(store)
	adminID := uuid.New()

	plan, err := svc.Create(ctx, adminID, &entities.CreatePlanRequest{
		Name:         "Starter",
		MinDeposit:   decimal.NewFromInt(50),
		MaxDeposit:   decimal.NewFromInt(1000),
		DailyReturn:  decimal.RequireFromString("0.5"),
		DurationDays: 14,
	}, "203.0.113.9")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, plan.ID)

	got, err := svc.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Starter", got.Name)

	logs := store.AdminLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.AuditActionCreatePlan, logs[0].Action)
	assert.Equal(t, plan.ID.String(), logs[0].Details["plan_id"])
}

func TestCreateRollback(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newTestService(store)

	store.FailNext("admin_logs.create", assert.AnError)

	plan, err := svc.Create(ctx, uuid.New(), &entities.CreatePlanRequest{
		Name:         "Starter",
		MinDeposit:   decimal.NewFromInt(50),
		MaxDeposit:   decimal.NewFromInt(1000),
		DurationDays: 14,
	}, "")
	require.Error(t, err)
	assert.Nil(t, plan)

	// The plan row vanished with the failed audit write.
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newTestService(store)
	adminID := uuid.New()

	plan := &entities.Plan{
		ID:           uuid.New(),
		Name:         "Growth",
		MinDeposit:   decimal.NewFromInt(100),
		MaxDeposit:   decimal.NewFromInt(5000),
		DailyReturn:  decimal.NewFromInt(1),
		DurationDays: 30,
	}
	store.SeedPlan(plan)

	newRate := decimal.RequireFromString("1.5")
	updated, err := svc.Update(ctx, adminID, plan.ID, &entities.UpdatePlanRequest{
		DailyReturn: &newRate,
	}, "")
	require.NoError(t, err)

	// Only the named field moves.
	assert.True(t, updated.DailyReturn.Equal(newRate))
	assert.Equal(t, "Growth", updated.Name)
	assert.Equal(t, 30, updated.DurationDays)

	logs := store.AdminLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.AuditActionUpdatePlan, logs[0].Action)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("unreferenced plan is removed", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)
		plan := &entities.Plan{ID: uuid.New(), Name: "Growth", DurationDays: 30}
		store.SeedPlan(plan)

		require.NoError(t, svc.Delete(ctx, adminID, plan.ID, ""))

		_, err := svc.Get(ctx, plan.ID)
		assert.True(t, domainerrors.IsNotFound(err))

		logs := store.AdminLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, entities.AuditActionDeletePlan, logs[0].Action)
	})

	t.Run("refused while active investments reference it", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)
		plan := &entities.Plan{ID: uuid.New(), Name: "Growth", DurationDays: 30}
		store.SeedPlan(plan)
		store.SeedInvestment(&entities.Investment{
			ID:     uuid.New(),
			UserID: uuid.New(),
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(500),
			Status: entities.InvestmentStatusActive,
		})

		err := svc.Delete(ctx, adminID, plan.ID, "")
		assert.True(t, domainerrors.IsInvalidState(err))

		// Plan survives, nothing logged.
		_, err = svc.Get(ctx, plan.ID)
		require.NoError(t, err)
		assert.Empty(t, store.AdminLogs())
	})

	t.Run("completed investments do not block deletion", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)
		plan := &entities.Plan{ID: uuid.New(), Name: "Growth", DurationDays: 30}
		store.SeedPlan(plan)
		store.SeedInvestment(&entities.Investment{
			ID:     uuid.New(),
			UserID: uuid.New(),
			PlanID: plan.ID,
			Amount: decimal.NewFromInt(500),
			Status: entities.InvestmentStatusCompleted,
		})

		require.NoError(t, svc.Delete(ctx, adminID, plan.ID, ""))
	})
}
