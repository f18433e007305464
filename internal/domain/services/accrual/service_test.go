package accrual

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories/memstore"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

func newTestService(store *memstore.Store, pub *memstore.RecordingPublisher) *Service {
	return NewService(
		store.Investments(),
		store.Plans(),
		store.Profiles(),
		store,
		pub,
		logger.New("error", "development"),
	)
}

func seedPlan(store *memstore.Store, dailyReturn string, durationDays int) *entities.Plan {
	plan := &entities.Plan{
		ID:           uuid.New(),
		Name:         "Starter",
		MinDeposit:   decimal.NewFromInt(100),
		MaxDeposit:   decimal.NewFromInt(10000),
		DailyReturn:  decimal.RequireFromString(dailyReturn),
		DurationDays: durationDays,
	}
	store.SeedPlan(plan)
	return plan
}

func seedInvestment(store *memstore.Store, userID uuid.UUID, plan *entities.Plan, amount string, start time.Time) *entities.Investment {
	inv := &entities.Investment{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    plan.ID,
		Amount:    decimal.RequireFromString(amount),
		StartDate: start,
		EndDate:   start.AddDate(0, 0, plan.DurationDays),
		Status:    entities.InvestmentStatusActive,
	}
	store.SeedInvestment(inv)
	return inv
}

func TestComputeProfit(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plan := &entities.Plan{
		ID:           uuid.New(),
		DailyReturn:  decimal.RequireFromString("1.5"),
		DurationDays: 30,
	}
	inv := &entities.Investment{
		Amount:    decimal.NewFromInt(1000),
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 30),
	}

	t.Run("whole days only", func(t *testing.T) {
		// 2 days 18 hours in: only 2 whole days earn
		asOf := start.Add(66 * time.Hour)
		got := ComputeProfit(inv, plan, asOf)
		assert.True(t, got.Equal(decimal.NewFromInt(30)), "got %s", got)
	})

	t.Run("exact day boundary counts", func(t *testing.T) {
		got := ComputeProfit(inv, plan, start.AddDate(0, 0, 10))
		assert.True(t, got.Equal(decimal.NewFromInt(150)), "got %s", got)
	})

	t.Run("clamps at plan duration", func(t *testing.T) {
		// 90 days in on a 30-day plan: earns 30 days, not 90
		got := ComputeProfit(inv, plan, start.AddDate(0, 0, 90))
		assert.True(t, got.Equal(decimal.NewFromInt(450)), "got %s", got)
	})

	t.Run("future start earns nothing", func(t *testing.T) {
		got := ComputeProfit(inv, plan, start.Add(-48*time.Hour))
		assert.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("zero rate earns nothing", func(t *testing.T) {
		flat := &entities.Plan{DailyReturn: decimal.Zero, DurationDays: 30}
		got := ComputeProfit(inv, flat, start.AddDate(0, 0, 10))
		assert.True(t, got.IsZero(), "got %s", got)
	})
}

func TestAggregateProfit(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("sums active investments only", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())

		plan := seedPlan(store, "1", 30)
		seedInvestment(store, userID, plan, "1000", start)
		seedInvestment(store, userID, plan, "500", start)

		completed := seedInvestment(store, userID, plan, "2000", start)
		require.NoError(t, store.Investments().UpdateStatus(ctx, completed.ID, entities.InvestmentStatusCompleted))

		// 5 days: 1000*1%*5 + 500*1%*5 = 75; the completed 2000 contributes nothing
		got, err := svc.AggregateProfit(ctx, userID, start.AddDate(0, 0, 5))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(75)), "got %s", got)
	})

	t.Run("no investments aggregates to zero", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())

		got, err := svc.AggregateProfit(ctx, userID, start)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("skips investment with missing plan", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())

		plan := seedPlan(store, "1", 30)
		orphaned := seedPlan(store, "2", 30)
		seedInvestment(store, userID, plan, "1000", start)
		seedInvestment(store, userID, orphaned, "1000", start)
		store.DeletePlanRow(orphaned.ID)

		got, err := svc.AggregateProfit(ctx, userID, start.AddDate(0, 0, 5))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(50)), "orphaned position must contribute zero, got %s", got)
	})
}

func TestAccrue(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()

	setup := func() (*memstore.Store, *memstore.RecordingPublisher, *Service) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		store.SeedProfile(&entities.Profile{ID: userID, Balance: decimal.NewFromInt(500)})
		plan := seedPlan(store, "1", 30)
		seedInvestment(store, userID, plan, "1000", start)
		return store, pub, svc
	}

	t.Run("writes profit through and emits one event", func(t *testing.T) {
		store, pub, svc := setup()

		require.NoError(t, svc.Accrue(ctx, userID, start.AddDate(0, 0, 5)))

		profile := store.Profile(userID)
		assert.True(t, profile.Profit.Equal(decimal.NewFromInt(50)), "got %s", profile.Profit)
		assert.Len(t, pub.EventsOfType(entities.EventProfileChanged), 1)
	})

	t.Run("rerun with same clock is a no-op", func(t *testing.T) {
		store, pub, svc := setup()
		asOf := start.AddDate(0, 0, 5)

		require.NoError(t, svc.Accrue(ctx, userID, asOf))
		require.NoError(t, svc.Accrue(ctx, userID, asOf))

		profile := store.Profile(userID)
		assert.True(t, profile.Profit.Equal(decimal.NewFromInt(50)))
		assert.Len(t, pub.EventsOfType(entities.EventProfileChanged), 1,
			"unchanged value must not emit a second event")
	})

	t.Run("balance is never touched", func(t *testing.T) {
		store, _, svc := setup()

		require.NoError(t, svc.Accrue(ctx, userID, start.AddDate(0, 0, 5)))

		profile := store.Profile(userID)
		assert.True(t, profile.Balance.Equal(decimal.NewFromInt(500)))
	})
}

func TestAccrueAll(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	store := memstore.New()
	pub := memstore.NewRecordingPublisher()
	svc := newTestService(store, pub)

	plan := seedPlan(store, "1", 30)

	userA := uuid.New()
	userB := uuid.New()
	store.SeedProfile(&entities.Profile{ID: userA, Balance: decimal.Zero})
	store.SeedProfile(&entities.Profile{ID: userB, Balance: decimal.Zero})
	seedInvestment(store, userA, plan, "1000", start)
	seedInvestment(store, userB, plan, "2000", start)

	failures, err := svc.AccrueAll(ctx, start.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Zero(t, failures)

	assert.True(t, store.Profile(userA).Profit.Equal(decimal.NewFromInt(100)))
	assert.True(t, store.Profile(userB).Profit.Equal(decimal.NewFromInt(200)))
}

func TestDailySeries(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	asOf := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	store := memstore.New()
	svc := newTestService(store, memstore.NewRecordingPublisher())

	plan := seedPlan(store, "1", 365)
	// Started mid-window: days before the start contribute zero
	startDate := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	seedInvestment(store, userID, plan, "1000", startDate)

	series, err := svc.DailySeries(ctx, userID, 30, asOf)
	require.NoError(t, err)
	require.Len(t, series, 30)

	// Oldest first, one calendar day apart
	for i := 1; i < len(series); i++ {
		assert.Equal(t, series[i-1].Date.AddDate(0, 0, 1), series[i].Date)
	}

	// Before the investment started, profit is zero
	assert.True(t, series[0].Profit.IsZero())

	// Last point: 11 whole days elapsed by Mar 31 -> 110
	last := series[len(series)-1]
	assert.True(t, last.Profit.Equal(decimal.NewFromInt(110)), "got %s", last.Profit)

	// Series never decreases for a single active position
	for i := 1; i < len(series); i++ {
		assert.False(t, series[i].Profit.LessThan(series[i-1].Profit))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	store := memstore.New()
	svc := newTestService(store, memstore.NewRecordingPublisher())

	plan := seedPlan(store, "1", 30)
	seedInvestment(store, userID, plan, "1000", start)
	seedInvestment(store, userID, plan, "3000", start)

	stats, err := svc.Stats(ctx, userID, 30, start.AddDate(0, 0, 10))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ActiveInvestments)
	assert.True(t, stats.TotalInvested.Equal(decimal.NewFromInt(4000)))
	assert.True(t, stats.CurrentProfit.Equal(decimal.NewFromInt(400)))
	// 400 / 4000 * 100 = 10%
	assert.True(t, stats.TotalROI.Equal(decimal.NewFromInt(10)), "got %s", stats.TotalROI)
	assert.Len(t, stats.DailyProfits, 30)
}
