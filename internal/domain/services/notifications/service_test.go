package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories/memstore"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

func newTestService(store *memstore.Store, pub *memstore.RecordingPublisher) *Service {
	return NewService(
		store.Notifications(),
		store.Profiles(),
		store.Settings(),
		store.AdminLogsRepo(),
		store,
		pub,
		logger.New("error", "development"),
	)
}

func seedUsers(store *memstore.Store, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
		store.SeedProfile(&entities.Profile{ID: ids[i]})
	}
	return ids
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("fans out to every user", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		users := seedUsers(store, 3)

		sent, err := svc.Broadcast(ctx, adminID, &entities.BroadcastRequest{
			Title:   "Maintenance window",
			Message: "Withdrawals paused Saturday 02:00 UTC.",
		}, "203.0.113.9")
		require.NoError(t, err)
		assert.Equal(t, 3, sent)

		for _, userID := range users {
			list, err := svc.ListByUser(ctx, userID, 10, 0)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "Maintenance window", list[0].Title)
			assert.False(t, list[0].Read)
		}

		logs := store.AdminLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, entities.AuditActionBroadcast, logs[0].Action)
		assert.Equal(t, 3, logs[0].Details["recipients"])

		assert.Len(t, pub.EventsOfType(entities.EventNotificationCreated), 3)
	})

	t.Run("no users means nothing to send", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)

		sent, err := svc.Broadcast(ctx, adminID, &entities.BroadcastRequest{
			Title:   "Hello",
			Message: "World",
		}, "")
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, store.AdminLogs())
		assert.Empty(t, pub.Events())
	})

	t.Run("batch failure rolls back, no events escape", func(t *testing.T) {
		store := memstore.New()
		pub := memstore.NewRecordingPublisher()
		svc := newTestService(store, pub)
		users := seedUsers(store, 2)

		store.FailNext("notifications.create_batch", assert.AnError)

		_, err := svc.Broadcast(ctx, adminID, &entities.BroadcastRequest{
			Title:   "Hello",
			Message: "World",
		}, "")
		require.Error(t, err)

		for _, userID := range users {
			list, err := svc.ListByUser(ctx, userID, 10, 0)
			require.NoError(t, err)
			assert.Empty(t, list)
		}
		assert.Empty(t, store.AdminLogs())
		assert.Empty(t, pub.Events())
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newTestService(store, memstore.NewRecordingPublisher())

	owner := uuid.New()
	stranger := uuid.New()
	store.SeedProfile(&entities.Profile{ID: owner})

	require.NoError(t, store.Notifications().CreateBatch(ctx, []*entities.Notification{{
		ID:      uuid.New(),
		UserID:  owner,
		Title:   "Deposit approved",
		Message: "Your deposit has been credited.",
	}}))

	list, err := svc.ListByUser(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	// Only the owner may acknowledge.
	err = svc.MarkRead(ctx, id, stranger)
	assert.True(t, domainerrors.IsNotFound(err))

	require.NoError(t, svc.MarkRead(ctx, id, owner))

	list, err = svc.ListByUser(ctx, owner, 10, 0)
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}

func TestDepositWallets(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("unset document reads as not found", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())

		_, err := svc.GetDepositWallets(ctx)
		assert.True(t, domainerrors.IsNotFound(err))
	})

	t.Run("update then read back", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store, memstore.NewRecordingPublisher())

		wallets := map[string]interface{}{
			"BTC":  "bc1qexample",
			"USDT": "TExampleAddr",
		}
		setting, err := svc.UpdateDepositWallets(ctx, adminID, wallets, "")
		require.NoError(t, err)
		assert.Equal(t, entities.SettingKeyDepositWallets, setting.Key)

		got, err := svc.GetDepositWallets(ctx)
		require.NoError(t, err)
		assert.Equal(t, "bc1qexample", got.Value["BTC"])

		logs := store.AdminLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, entities.AuditActionUpdateSettings, logs[0].Action)
	})
}
