package adminauth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories/memstore"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

const testSecret = "test-signing-secret"

func newTestService(store *memstore.Store) *Service {
	return NewService(
		store.AdminUsers(),
		store.AdminLogsRepo(),
		logger.New("error", "development"),
		testSecret,
		time.Hour,
		"simpleprofit",
	)
}

func seedAdmin(t *testing.T, store *memstore.Store, email, password string) uuid.UUID {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id := uuid.New()
	require.NoError(t, store.AdminUsers().Create(context.Background(), &entities.AdminUser{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entities.AdminRoleAdmin,
	}))
	return id
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a role-scoped token", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)
		adminID := seedAdmin(t, store, "ops@example.com", "s3cret")

		result, err := svc.Login(ctx, "ops@example.com", "s3cret", "203.0.113.9")
		require.NoError(t, err)
		assert.Equal(t, adminID, result.Admin.ID)
		assert.True(t, result.ExpiresAt.After(time.Now()))

		parsed, err := jwt.Parse(result.Token, func(tok *jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, adminID.String(), claims["sub"])
		assert.Equal(t, string(entities.AdminRoleAdmin), claims["role"])
		assert.Equal(t, "simpleprofit", claims["iss"])

		logs := store.AdminLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, entities.AuditActionAdminLogin, logs[0].Action)
	})

	t.Run("wrong password", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)
		seedAdmin(t, store, "ops@example.com", "s3cret")

		_, err := svc.Login(ctx, "ops@example.com", "wrong", "")
		assert.True(t, domainerrors.IsUnauthorized(err))
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)
		seedAdmin(t, store, "ops@example.com", "s3cret")

		errUnknown := func() error {
			_, err := svc.Login(ctx, "nobody@example.com", "s3cret", "")
			return err
		}()
		errWrongPass := func() error {
			_, err := svc.Login(ctx, "ops@example.com", "wrong", "")
			return err
		}()

		assert.True(t, domainerrors.IsUnauthorized(errUnknown))
		assert.EqualError(t, errUnknown, errWrongPass.Error())
	})
}

func TestEnsureSeedAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the bootstrap account once", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)

		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		require.NoError(t, err)

		require.NoError(t, svc.EnsureSeedAccount(ctx, "ops@example.com", string(hash)))

		first, err := store.AdminUsers().GetByEmail(ctx, "ops@example.com")
		require.NoError(t, err)

		// Second run is a no-op; the existing account keeps its ID.
		require.NoError(t, svc.EnsureSeedAccount(ctx, "ops@example.com", string(hash)))
		second, err := store.AdminUsers().GetByEmail(ctx, "ops@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		// The seeded credential actually works.
		_, err = svc.Login(ctx, "ops@example.com", "s3cret", "")
		assert.NoError(t, err)
	})

	t.Run("blank config skips seeding", func(t *testing.T) {
		store := memstore.New()
		svc := newTestService(store)

		require.NoError(t, svc.EnsureSeedAccount(ctx, "", ""))
		_, err := store.AdminUsers().GetByEmail(ctx, "ops@example.com")
		assert.True(t, domainerrors.IsNotFound(err))
	})
}
