// Package adminauth authenticates back-office accounts and issues their
// access tokens. User-facing authentication lives with the identity
// provider; only admin credentials are verified here.
package adminauth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
)

// Service verifies admin credentials and issues JWTs
type Service struct {
	adminUserRepo repositories.AdminUserRepository
	adminLogRepo  repositories.AdminLogRepository
	logger        *logger.Logger
	jwtSecret     []byte
	tokenTTL      time.Duration
	issuer        string
}

// NewService creates a new admin auth service
func NewService(
	adminUserRepo repositories.AdminUserRepository,
	adminLogRepo repositories.AdminLogRepository,
	logger *logger.Logger,
	jwtSecret string,
	tokenTTL time.Duration,
	issuer string,
) *Service {
	return &Service{
		adminUserRepo: adminUserRepo,
		adminLogRepo:  adminLogRepo,
		logger:        logger,
		jwtSecret:     []byte(jwtSecret),
		tokenTTL:      tokenTTL,
		issuer:        issuer,
	}
}

// LoginResult carries the issued token and its subject
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Admin     *entities.AdminUser `json:"admin"`
}

// Login verifies the credential against the stored bcrypt hash and
// issues a role-scoped token. Wrong email and wrong password return the
// same error, so the response does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	admin, err := s.adminUserRepo.GetByEmail(ctx, email)
	if err != nil {
		if domainerrors.IsNotFound(err) {
			return nil, domainerrors.UnauthorizedError("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Admin login failed", "email", email, "ip", ip)
		return nil, domainerrors.UnauthorizedError("invalid credentials")
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  admin.ID.String(),
		"role": string(admin.Role),
		"iss":  s.issuer,
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, domainerrors.InternalError("sign token", err)
	}

	if err := s.adminLogRepo.Create(ctx, &entities.AdminLog{
		ID:        uuid.New(),
		AdminID:   admin.ID,
		Action:    entities.AuditActionAdminLogin,
		IPAddress: ip,
	}); err != nil {
		s.logger.Error("Failed to audit admin login", "error", err)
	}

	s.logger.Info("Admin logged in", "admin_id", admin.ID, "ip", ip)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     admin,
	}, nil
}

// EnsureSeedAccount creates the configured bootstrap admin account if no
// account with that email exists yet. The hash comes from config; this
// service never sees a plaintext admin password at rest.
func (s *Service) EnsureSeedAccount(ctx context.Context, email, passwordHash string) error {
	if email == "" || passwordHash == "" {
		return nil
	}

	_, err := s.adminUserRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !domainerrors.IsNotFound(err) {
		return err
	}

	admin := &entities.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         entities.AdminRoleAdmin,
	}
	if err := s.adminUserRepo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("Seed admin account created", "email", email)
	return nil
}
