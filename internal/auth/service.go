package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/internal/tenantctx"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/utils"
)

// Identities resolves login identities and their users.
type Identities interface {
	FindIdentity(ctx context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (*models.UserIdentity, error)
	FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Revoker records revoked token ids.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

var errBadCredentials = apperr.New(apperr.KindUnauthorized, "invalid identifier or password")

// Service authenticates LOCAL_PASSWORD identities and manages session tokens.
type Service struct {
	identities Identities
	encoder    utils.PasswordEncoder
	jwt        *JWTService
	revoker    Revoker
	logger     *zap.Logger
}

// NewService creates an auth service.
func NewService(identities Identities, encoder utils.PasswordEncoder, jwt *JWTService, revoker Revoker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{identities: identities, encoder: encoder, jwt: jwt, revoker: revoker, logger: logger}
}

// Login verifies the password of identifier in the context's tenant and
// issues a session token.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	tenantID, err := tenantctx.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	ident, err := s.identities.FindIdentity(ctx, tenantID, identifier, models.IdentityLocalPassword)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if ident.Secret == nil {
		return nil, errBadCredentials
	}

	user, err := s.identities.FindByID(ctx, ident.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.TenantID != tenantID || user.Status != models.StatusActive {
		s.logger.Info("login rejected",
			zap.String("user_id", user.ID.String()), zap.String("status", user.Status))
		return nil, errBadCredentials
	}
	if !s.encoder.Matches(password, *ident.Secret) {
		return nil, errBadCredentials
	}

	token, claims, err := s.jwt.Generate(user.ID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	ttl := s.jwt.Remaining(claims)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	s.logger.Info("session revoked", zap.String("user_id", claims.UserID.String()), zap.String("jti", claims.ID))
	return nil
}
