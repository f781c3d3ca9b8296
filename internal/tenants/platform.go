package tenants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

const (
	// PlatformTenantCode is the code of the singleton platform tenant.
	PlatformTenantCode = "__platform__"
	// RolePlatformAdmin marks platform administrators on platform memberships.
	RolePlatformAdmin = "PLATFORM_ADMIN"
)

// PlatformTenantID is the fixed id of the platform tenant.
var PlatformTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// PlatformService layers platform tenant semantics over tenants and memberships.
type PlatformService struct {
	tenants     TenantStore
	memberships MembershipStore
	tx          database.Transactor
	logger      *zap.Logger
}

// NewPlatformService creates a platform service.
func NewPlatformService(tenants TenantStore, memberships MembershipStore, tx database.Transactor, logger *zap.Logger) *PlatformService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlatformService{tenants: tenants, memberships: memberships, tx: tx, logger: logger}
}

// GetPlatformTenant returns the platform tenant.
func (s *PlatformService) GetPlatformTenant(ctx context.Context) (*models.Tenant, error) {
	t, err := s.tenants.GetByCode(ctx, PlatformTenantCode)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrPlatformNotInitialized
	}
	return t, err
}

// IsPlatformTenant reports whether tenantID is the platform tenant.
func (s *PlatformService) IsPlatformTenant(tenantID uuid.UUID) bool {
	return tenantID == PlatformTenantID
}

// IsPlatformMember reports whether the user is a member of the platform tenant.
func (s *PlatformService) IsPlatformMember(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.memberships.Exists(ctx, userID, PlatformTenantID)
}

// IsPlatformAdmin reports whether the user's platform membership holds the
// PLATFORM_ADMIN role.
func (s *PlatformService) IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	m, err := s.memberships.Find(ctx, userID, PlatformTenantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.HasRole(RolePlatformAdmin), nil
}

// AddPlatformMember makes the user a platform member with roles.
func (s *PlatformService) AddPlatformMember(ctx context.Context, userID uuid.UUID, roles []string) (*models.Membership, error) {
	m := &models.Membership{
		UserID:   userID,
		TenantID: PlatformTenantID,
		Roles:    models.NormalizeRoles(roles),
		Status:   models.StatusActive,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.memberships.Exists(ctx, userID, PlatformTenantID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.ErrAlreadyMember
		}
		return s.memberships.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("platform member added", zap.String("user_id", userID.String()), zap.Strings("roles", m.Roles))
	return m, nil
}
