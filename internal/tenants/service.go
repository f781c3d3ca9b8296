// Package tenants manages tenants, their organization forests and the
// singleton platform tenant.
package tenants

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

// RootUnitName is the name of the unit created with every tenant.
const RootUnitName = "Root"

// TenantStore persists tenants.
type TenantStore interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByCode(ctx context.Context, code string) (*models.Tenant, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, t *models.Tenant) error
	List(ctx context.Context) ([]models.Tenant, error)
	ListExcludingType(ctx context.Context, typ models.TenantType) ([]models.Tenant, error)
}

// Service handles the tenant lifecycle.
type Service struct {
	tenants     TenantStore
	units       OrgUnitStore
	memberships MembershipStore
	tx          database.Transactor
	logger      *zap.Logger
}

// NewService creates a tenant service.
func NewService(tenants TenantStore, units OrgUnitStore, memberships MembershipStore, tx database.Transactor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tenants: tenants, units: units, memberships: memberships, tx: tx, logger: logger}
}

// CreateTenant creates an ACTIVE tenant and its root organization unit in
// one transaction. An empty type means CUSTOMER.
func (s *Service) CreateTenant(ctx context.Context, code, name string, typ models.TenantType) (*models.Tenant, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "code and name are required")
	}
	if typ == "" {
		typ = models.TenantTypeCustomer
	}
	if !typ.Valid() {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown tenant type %q", typ)
	}

	t := &models.Tenant{Code: code, Name: name, Type: typ, Status: models.StatusActive}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.tenants.CodeExists(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Newf(apperr.KindDuplicateTenant, "tenant code %q already exists", code)
		}
		if err := s.tenants.Create(ctx, t); err != nil {
			return err
		}
		return s.units.Create(ctx, &models.OrganizationUnit{
			TenantID:  t.ID,
			Name:      RootUnitName,
			Status:    models.StatusActive,
			SortOrder: 0,
		})
	})
	if database.IsUniqueViolation(err) {
		return nil, apperr.Wrap(err, apperr.KindDuplicateTenant, "tenant code already exists")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("tenant created",
		zap.String("tenant_id", t.ID.String()), zap.String("code", code), zap.String("type", string(typ)))
	return t, nil
}

// UpdateTenant changes the given fields only; nil arguments are left as is.
func (s *Service) UpdateTenant(ctx context.Context, id uuid.UUID, name, status *string) (*models.Tenant, error) {
	var t *models.Tenant
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if t, err = s.tenants.GetByID(ctx, id); err != nil {
			return err
		}
		if name != nil {
			t.Name = strings.TrimSpace(*name)
		}
		if status != nil {
			t.Status = strings.TrimSpace(*status)
		}
		return s.tenants.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DisableTenant sets the tenant status to DISABLED.
func (s *Service) DisableTenant(ctx context.Context, id uuid.UUID) error {
	status := models.StatusDisabled
	_, err := s.UpdateTenant(ctx, id, nil, &status)
	return err
}

// ListTenants returns all tenants including the platform tenant.
func (s *Service) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.List(ctx)
}

// ListBusinessTenants returns all tenants except those of type PLATFORM.
func (s *Service) ListBusinessTenants(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.ListExcludingType(ctx, models.TenantTypePlatform)
}

// FindByID returns a tenant by id.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenants.GetByID(ctx, id)
}

// SwitchTenant checks that userID may act in tenantID and returns the tenant.
func (s *Service) SwitchTenant(ctx context.Context, tenantID, userID uuid.UUID) (*models.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberships.Exists(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.New(apperr.KindForbidden, "not a member of the tenant")
	}
	return t, nil
}
