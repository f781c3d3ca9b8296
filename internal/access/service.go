// Package access implements tenant-scoped roles, permissions and their
// bindings. Every operation acts in the tenant bound to the context.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/internal/tenantctx"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

// Store is the persistence contract of the access service.
type Store interface {
	RoleCodeExists(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	CreateRole(ctx context.Context, role *models.Role) error
	GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error)
	ListRoles(ctx context.Context, tenantID uuid.UUID) ([]models.Role, error)
	PermissionCodeExists(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	CreatePermission(ctx context.Context, p *models.Permission) error
	GetPermission(ctx context.Context, id uuid.UUID) (*models.Permission, error)
	ListPermissions(ctx context.Context, tenantID uuid.UUID) ([]models.Permission, error)
	BindingExists(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error)
	CreateBinding(ctx context.Context, rp *models.RolePermission) error
	ListBindings(ctx context.Context, roleID uuid.UUID) ([]models.RolePermission, error)
}

// Service manages RBAC entities of the current tenant.
type Service struct {
	store  Store
	tx     database.Transactor
	logger *zap.Logger
}

// NewService creates an access service.
func NewService(store Store, tx database.Transactor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tx: tx, logger: logger}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// CreateRole creates a role in the current tenant.
func (s *Service) CreateRole(ctx context.Context, code, name, description string) (*models.Role, error) {
	tenantID, err := tenantctx.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "role code is required")
	}
	role := &models.Role{TenantID: tenantID, Code: code, Name: strings.TrimSpace(name), Description: optional(description)}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.store.RoleCodeExists(ctx, tenantID, code)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Newf(apperr.KindDuplicateCode, "role code %q already exists", code)
		}
		return s.store.CreateRole(ctx, role)
	})
	if database.IsUniqueViolation(err) {
		return nil, apperr.Wrap(err, apperr.KindDuplicateCode, "role code already exists")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("role created", zap.String("tenant_id", tenantID.String()), zap.String("code", code))
	return role, nil
}

// CreatePermission creates a permission in the current tenant.
func (s *Service) CreatePermission(ctx context.Context, code, description string) (*models.Permission, error) {
	tenantID, err := tenantctx.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "permission code is required")
	}
	p := &models.Permission{TenantID: tenantID, Code: code, Description: optional(description)}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.store.PermissionCodeExists(ctx, tenantID, code)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Newf(apperr.KindDuplicateCode, "permission code %q already exists", code)
		}
		return s.store.CreatePermission(ctx, p)
	})
	if database.IsUniqueViolation(err) {
		return nil, apperr.Wrap(err, apperr.KindDuplicateCode, "permission code already exists")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// BindPermission grants a permission to a role. Both must belong to the
// current tenant, whatever tenant the ids were taken from.
func (s *Service) BindPermission(ctx context.Context, roleID, permissionID uuid.UUID) (*models.RolePermission, error) {
	tenantID, err := tenantctx.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	rp := &models.RolePermission{RoleID: roleID, PermissionID: permissionID}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		role, err := s.store.GetRole(ctx, roleID)
		if err != nil {
			return err
		}
		perm, err := s.store.GetPermission(ctx, permissionID)
		if err != nil {
			return err
		}
		if role.TenantID != tenantID || perm.TenantID != tenantID {
			return apperr.ErrTenantMismatch
		}
		bound, err := s.store.BindingExists(ctx, roleID, permissionID)
		if err != nil {
			return err
		}
		if bound {
			return apperr.ErrAlreadyBound
		}
		return s.store.CreateBinding(ctx, rp)
	})
	if database.IsUniqueViolation(err) {
		return nil, apperr.Wrap(err, apperr.KindAlreadyBound, "permission already bound")
	}
	if err != nil {
		return nil, err
	}
	return rp, nil
}

// PermissionsOfRole returns the bindings of a role in the current tenant.
func (s *Service) PermissionsOfRole(ctx context.Context, roleID uuid.UUID) ([]models.RolePermission, error) {
	tenantID, err := tenantctx.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	role, err := s.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.TenantID != tenantID {
		return nil, apperr.ErrTenantMismatch
	}
	list, err := s.store.ListBindings(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	return list, nil
}

// ListRoles returns the roles of the current tenant.
func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	tenantID, err := tenantctx.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListRoles(ctx, tenantID)
}

// ListPermissions returns the permissions of the current tenant.
func (s *Service) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	tenantID, err := tenantctx.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListPermissions(ctx, tenantID)
}
