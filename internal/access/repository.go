package access

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

// Repository handles role, permission and binding persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an access repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RoleCodeExists reports whether the tenant already has a role with code.
func (r *Repository) RoleCodeExists(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM roles WHERE tenant_id = $1 AND code = $2)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, code).Scan(&ok)
	return ok, err
}

// CreateRole inserts role and fills its generated fields.
func (r *Repository) CreateRole(ctx context.Context, role *models.Role) error {
	const q = `INSERT INTO roles (tenant_id, code, name, description) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return database.Conn(ctx, r.pool).QueryRow(ctx, q, role.TenantID, role.Code, role.Name, role.Description).
		Scan(&role.ID, &role.CreatedAt)
}

// GetRole returns a role by id in any tenant.
func (r *Repository) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	const q = `SELECT id, tenant_id, code, name, description, created_at FROM roles WHERE id = $1`
	var role models.Role
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, id).
		Scan(&role.ID, &role.TenantID, &role.Code, &role.Name, &role.Description, &role.CreatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "role not found")
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles returns the tenant's roles ordered by code.
func (r *Repository) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]models.Role, error) {
	const q = `SELECT id, tenant_id, code, name, description, created_at FROM roles WHERE tenant_id = $1 ORDER BY code`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Code, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

// PermissionCodeExists reports whether the tenant already has a permission with code.
func (r *Repository) PermissionCodeExists(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM permissions WHERE tenant_id = $1 AND code = $2)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, code).Scan(&ok)
	return ok, err
}

// CreatePermission inserts p and fills its generated fields.
func (r *Repository) CreatePermission(ctx context.Context, p *models.Permission) error {
	const q = `INSERT INTO permissions (tenant_id, code, description) VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return database.Conn(ctx, r.pool).QueryRow(ctx, q, p.TenantID, p.Code, p.Description).
		Scan(&p.ID, &p.CreatedAt)
}

// GetPermission returns a permission by id in any tenant.
func (r *Repository) GetPermission(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	const q = `SELECT id, tenant_id, code, description, created_at FROM permissions WHERE id = $1`
	var p models.Permission
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, id).
		Scan(&p.ID, &p.TenantID, &p.Code, &p.Description, &p.CreatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "permission not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPermissions returns the tenant's permissions ordered by code.
func (r *Repository) ListPermissions(ctx context.Context, tenantID uuid.UUID) ([]models.Permission, error) {
	const q = `SELECT id, tenant_id, code, description, created_at FROM permissions WHERE tenant_id = $1 ORDER BY code`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Code, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// BindingExists reports whether the role already has the permission.
func (r *Repository) BindingExists(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM role_permissions WHERE role_id = $1 AND permission_id = $2)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, roleID, permissionID).Scan(&ok)
	return ok, err
}

// CreateBinding inserts rp and fills its generated fields.
func (r *Repository) CreateBinding(ctx context.Context, rp *models.RolePermission) error {
	const q = `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) RETURNING id, created_at`
	return database.Conn(ctx, r.pool).QueryRow(ctx, q, rp.RoleID, rp.PermissionID).Scan(&rp.ID, &rp.CreatedAt)
}

// ListBindings returns the role's permission bindings in creation order.
func (r *Repository) ListBindings(ctx context.Context, roleID uuid.UUID) ([]models.RolePermission, error) {
	const q = `SELECT id, role_id, permission_id, created_at FROM role_permissions WHERE role_id = $1 ORDER BY created_at`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.RolePermission
	for rows.Next() {
		var rp models.RolePermission
		if err := rows.Scan(&rp.ID, &rp.RoleID, &rp.PermissionID, &rp.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rp)
	}
	return list, rows.Err()
}
