package tenants

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

// Repository handles tenant persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tenants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tenantColumns = `id, code, name, type, status, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	var typ string
	err := row.Scan(&t.ID, &t.Code, &t.Name, &typ, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "tenant not found")
	}
	if err != nil {
		return nil, err
	}
	t.Type = models.TenantType(typ)
	return &t, nil
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Tenant, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// Create inserts t and fills its generated fields.
func (r *Repository) Create(ctx context.Context, t *models.Tenant) error {
	const q = `INSERT INTO tenants (code, name, type, status) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return database.Conn(ctx, r.pool).QueryRow(ctx, q, t.Code, t.Name, string(t.Type), t.Status).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a tenant by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(database.Conn(ctx, r.pool).QueryRow(ctx, q, id))
}

// GetByCode returns a tenant by code.
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE code = $1`
	return scanTenant(database.Conn(ctx, r.pool).QueryRow(ctx, q, code))
}

// CodeExists reports whether a tenant with code exists.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE code = $1)`, code).Scan(&ok)
	return ok, err
}

// Update writes name and status of t.
func (r *Repository) Update(ctx context.Context, t *models.Tenant) error {
	const q = `UPDATE tenants SET name = $2, status = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, t.ID, t.Name, t.Status).Scan(&t.UpdatedAt)
	if database.IsNoRows(err) {
		return apperr.New(apperr.KindNotFound, "tenant not found")
	}
	return err
}

// List returns all tenants ordered by code.
func (r *Repository) List(ctx context.Context) ([]models.Tenant, error) {
	return r.list(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY code`)
}

// ListExcludingType returns tenants whose type is not typ, ordered by code.
func (r *Repository) ListExcludingType(ctx context.Context, typ models.TenantType) ([]models.Tenant, error) {
	return r.list(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE type <> $1 ORDER BY code`, string(typ))
}

// OrgUnitRepository handles organization unit persistence.
type OrgUnitRepository struct {
	pool *pgxpool.Pool
}

// NewOrgUnitRepository creates an organization unit repository.
func NewOrgUnitRepository(pool *pgxpool.Pool) *OrgUnitRepository {
	return &OrgUnitRepository{pool: pool}
}

const orgUnitColumns = `id, tenant_id, parent_id, name, status, sort_order, created_at, updated_at`

func scanOrgUnit(row pgx.Row) (*models.OrganizationUnit, error) {
	var u models.OrganizationUnit
	err := row.Scan(&u.ID, &u.TenantID, &u.ParentID, &u.Name, &u.Status, &u.SortOrder, &u.CreatedAt, &u.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "organization unit not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u and fills its generated fields.
func (r *OrgUnitRepository) Create(ctx context.Context, u *models.OrganizationUnit) error {
	const q = `INSERT INTO organization_units (tenant_id, parent_id, name, status, sort_order)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	return database.Conn(ctx, r.pool).QueryRow(ctx, q, u.TenantID, u.ParentID, u.Name, u.Status, u.SortOrder).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID returns an organization unit by ID.
func (r *OrgUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationUnit, error) {
	q := `SELECT ` + orgUnitColumns + ` FROM organization_units WHERE id = $1`
	return scanOrgUnit(database.Conn(ctx, r.pool).QueryRow(ctx, q, id))
}

// ListByTenant returns all units of a tenant.
func (r *OrgUnitRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.OrganizationUnit, error) {
	q := `SELECT ` + orgUnitColumns + ` FROM organization_units WHERE tenant_id = $1 ORDER BY sort_order, created_at`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OrganizationUnit
	for rows.Next() {
		u, err := scanOrgUnit(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

// CountChildren counts the tenant's units under parentID; a nil parent
// counts the tenant's roots.
func (r *OrgUnitRepository) CountChildren(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM organization_units
		WHERE tenant_id = $1 AND parent_id IS NOT DISTINCT FROM $2`
	var n int
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, parentID).Scan(&n)
	return n, err
}

// HasChildren reports whether any unit of the tenant has parentID as parent.
func (r *OrgUnitRepository) HasChildren(ctx context.Context, tenantID, parentID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM organization_units WHERE tenant_id = $1 AND parent_id = $2)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, parentID).Scan(&ok)
	return ok, err
}

// Update writes name and sort order of u.
func (r *OrgUnitRepository) Update(ctx context.Context, u *models.OrganizationUnit) error {
	const q = `UPDATE organization_units SET name = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, u.ID, u.Name, u.SortOrder).Scan(&u.UpdatedAt)
	if database.IsNoRows(err) {
		return apperr.New(apperr.KindNotFound, "organization unit not found")
	}
	return err
}

// Delete removes a unit.
func (r *OrgUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM organization_units WHERE id = $1`, id)
	return err
}
