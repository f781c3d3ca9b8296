package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

// UserRepository persists tenant-scoped users.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, tenant_id, person_id, display_name, primary_email, primary_phone, status, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.TenantID, &u.PersonID, &u.DisplayName, &u.PrimaryEmail, &u.PrimaryPhone,
		&u.Status, &u.CreatedAt, &u.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByEmail reports whether the tenant has a user with this primary email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1 AND primary_email = $2)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, email).Scan(&ok)
	return ok, err
}

// ExistsByPhone reports whether the tenant has a user with this primary phone.
func (r *UserRepository) ExistsByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1 AND primary_phone = $2)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, phone).Scan(&ok)
	return ok, err
}

// FindByEmail returns the tenant's user with this primary email.
func (r *UserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND primary_email = $2`
	return scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, email))
}

// FindByID returns a user by primary key in any tenant.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, q, id))
}

// Create inserts u and fills its generated fields.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	q := `INSERT INTO users (tenant_id, person_id, display_name, primary_email, primary_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	created, err := scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, q,
		u.TenantID, u.PersonID, u.DisplayName, u.PrimaryEmail, u.PrimaryPhone, u.Status))
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// IdentityRepository persists login identities.
type IdentityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository creates an identity repository.
func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Exists reports whether (tenant, identifier, type) is taken.
func (r *IdentityRepository) Exists(ctx context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM user_identities WHERE tenant_id = $1 AND identifier = $2 AND type = $3)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, identifier, string(typ)).Scan(&ok)
	return ok, err
}

// Find returns the identity for (tenant, identifier, type).
func (r *IdentityRepository) Find(ctx context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (*models.UserIdentity, error) {
	const q = `SELECT id, tenant_id, user_id, type, identifier, secret, created_at
		FROM user_identities WHERE tenant_id = $1 AND identifier = $2 AND type = $3`
	var i models.UserIdentity
	var t string
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, tenantID, identifier, string(typ)).
		Scan(&i.ID, &i.TenantID, &i.UserID, &t, &i.Identifier, &i.Secret, &i.CreatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "identity not found")
	}
	if err != nil {
		return nil, err
	}
	i.Type = models.IdentityType(t)
	return &i, nil
}

// Create inserts i and fills its generated fields.
func (r *IdentityRepository) Create(ctx context.Context, i *models.UserIdentity) error {
	const q = `INSERT INTO user_identities (tenant_id, user_id, type, identifier, secret)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return database.Conn(ctx, r.pool).QueryRow(ctx, q, i.TenantID, i.UserID, string(i.Type), i.Identifier, i.Secret).
		Scan(&i.ID, &i.CreatedAt)
}

// PersonRepository persists global persons.
type PersonRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository creates a person repository.
func NewPersonRepository(pool *pgxpool.Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

const personColumns = `id, verified_mobile, id_card, status, created_at, updated_at`

func scanPerson(row pgx.Row) (*models.Person, error) {
	var p models.Person
	err := row.Scan(&p.ID, &p.VerifiedMobile, &p.IDCard, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "person not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByMobile returns the person with this verified mobile.
func (r *PersonRepository) FindByMobile(ctx context.Context, mobile string) (*models.Person, error) {
	q := `SELECT ` + personColumns + ` FROM persons WHERE verified_mobile = $1`
	return scanPerson(database.Conn(ctx, r.pool).QueryRow(ctx, q, mobile))
}

// FindByIDCard returns the person with this id card number.
func (r *PersonRepository) FindByIDCard(ctx context.Context, idCard string) (*models.Person, error) {
	q := `SELECT ` + personColumns + ` FROM persons WHERE id_card = $1`
	return scanPerson(database.Conn(ctx, r.pool).QueryRow(ctx, q, idCard))
}

// InsertByMobile creates an ACTIVE person for mobile. created is false,
// with no error, when another row already holds the mobile.
func (r *PersonRepository) InsertByMobile(ctx context.Context, mobile string) (id uuid.UUID, created bool, err error) {
	const q = `INSERT INTO persons (verified_mobile, status) VALUES ($1, $2)
		ON CONFLICT (verified_mobile) DO NOTHING RETURNING id`
	err = database.Conn(ctx, r.pool).QueryRow(ctx, q, mobile, models.StatusActive).Scan(&id)
	if database.IsNoRows(err) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// MembershipRepository persists user-tenant memberships.
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a membership repository.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

const membershipColumns = `id, user_id, tenant_id, org_unit_id, roles, status, created_at, updated_at`

func scanMembership(row pgx.Row) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.UserID, &m.TenantID, &m.OrgUnitID, &m.Roles, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, apperr.New(apperr.KindNotFound, "membership not found")
	}
	if err != nil {
		return nil, err
	}
	if m.Roles == nil {
		m.Roles = []string{}
	}
	return &m, nil
}

// Exists reports whether the user has a membership in the tenant.
func (r *MembershipRepository) Exists(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM memberships WHERE user_id = $1 AND tenant_id = $2)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, userID, tenantID).Scan(&ok)
	return ok, err
}

// ExistsByOrgUnit reports whether any membership is anchored at the org unit.
func (r *MembershipRepository) ExistsByOrgUnit(ctx context.Context, orgUnitID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM memberships WHERE org_unit_id = $1)`
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, orgUnitID).Scan(&ok)
	return ok, err
}

// Find returns the earliest membership of the user in the tenant.
func (r *MembershipRepository) Find(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	q := `SELECT ` + membershipColumns + ` FROM memberships
		WHERE user_id = $1 AND tenant_id = $2 ORDER BY created_at LIMIT 1`
	return scanMembership(database.Conn(ctx, r.pool).QueryRow(ctx, q, userID, tenantID))
}

// FindByID returns a membership by primary key.
func (r *MembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	q := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`
	return scanMembership(database.Conn(ctx, r.pool).QueryRow(ctx, q, id))
}

// ListByUser returns all memberships of the user across tenants.
func (r *MembershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	q := `SELECT ` + membershipColumns + ` FROM memberships WHERE user_id = $1 ORDER BY created_at`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// Create inserts m and fills its generated fields.
func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	q := `INSERT INTO memberships (user_id, tenant_id, org_unit_id, roles, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING ` + membershipColumns
	created, err := scanMembership(database.Conn(ctx, r.pool).QueryRow(ctx, q,
		m.UserID, m.TenantID, m.OrgUnitID, m.Roles, m.Status))
	if err != nil {
		return err
	}
	*m = *created
	return nil
}

// UpdateRoles replaces the role set of a membership.
func (r *MembershipRepository) UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) (*models.Membership, error) {
	q := `UPDATE memberships SET roles = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + membershipColumns
	return scanMembership(database.Conn(ctx, r.pool).QueryRow(ctx, q, id, roles))
}
