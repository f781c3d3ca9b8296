package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
)

var errUnique = &pgconn.PgError{Code: "23505"}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{rows: map[uuid.UUID]*models.User{}} }

func (f *fakeUsers) match(tenantID uuid.UUID, pick func(*models.User) *string, v string) *models.User {
	for _, u := range f.rows {
		if u.TenantID == tenantID && pick(u) != nil && *pick(u) == v {
			return u
		}
	}
	return nil
}

func userEmail(u *models.User) *string { return u.PrimaryEmail }
func userPhone(u *models.User) *string { return u.PrimaryPhone }

func (f *fakeUsers) ExistsByEmail(_ context.Context, tenantID uuid.UUID, v string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match(tenantID, userEmail, v) != nil, nil
}

func (f *fakeUsers) ExistsByPhone(_ context.Context, tenantID uuid.UUID, v string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match(tenantID, userPhone, v) != nil, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, tenantID uuid.UUID, v string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.match(tenantID, userEmail, v); u != nil {
		return u, nil
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.rows[id]; ok {
		return u, nil
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.PrimaryEmail != nil && f.match(u.TenantID, userEmail, *u.PrimaryEmail) != nil {
		return errUnique
	}
	if u.PrimaryPhone != nil && f.match(u.TenantID, userPhone, *u.PrimaryPhone) != nil {
		return errUnique
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.rows[u.ID] = u
	return nil
}

type fakeIdentities struct {
	mu   sync.Mutex
	rows []*models.UserIdentity
}

func (f *fakeIdentities) find(tenantID uuid.UUID, identifier string, typ models.IdentityType) *models.UserIdentity {
	for _, i := range f.rows {
		if i.TenantID == tenantID && i.Identifier == identifier && i.Type == typ {
			return i
		}
	}
	return nil
}

func (f *fakeIdentities) Exists(_ context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(tenantID, identifier, typ) != nil, nil
}

func (f *fakeIdentities) Find(_ context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (*models.UserIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.find(tenantID, identifier, typ); i != nil {
		return i, nil
	}
	return nil, apperr.New(apperr.KindNotFound, "identity not found")
}

func (f *fakeIdentities) Create(_ context.Context, i *models.UserIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.find(i.TenantID, i.Identifier, i.Type) != nil {
		return errUnique
	}
	i.ID = uuid.New()
	f.rows = append(f.rows, i)
	return nil
}

type fakePersons struct {
	mu   sync.Mutex
	rows map[string]*models.Person
}

func newFakePersons() *fakePersons { return &fakePersons{rows: map[string]*models.Person{}} }

func (f *fakePersons) FindByMobile(_ context.Context, mobile string) (*models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[mobile]; ok {
		return p, nil
	}
	return nil, apperr.New(apperr.KindNotFound, "person not found")
}

func (f *fakePersons) FindByIDCard(_ context.Context, idCard string) (*models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.IDCard != nil && *p.IDCard == idCard {
			return p, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "person not found")
}

func (f *fakePersons) InsertByMobile(_ context.Context, mobile string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[mobile]; ok {
		return uuid.Nil, false, nil
	}
	m := mobile
	p := &models.Person{ID: uuid.New(), VerifiedMobile: &m, Status: models.StatusActive}
	f.rows[mobile] = p
	return p.ID, true, nil
}

type fakeMemberships struct {
	mu   sync.Mutex
	rows []*models.Membership
}

func (f *fakeMemberships) Exists(_ context.Context, userID, tenantID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.UserID == userID && m.TenantID == tenantID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMemberships) ExistsByOrgUnit(_ context.Context, orgUnitID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.OrgUnitID != nil && *m.OrgUnitID == orgUnitID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMemberships) Find(_ context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.UserID == userID && m.TenantID == tenantID {
			return m, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "membership not found")
}

func (f *fakeMemberships) FindByID(_ context.Context, id uuid.UUID) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "membership not found")
}

func (f *fakeMemberships) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Membership
	for _, m := range f.rows {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMemberships) Create(_ context.Context, m *models.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uuid.New()
	f.rows = append(f.rows, m)
	return nil
}

func (f *fakeMemberships) UpdateRoles(_ context.Context, id uuid.UUID, roles []string) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			m.Roles = roles
			return m, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "membership not found")
}

type plainEncoder struct{}

func (plainEncoder) Encode(raw string) (string, error) { return "enc:" + raw, nil }
func (plainEncoder) Matches(raw, encoded string) bool  { return "enc:"+raw == encoded }

type fakeOrgUnits struct {
	mu    sync.Mutex
	units map[uuid.UUID]*models.OrganizationUnit
}

func newFakeOrgUnits() *fakeOrgUnits {
	return &fakeOrgUnits{units: map[uuid.UUID]*models.OrganizationUnit{}}
}

func (f *fakeOrgUnits) add(tenantID uuid.UUID) *models.OrganizationUnit {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.OrganizationUnit{ID: uuid.New(), TenantID: tenantID, Name: "Unit", Status: models.StatusActive}
	f.units[u.ID] = u
	return u
}

func (f *fakeOrgUnits) GetByID(_ context.Context, id uuid.UUID) (*models.OrganizationUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "organization unit not found")
	}
	return u, nil
}
