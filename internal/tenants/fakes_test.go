package tenants

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

type memTenants struct {
	mu   sync.Mutex
	rows []*models.Tenant
}

func (m *memTenants) Create(_ context.Context, t *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memTenants) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "tenant not found")
}

func (m *memTenants) GetByCode(_ context.Context, code string) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "tenant not found")
}

func (m *memTenants) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.GetByCode(ctx, code)
	return err == nil, nil
}

func (m *memTenants) Update(_ context.Context, t *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == t.ID {
			cp := *t
			m.rows[i] = &cp
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, "tenant not found")
}

func (m *memTenants) List(_ context.Context) ([]models.Tenant, error) {
	return m.ListExcludingType(context.Background(), "")
}

func (m *memTenants) ListExcludingType(_ context.Context, typ models.TenantType) ([]models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Tenant
	for _, t := range m.rows {
		if typ == "" || t.Type != typ {
			out = append(out, *t)
		}
	}
	return out, nil
}

type memUnits struct {
	mu   sync.Mutex
	rows []*models.OrganizationUnit
}

func (m *memUnits) Create(_ context.Context, u *models.OrganizationUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memUnits) GetByID(_ context.Context, id uuid.UUID) (*models.OrganizationUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "organization unit not found")
}

func (m *memUnits) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]models.OrganizationUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OrganizationUnit
	for _, u := range m.rows {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUnits) CountChildren(_ context.Context, tenantID uuid.UUID, parentID *uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.rows {
		if u.TenantID != tenantID {
			continue
		}
		if (parentID == nil && u.ParentID == nil) || (parentID != nil && u.ParentID != nil && *u.ParentID == *parentID) {
			n++
		}
	}
	return n, nil
}

func (m *memUnits) HasChildren(ctx context.Context, tenantID, parentID uuid.UUID) (bool, error) {
	n, err := m.CountChildren(ctx, tenantID, &parentID)
	return n > 0, err
}

func (m *memUnits) Update(_ context.Context, u *models.OrganizationUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == u.ID {
			cp := *u
			m.rows[i] = &cp
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, "organization unit not found")
}

func (m *memUnits) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, "organization unit not found")
}

type memMemberships struct {
	mu   sync.Mutex
	rows []*models.Membership
}

func (m *memMemberships) removeByOrgUnit(orgUnitID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.OrgUnitID == nil || *r.OrgUnitID != orgUnitID {
			kept = append(kept, r)
		}
	}
	m.rows = kept
}

func (m *memMemberships) Exists(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	_, err := m.Find(ctx, userID, tenantID)
	return err == nil, nil
}

func (m *memMemberships) ExistsByOrgUnit(_ context.Context, orgUnitID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrgUnitID != nil && *r.OrgUnitID == orgUnitID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memMemberships) Find(_ context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.TenantID == tenantID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "membership not found")
}

func (m *memMemberships) Create(_ context.Context, mb *models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mb.ID == uuid.Nil {
		mb.ID = uuid.New()
	}
	cp := *mb
	m.rows = append(m.rows, &cp)
	return nil
}

type fixture struct {
	tenants     *memTenants
	units       *memUnits
	memberships *memMemberships
	svc         *Service
	orgs        *OrganizationService
	platform    *PlatformService
}

func newFixture() *fixture {
	f := &fixture{tenants: &memTenants{}, units: &memUnits{}, memberships: &memMemberships{}}
	tx := database.NopTx{}
	logger := zap.NewNop()
	f.svc = NewService(f.tenants, f.units, f.memberships, tx, logger)
	f.orgs = NewOrganizationService(f.units, f.memberships, tx, logger)
	f.platform = NewPlatformService(f.tenants, f.memberships, tx, logger)
	return f
}

// seedPlatform stores the platform tenant the way the schema migration does.
func (f *fixture) seedPlatform() {
	_ = f.tenants.Create(context.Background(), &models.Tenant{
		ID:     PlatformTenantID,
		Code:   PlatformTenantCode,
		Name:   "Platform",
		Type:   models.TenantTypePlatform,
		Status: models.StatusActive,
	})
}
