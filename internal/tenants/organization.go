package tenants

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
)

// OrgUnitStore persists organization units.
type OrgUnitStore interface {
	Create(ctx context.Context, u *models.OrganizationUnit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationUnit, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.OrganizationUnit, error)
	CountChildren(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID) (int, error)
	HasChildren(ctx context.Context, tenantID, parentID uuid.UUID) (bool, error)
	Update(ctx context.Context, u *models.OrganizationUnit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MembershipStore is the membership lookup used by tenant services.
type MembershipStore interface {
	Exists(ctx context.Context, userID, tenantID uuid.UUID) (bool, error)
	ExistsByOrgUnit(ctx context.Context, orgUnitID uuid.UUID) (bool, error)
	Find(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error)
	Create(ctx context.Context, m *models.Membership) error
}

// OrganizationService manages the organization forest of each tenant.
type OrganizationService struct {
	units       OrgUnitStore
	memberships MembershipStore
	tx          database.Transactor
	logger      *zap.Logger
}

// NewOrganizationService creates an organization service.
func NewOrganizationService(units OrgUnitStore, memberships MembershipStore, tx database.Transactor, logger *zap.Logger) *OrganizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{units: units, memberships: memberships, tx: tx, logger: logger}
}

// CreateOrgUnit appends a unit under parentID, or as a root when parentID
// is nil. Its sort order is the current number of siblings.
func (s *OrganizationService) CreateOrgUnit(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID, name string) (*models.OrganizationUnit, error) {
	if tenantID == uuid.Nil {
		return nil, apperr.ErrMissingTenant
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "name is required")
	}
	unit := &models.OrganizationUnit{
		TenantID: tenantID,
		ParentID: parentID,
		Name:     name,
		Status:   models.StatusActive,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if parentID != nil {
			parent, err := s.units.GetByID(ctx, *parentID)
			if err != nil {
				return err
			}
			if parent.TenantID != tenantID {
				return apperr.New(apperr.KindTenantMismatch, "parent unit belongs to another tenant")
			}
		}
		n, err := s.units.CountChildren(ctx, tenantID, parentID)
		if err != nil {
			return err
		}
		unit.SortOrder = n
		return s.units.Create(ctx, unit)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// UpdateOrgUnit changes the given fields only; nil arguments are left as is.
func (s *OrganizationService) UpdateOrgUnit(ctx context.Context, orgID uuid.UUID, name *string, sortOrder *int) (*models.OrganizationUnit, error) {
	var unit *models.OrganizationUnit
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if unit, err = s.units.GetByID(ctx, orgID); err != nil {
			return err
		}
		if name != nil {
			n := strings.TrimSpace(*name)
			if n == "" {
				return apperr.New(apperr.KindInvalidArgument, "name must not be blank")
			}
			unit.Name = n
		}
		if sortOrder != nil {
			unit.SortOrder = *sortOrder
		}
		return s.units.Update(ctx, unit)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// DeleteOrgUnit removes a unit that has neither child units nor members.
func (s *OrganizationService) DeleteOrgUnit(ctx context.Context, orgID uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		unit, err := s.units.GetByID(ctx, orgID)
		if err != nil {
			return err
		}
		hasChildren, err := s.units.HasChildren(ctx, unit.TenantID, orgID)
		if err != nil {
			return err
		}
		if hasChildren {
			return apperr.ErrHasChildren
		}
		hasMembers, err := s.memberships.ExistsByOrgUnit(ctx, orgID)
		if err != nil {
			return err
		}
		if hasMembers {
			return apperr.ErrHasMembers
		}
		return s.units.Delete(ctx, orgID)
	})
}

// GetOrgUnit returns a unit by id.
func (s *OrganizationService) GetOrgUnit(ctx context.Context, orgID uuid.UUID) (*models.OrganizationUnit, error) {
	return s.units.GetByID(ctx, orgID)
}

// ListOrgUnits returns the tenant's units as a flat list.
func (s *OrganizationService) ListOrgUnits(ctx context.Context, tenantID uuid.UUID) ([]models.OrganizationUnit, error) {
	return s.units.ListByTenant(ctx, tenantID)
}

// GetOrgTree returns the tenant's units as a forest of root units, each
// sibling group sorted by sort order. Units whose parent is not among the
// tenant's units are left out together with their descendants.
func (s *OrganizationService) GetOrgTree(ctx context.Context, tenantID uuid.UUID) ([]*models.OrgTreeNode, error) {
	units, err := s.units.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tree := buildTree(units)
	if dropped := len(units) - countNodes(tree); dropped > 0 {
		s.logger.Debug("org units with unresolved parent left out of tree",
			zap.String("tenant_id", tenantID.String()), zap.Int("count", dropped))
	}
	return tree, nil
}

func buildTree(units []models.OrganizationUnit) []*models.OrgTreeNode {
	children := make(map[uuid.UUID][]*models.OrganizationUnit, len(units))
	var roots []*models.OrganizationUnit
	for i := range units {
		u := &units[i]
		if u.ParentID == nil {
			roots = append(roots, u)
			continue
		}
		children[*u.ParentID] = append(children[*u.ParentID], u)
	}

	var assemble func(level []*models.OrganizationUnit) []*models.OrgTreeNode
	assemble = func(level []*models.OrganizationUnit) []*models.OrgTreeNode {
		sort.SliceStable(level, func(i, j int) bool { return level[i].SortOrder < level[j].SortOrder })
		nodes := make([]*models.OrgTreeNode, 0, len(level))
		for _, u := range level {
			nodes = append(nodes, &models.OrgTreeNode{
				ID:        u.ID,
				Name:      u.Name,
				Status:    u.Status,
				SortOrder: u.SortOrder,
				Children:  assemble(children[u.ID]),
			})
		}
		return nodes
	}
	return assemble(roots)
}

func countNodes(nodes []*models.OrgTreeNode) int {
	n := len(nodes)
	for _, c := range nodes {
		n += countNodes(c.Children)
	}
	return n
}
