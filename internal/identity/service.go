package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/database"
	"github.com/aura-platform/usercenter/pkg/utils"
)

// UserStore persists users.
type UserStore interface {
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
	ExistsByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (bool, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// IdentityStore persists login identities.
type IdentityStore interface {
	Exists(ctx context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (bool, error)
	Find(ctx context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (*models.UserIdentity, error)
	Create(ctx context.Context, i *models.UserIdentity) error
}

// MembershipStore persists memberships.
type MembershipStore interface {
	Exists(ctx context.Context, userID, tenantID uuid.UUID) (bool, error)
	ExistsByOrgUnit(ctx context.Context, orgUnitID uuid.UUID) (bool, error)
	Find(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
	Create(ctx context.Context, m *models.Membership) error
	UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) (*models.Membership, error)
}

// OrgUnitLookup resolves organization units.
type OrgUnitLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationUnit, error)
}

// RegisterParams is the input of RegisterUser. At least one of Email and
// Phone is required; the email, when given, becomes the login identifier.
type RegisterParams struct {
	TenantID    uuid.UUID
	DisplayName string
	Email       string
	Phone       string
	Password    string
}

// Service registers tenant-scoped users and manages their identities and
// memberships.
type Service struct {
	users       UserStore
	identities  IdentityStore
	memberships MembershipStore
	orgUnits    OrgUnitLookup
	persons     *PersonRegistry
	tx          database.Transactor
	encoder     utils.PasswordEncoder
	logger      *zap.Logger
}

// NewService creates an identity service.
func NewService(users UserStore, identities IdentityStore, memberships MembershipStore, orgUnits OrgUnitLookup,
	persons *PersonRegistry, tx database.Transactor, encoder utils.PasswordEncoder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:       users,
		identities:  identities,
		memberships: memberships,
		orgUnits:    orgUnits,
		persons:     persons,
		tx:          tx,
		encoder:     encoder,
		logger:      logger,
	}
}

// RegisterUser creates a user in the tenant with a LOCAL_PASSWORD identity.
// A phone number links the user to the global person holding it. The person
// is linked before the user transaction, so a failure after linking can
// leave a person with no users.
func (s *Service) RegisterUser(ctx context.Context, p RegisterParams) (*models.User, error) {
	if p.TenantID == uuid.Nil {
		return nil, apperr.ErrMissingTenant
	}
	email := strings.TrimSpace(p.Email)
	phone := strings.TrimSpace(p.Phone)
	name := strings.TrimSpace(p.DisplayName)
	switch {
	case email == "" && phone == "":
		return nil, apperr.New(apperr.KindInvalidArgument, "email or phone is required")
	case name == "":
		return nil, apperr.New(apperr.KindInvalidArgument, "display name is required")
	case p.Password == "":
		return nil, apperr.New(apperr.KindInvalidArgument, "password is required")
	}

	if email != "" {
		taken, err := s.users.ExistsByEmail(ctx, p.TenantID, email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, apperr.New(apperr.KindDuplicateIdentity, "email already registered")
		}
	}
	if phone != "" {
		taken, err := s.users.ExistsByPhone(ctx, p.TenantID, phone)
		if err != nil {
			return nil, fmt.Errorf("check phone: %w", err)
		}
		if taken {
			return nil, apperr.New(apperr.KindDuplicateIdentity, "phone already registered")
		}
	}
	identifier := email
	if identifier == "" {
		identifier = phone
	}
	taken, err := s.identities.Exists(ctx, p.TenantID, identifier, models.IdentityLocalPassword)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if taken {
		return nil, apperr.New(apperr.KindDuplicateIdentity, "identifier already registered")
	}

	secret, err := s.encoder.Encode(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		TenantID:    p.TenantID,
		DisplayName: name,
		Status:      models.StatusActive,
	}
	if email != "" {
		user.PrimaryEmail = &email
	}
	if phone != "" {
		user.PrimaryPhone = &phone
		personID, err := s.persons.LinkByMobile(ctx, phone)
		if err != nil {
			return nil, err
		}
		user.PersonID = &personID
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.identities.Create(ctx, &models.UserIdentity{
			TenantID:   p.TenantID,
			UserID:     user.ID,
			Type:       models.IdentityLocalPassword,
			Identifier: identifier,
			Secret:     &secret,
		})
	})
	if database.IsUniqueViolation(err) {
		return nil, apperr.Wrap(err, apperr.KindDuplicateIdentity, "identity already registered")
	}
	if database.IsForeignKeyViolation(err) {
		return nil, apperr.Wrap(err, apperr.KindNotFound, "tenant not found")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Bool("person_linked", user.PersonID != nil))
	return user, nil
}

// FindByEmail returns the tenant's user with this primary email.
func (s *Service) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, tenantID, strings.TrimSpace(email))
}

// FindIdentity returns the identity for (tenant, identifier, type).
func (s *Service) FindIdentity(ctx context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (*models.UserIdentity, error) {
	return s.identities.Find(ctx, tenantID, identifier, typ)
}

// FindByIdentifier resolves a login handle to its user.
func (s *Service) FindByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string, typ models.IdentityType) (*models.User, error) {
	ident, err := s.identities.Find(ctx, tenantID, identifier, typ)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, ident.UserID)
}

// FindByID returns a user by id without tenant filtering. Callers must check
// the user's TenantID before trusting the result.
func (s *Service) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// HasMembership reports whether the user is a member of the tenant.
func (s *Service) HasMembership(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return s.memberships.Exists(ctx, userID, tenantID)
}

// FindMembership returns the user's membership in the tenant.
func (s *Service) FindMembership(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	return s.memberships.Find(ctx, userID, tenantID)
}

// GetMembership returns a membership by id.
func (s *Service) GetMembership(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	return s.memberships.FindByID(ctx, id)
}

// AddMembership binds the user to the tenant, optionally at an org unit.
// The org unit must belong to the same tenant.
func (s *Service) AddMembership(ctx context.Context, userID, tenantID uuid.UUID, orgUnitID *uuid.UUID, roles []string) (*models.Membership, error) {
	if tenantID == uuid.Nil {
		return nil, apperr.ErrMissingTenant
	}
	if orgUnitID != nil {
		unit, err := s.orgUnits.GetByID(ctx, *orgUnitID)
		if err != nil {
			return nil, err
		}
		if unit.TenantID != tenantID {
			return nil, apperr.ErrTenantMismatch
		}
	}
	m := &models.Membership{
		UserID:    userID,
		TenantID:  tenantID,
		OrgUnitID: orgUnitID,
		Roles:     models.NormalizeRoles(roles),
		Status:    models.StatusActive,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.memberships.Create(ctx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("create membership: %w", err)
	}
	return m, nil
}

// BindRole replaces the role set of a membership.
func (s *Service) BindRole(ctx context.Context, membershipID uuid.UUID, roles []string) (*models.Membership, error) {
	if _, err := s.memberships.FindByID(ctx, membershipID); err != nil {
		return nil, err
	}
	var m *models.Membership
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.memberships.UpdateRoles(ctx, membershipID, models.NormalizeRoles(roles))
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update membership roles: %w", err)
	}
	return m, nil
}

// ListMemberships returns all memberships of the user.
func (s *Service) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	return s.memberships.ListByUser(ctx, userID)
}
