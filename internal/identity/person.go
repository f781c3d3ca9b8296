package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/pkg/apperr"
)

// linkAttempts bounds the lookup/insert loop in LinkByMobile. A conflicting
// insert means another registration created the row, so the next lookup
// normally finds it.
const linkAttempts = 3

// PersonStore is the persistence contract of the person registry.
type PersonStore interface {
	FindByMobile(ctx context.Context, mobile string) (*models.Person, error)
	FindByIDCard(ctx context.Context, idCard string) (*models.Person, error)
	InsertByMobile(ctx context.Context, mobile string) (id uuid.UUID, created bool, err error)
}

// PersonRegistry deduplicates natural persons across tenants by verified
// mobile number.
type PersonRegistry struct {
	store  PersonStore
	logger *zap.Logger
}

// NewPersonRegistry creates a registry over store.
func NewPersonRegistry(store PersonStore, logger *zap.Logger) *PersonRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonRegistry{store: store, logger: logger}
}

// LinkByMobile returns the id of the person holding mobile, creating an
// ACTIVE person when none exists. Concurrent calls for the same mobile
// resolve to one row through the unique constraint on verified_mobile.
func (r *PersonRegistry) LinkByMobile(ctx context.Context, mobile string) (uuid.UUID, error) {
	for attempt := 1; attempt <= linkAttempts; attempt++ {
		p, err := r.store.FindByMobile(ctx, mobile)
		if err == nil {
			return p.ID, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("find person by mobile: %w", err)
		}

		id, created, err := r.store.InsertByMobile(ctx, mobile)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert person: %w", err)
		}
		if created {
			r.logger.Info("person created", zap.String("person_id", id.String()))
			return id, nil
		}
		r.logger.Debug("person insert conflicted, re-fetching", zap.Int("attempt", attempt))
	}
	return uuid.Nil, fmt.Errorf("link person by mobile: unresolved after %d attempts", linkAttempts)
}

// FindByMobile returns the person with this verified mobile.
func (r *PersonRegistry) FindByMobile(ctx context.Context, mobile string) (*models.Person, error) {
	return r.store.FindByMobile(ctx, mobile)
}

// FindByIDCard returns the person with this id card number.
func (r *PersonRegistry) FindByIDCard(ctx context.Context, idCard string) (*models.Person, error) {
	return r.store.FindByIDCard(ctx, idCard)
}
