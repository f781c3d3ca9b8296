// Package tenantctx carries the active tenant id on a context.Context.
//
// The tenant is bound to the context of one unit of work (an HTTP request,
// a CLI command) and is dropped with it; there is no goroutine-local state
// to clear and nothing leaks into the next unit of work.
package tenantctx

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/aura-platform/usercenter/pkg/apperr"
)

type tenantIDKey struct{}

// WithTenantID returns a child of ctx carrying tenantID.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey{}, strings.TrimSpace(tenantID))
}

// TenantID returns the tenant id bound to ctx. Blank ids report false.
func TenantID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, _ := ctx.Value(tenantIDKey{}).(string)
	if id == "" {
		return "", false
	}
	return id, true
}

// RequireTenantID returns the tenant id bound to ctx, failing with
// MissingTenant when it is unset, blank or not a UUID.
func RequireTenantID(ctx context.Context) (uuid.UUID, error) {
	raw, ok := TenantID(ctx)
	if !ok {
		return uuid.Nil, apperr.ErrMissingTenant
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Wrap(err, apperr.KindMissingTenant, "invalid tenant id")
	}
	return id, nil
}

// Scope runs fn with tenantID bound to its context.
func Scope(ctx context.Context, tenantID string, fn func(ctx context.Context) error) error {
	return fn(WithTenantID(ctx, tenantID))
}
