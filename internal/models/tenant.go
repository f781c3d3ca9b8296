package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantType classifies a tenant.
type TenantType string

const (
	TenantTypePlatform TenantType = "PLATFORM"
	TenantTypeInternal TenantType = "INTERNAL"
	TenantTypeCustomer TenantType = "CUSTOMER"
	TenantTypePartner  TenantType = "PARTNER"
)

// Valid reports whether t is a known tenant type.
func (t TenantType) Valid() bool {
	switch t {
	case TenantTypePlatform, TenantTypeInternal, TenantTypeCustomer, TenantTypePartner:
		return true
	}
	return false
}

// Lifecycle status shared by tenants, persons, users, memberships and org units.
const (
	StatusActive   = "ACTIVE"
	StatusDisabled = "DISABLED"
)

// Tenant is the top-level isolation boundary.
type Tenant struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Type      TenantType `json:"type"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
