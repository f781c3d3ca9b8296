package models

import (
	"time"

	"github.com/google/uuid"
)

// IdentityType is the kind of login credential.
type IdentityType string

const (
	IdentityLocalPassword IdentityType = "LOCAL_PASSWORD"
	IdentityEmailOTP      IdentityType = "EMAIL_OTP"
	IdentityPhoneOTP      IdentityType = "PHONE_OTP"
	IdentityExternalOIDC  IdentityType = "EXTERNAL_OIDC"
)

// Valid reports whether t is a known identity type.
func (t IdentityType) Valid() bool {
	switch t {
	case IdentityLocalPassword, IdentityEmailOTP, IdentityPhoneOTP, IdentityExternalOIDC:
		return true
	}
	return false
}

// User is an account scoped to one tenant.
type User struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	PersonID     *uuid.UUID `json:"person_id,omitempty"`
	DisplayName  string     `json:"display_name"`
	PrimaryEmail *string    `json:"primary_email,omitempty"`
	PrimaryPhone *string    `json:"primary_phone,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserIdentity is a login handle for a user. Secret holds an opaque hash
// and is nil for credential types without one.
type UserIdentity struct {
	ID         uuid.UUID    `json:"id"`
	TenantID   uuid.UUID    `json:"tenant_id"`
	UserID     uuid.UUID    `json:"user_id"`
	Type       IdentityType `json:"type"`
	Identifier string       `json:"identifier"`
	Secret     *string      `json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
}
