package models

import (
	"time"

	"github.com/google/uuid"
)

// Person is a real-world individual shared by users across tenants.
type Person struct {
	ID             uuid.UUID `json:"id"`
	VerifiedMobile *string   `json:"verified_mobile,omitempty"`
	IDCard         *string   `json:"-"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
