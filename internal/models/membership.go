package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Membership binds a user to a tenant, optionally inside an org unit, with
// an ordered set of role codes.
type Membership struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	OrgUnitID *uuid.UUID `json:"org_unit_id,omitempty"`
	Roles     []string   `json:"roles"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasRole reports whether code is one of the membership's roles. The
// comparison is exact.
func (m *Membership) HasRole(code string) bool {
	for _, r := range m.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// NormalizeRoles trims role codes, drops blanks and keeps the first
// occurrence of each code. The result is never nil.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
