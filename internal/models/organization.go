package models

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationUnit is a node of a tenant's organization forest.
type OrganizationUnit struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// OrgTreeNode is an org unit with its children, sorted by SortOrder.
type OrgTreeNode struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	SortOrder int            `json:"sort_order"`
	Children  []*OrgTreeNode `json:"children"`
}
