package models

import (
	"time"

	"github.com/google/uuid"
)

// Role names. Owners are pet owners and never hold staff authority.
const (
	RoleAdmin = "ADMIN"
	RoleVet   = "VET"
	RoleOwner = "OWNER"
)

type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Permission names consulted by the authorization policy. Opaque
// capability tokens; the policy never reinterprets them.
const (
	PermissionManageStaff = "staff:manage"
	PermissionListStaff   = "staff:list"
	PermissionViewAudit   = "audit:view"
)
