package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a single staff-management action within a clinic.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ClinicID  uuid.UUID  `json:"clinic_id" db:"clinic_id"`
	ActorID   *uuid.UUID `json:"actor_id" db:"actor_id"`
	TargetID  string     `json:"target_id" db:"target_id"`
	Action    string     `json:"action" db:"action"`
	Detail    *string    `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Audit action constants.
const (
	AuditActionCreate     = "STAFF_CREATE"
	AuditActionUpdate     = "STAFF_UPDATE"
	AuditActionActivate   = "STAFF_ACTIVATE"
	AuditActionDeactivate = "STAFF_DEACTIVATE"
	AuditActionAssignRole = "STAFF_ROLE_ASSIGN"
	AuditActionRevokeRole = "STAFF_ROLE_REVOKE"
)

// AuditLogFilters narrows audit log queries.
type AuditLogFilters struct {
	Action    *string    `json:"action"`
	ActorID   *uuid.UUID `json:"actor_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
