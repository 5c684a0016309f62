package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the core services.
const (
	AuditTenantCreate        = "tenant.create"
	AuditPrescriptionFulfill = "prescription.fulfill"
	AuditPrescriptionCancel  = "prescription.cancel"
	AuditInventoryAdjust     = "inventory.adjust"
	AuditTenantKillSwitch    = "tenant.kill_switch"
	AuditTenantMaintenance   = "tenant.enable_maintenance"
	AuditTenantReactivate    = "tenant.reactivate"
)

// AuditEntry is append-only: entries are never updated or deleted. State
// transitions commit their entry inside the same transaction.
type AuditEntry struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	SubjectType string     `json:"subject_type" db:"subject_type"`
	SubjectID   string     `json:"subject_id" db:"subject_id"`
	Action      string     `json:"action" db:"action"`
	FromState   *string    `json:"from_state,omitempty" db:"from_state"`
	ToState     *string    `json:"to_state,omitempty" db:"to_state"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty" db:"actor_id"`
	Reason      *string    `json:"reason,omitempty" db:"reason"`
	Details     JSONB      `json:"details,omitempty" db:"details"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// AuditFilters narrows audit queries.
type AuditFilters struct {
	SubjectType *string    `json:"subject_type"`
	SubjectID   *string    `json:"subject_id"`
	Action      *string    `json:"action"`
	ActorID     *uuid.UUID `json:"actor_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}
