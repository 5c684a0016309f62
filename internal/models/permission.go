package models

import (
	"time"

	"github.com/google/uuid"
)

// Capability keys gating the clinical operations. Roles are bound to these
// via role_permissions; the capability service is the only code that reads
// the bindings.
const (
	CapPrescriptionsCreate  = "prescriptions:create"
	CapPrescriptionsRead    = "prescriptions:read"
	CapPrescriptionsFulfill = "prescriptions:fulfill"
	CapPrescriptionsCancel  = "prescriptions:cancel"
	CapInventoryRead        = "inventory:read"
	CapInventoryManage      = "inventory:manage"
	CapPatientsManage       = "patients:manage"
	CapTimelineRead         = "timeline:read"
	CapTenantsManage        = "tenants:manage"
	CapAuditRead            = "audit:read"
)

type Permission struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"`
	Label     string    `json:"label" db:"label"`
	Group     string    `json:"group" db:"grp"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Capability is the merged, display-ready form of a permission. Exactly one
// implementation produces these for both access checks and UI gating.
type Capability struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group"`
}
