package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant status lifecycle. Transitions happen only through the lifecycle
// service, always paired with an audit entry in the same transaction.
const (
	TenantActive      = "active"
	TenantSuspended   = "suspended"
	TenantFrozen      = "frozen"
	TenantMaintenance = "maintenance"
)

type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidTenantStatus reports whether s is a known tenant status.
func ValidTenantStatus(s string) bool {
	switch s {
	case TenantActive, TenantSuspended, TenantFrozen, TenantMaintenance:
		return true
	}
	return false
}
