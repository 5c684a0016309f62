package models

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type UserRole struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	RoleID   uuid.UUID `json:"role_id" db:"role_id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`
}

// RolePermission binds a permission to a role. Position preserves the order
// permissions were granted in; capability merging is order-sensitive for
// display metadata.
type RolePermission struct {
	RoleID       uuid.UUID `json:"role_id" db:"role_id"`
	PermissionID uuid.UUID `json:"permission_id" db:"permission_id"`
	Position     int       `json:"position" db:"position"`
}
