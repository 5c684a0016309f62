package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
)

// Principal kinds mirror users.kind.
const (
	KindStaff       = "staff"
	KindPatient     = "patient"
	KindSystemOwner = "system_owner"
)

// Principal is the resolved identity behind a verified credential. TenantID is
// nil for system owners; every tenant-scoped operation must reject a nil
// TenantID before touching tenant data.
type Principal struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Kind     string
	Roles    []string
}

// IsSystemOwner reports whether the principal operates outside tenant scope.
func (p *Principal) IsSystemOwner() bool {
	return p.TenantID == nil && p.Kind == KindSystemOwner
}

// GetPrincipalFromContext extracts the request principal from the context.
func GetPrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(*Principal)
	return principal, ok
}

// WithPrincipal binds a principal to the request context.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}
