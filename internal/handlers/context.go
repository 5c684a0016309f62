package handlers

import (
	"dentalops/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// principalTenant extracts the request principal and its tenant. Routes for
// tenant-scoped resources must never run without both.
func principalTenant(c echo.Context) (*common.Principal, uuid.UUID, error) {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return nil, uuid.Nil, common.ErrUnauthorized
	}
	if principal.TenantID == nil {
		return nil, uuid.Nil, common.ErrForbidden
	}
	return principal, *principal.TenantID, nil
}
