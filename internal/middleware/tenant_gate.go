package middleware

import (
	"dentalops/internal/common"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantGateMiddleware enforces the tenant lifecycle on every tenant-scoped
// route. The gate reads tenant status fresh on each request; a kill switch
// flipped mid-flight takes effect on the next request, not eventually.
type TenantGateMiddleware struct {
	lifecycleService services.TenantLifecycleService
}

func NewTenantGateMiddleware(lifecycleService services.TenantLifecycleService) *TenantGateMiddleware {
	return &TenantGateMiddleware{lifecycleService: lifecycleService}
}

func (m *TenantGateMiddleware) Gate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return common.RespondError(c, common.ErrUnauthorized)
			}
			if principal.IsSystemOwner() {
				return next(c)
			}
			if principal.TenantID == nil {
				return common.RespondError(c, common.ErrForbidden)
			}
			if err := m.lifecycleService.CheckAccess(c.Request().Context(), *principal.TenantID, principal); err != nil {
				return common.RespondError(c, err)
			}
			return next(c)
		}
	}
}
