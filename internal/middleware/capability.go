package middleware

import (
	"dentalops/internal/common"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CapabilityMiddleware gates routes on merged capabilities. It goes through
// the same resolver the capability listing endpoint uses, so what a client
// is shown and what it may call can never drift apart.
type CapabilityMiddleware struct {
	capabilityService services.CapabilityService
}

func NewCapabilityMiddleware(capabilityService services.CapabilityService) *CapabilityMiddleware {
	return &CapabilityMiddleware{capabilityService: capabilityService}
}

func (m *CapabilityMiddleware) Require(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return common.RespondError(c, common.ErrUnauthorized)
			}

			allowed, err := m.capabilityService.HasCapability(c.Request().Context(), principal, key)
			if err != nil {
				log.Error().Err(err).Str("capability", key).Msg("capability check failed")
				return common.RespondError(c, err)
			}
			if !allowed {
				return common.RespondError(c, common.ErrForbidden)
			}
			return next(c)
		}
	}
}

// RequireForStaff gates staff principals on a capability but lets patient
// principals pass; the handler's service is expected to scope patients to
// their own records.
func (m *CapabilityMiddleware) RequireForStaff(key string) echo.MiddlewareFunc {
	check := m.Require(key)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		gated := check(next)
		return func(c echo.Context) error {
			principal, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return common.RespondError(c, common.ErrUnauthorized)
			}
			if principal.Kind == common.KindPatient {
				return next(c)
			}
			return gated(c)
		}
	}
}
