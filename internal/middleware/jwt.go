package middleware

import (
	"strings"

	"dentalops/internal/common"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware turns a bearer token into a request principal. Requests
// without a valid credential never reach a handler.
type AuthMiddleware struct {
	authService services.AuthService
}

func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return common.RespondError(c, common.ErrUnauthorized)
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			principal, err := m.authService.ResolvePrincipal(c.Request().Context(), tokenString)
			if err != nil {
				return common.RespondError(c, err)
			}

			ctx := common.WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
