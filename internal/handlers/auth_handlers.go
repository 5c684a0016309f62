package handlers

import (
	"net/http"

	"dentalops/internal/common"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles login and the identity/capability endpoints.
type AuthHandlers struct {
	authService       services.AuthService
	capabilityService services.CapabilityService
}

func NewAuthHandlers(authService services.AuthService, capabilityService services.CapabilityService) *AuthHandlers {
	return &AuthHandlers{
		authService:       authService,
		capabilityService: capabilityService,
	}
}

// Login handles POST /v1/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return common.SendValidationError(c, "password", err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /v1/me
func (h *AuthHandlers) Me(c echo.Context) error {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.RespondError(c, common.ErrUnauthorized)
	}
	resp := map[string]interface{}{
		"user_id": principal.UserID,
		"kind":    principal.Kind,
		"roles":   principal.Roles,
	}
	if principal.TenantID != nil {
		resp["tenant_id"] = principal.TenantID
	}
	return c.JSON(http.StatusOK, resp)
}

// MyCapabilities handles GET /v1/me/capabilities
func (h *AuthHandlers) MyCapabilities(c echo.Context) error {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.RespondError(c, common.ErrUnauthorized)
	}
	caps, err := h.capabilityService.CapabilitiesFor(c.Request().Context(), principal)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"capabilities": caps,
	})
}
