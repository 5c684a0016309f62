package handlers

import (
	"net/http"
	"strconv"

	"dentalops/internal/common"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers exposes tenant provisioning and lifecycle control. Every
// route here sits behind the tenants:manage capability, which only system
// owners hold.
type TenantHandlers struct {
	lifecycleService services.TenantLifecycleService
	authService      services.AuthService
}

func NewTenantHandlers(lifecycleService services.TenantLifecycleService, authService services.AuthService) *TenantHandlers {
	return &TenantHandlers{
		lifecycleService: lifecycleService,
		authService:      authService,
	}
}

func actorID(c echo.Context) (*common.Principal, error) {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return nil, common.ErrUnauthorized
	}
	return principal, nil
}

// Create handles POST /v1/tenants
func (h *TenantHandlers) Create(c echo.Context) error {
	principal, err := actorID(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	tenant, err := h.lifecycleService.Create(c.Request().Context(), req.Name, principal.UserID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

// Get handles GET /v1/tenants/:id
func (h *TenantHandlers) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	tenant, err := h.lifecycleService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// List handles GET /v1/tenants
func (h *TenantHandlers) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	tenants, err := h.lifecycleService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *TenantHandlers) bindReason(c echo.Context) string {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return ""
	}
	return req.Reason
}

// KillSwitch handles POST /v1/tenants/:id/kill-switch
func (h *TenantHandlers) KillSwitch(c echo.Context) error {
	principal, err := actorID(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenant, err := h.lifecycleService.KillSwitch(c.Request().Context(), id, principal.UserID, h.bindReason(c))
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// EnableMaintenance handles POST /v1/tenants/:id/maintenance
func (h *TenantHandlers) EnableMaintenance(c echo.Context) error {
	principal, err := actorID(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenant, err := h.lifecycleService.EnableMaintenance(c.Request().Context(), id, principal.UserID, h.bindReason(c))
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// Reactivate handles POST /v1/tenants/:id/reactivate
func (h *TenantHandlers) Reactivate(c echo.Context) error {
	principal, err := actorID(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenant, err := h.lifecycleService.Reactivate(c.Request().Context(), id, principal.UserID, h.bindReason(c))
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// CreateUser handles POST /v1/tenants/:id/users
func (h *TenantHandlers) CreateUser(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var input services.NewUserInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	input.TenantID = &id

	user, err := h.authService.CreateUser(c.Request().Context(), &input)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}
