package handlers

import (
	"net/http"
	"strconv"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
)

// InventoryHandlers handles HTTP requests for the stock ledger.
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

// Create handles POST /v1/inventory
func (h *InventoryHandlers) Create(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		Name             string `json:"name"`
		SKU              string `json:"sku"`
		Quantity         int    `json:"quantity"`
		ReorderThreshold int    `json:"reorder_threshold"`
		Unit             string `json:"unit"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	item := &models.InventoryItem{
		TenantID:         tenantID,
		Name:             req.Name,
		SKU:              req.SKU,
		Quantity:         req.Quantity,
		ReorderThreshold: req.ReorderThreshold,
		Unit:             req.Unit,
	}
	if err := h.inventoryService.Create(c.Request().Context(), item); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// Get handles GET /v1/inventory/:id
func (h *InventoryHandlers) Get(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	item, err := h.inventoryService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// List handles GET /v1/inventory
func (h *InventoryHandlers) List(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	items, err := h.inventoryService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

// LowStock handles GET /v1/inventory/low-stock
func (h *InventoryHandlers) LowStock(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	items, err := h.inventoryService.ListLowStock(c.Request().Context(), tenantID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// Adjust handles POST /v1/inventory/:id/adjust
func (h *InventoryHandlers) Adjust(c echo.Context) error {
	principal, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	item, err := h.inventoryService.Adjust(c.Request().Context(), tenantID, id, req.Delta, req.Reason, principal.UserID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}
