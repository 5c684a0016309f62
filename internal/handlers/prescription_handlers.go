package handlers

import (
	"net/http"
	"strconv"
	"time"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
)

// PrescriptionHandlers handles HTTP requests for prescriptions.
type PrescriptionHandlers struct {
	prescriptionService services.PrescriptionService
}

func NewPrescriptionHandlers(prescriptionService services.PrescriptionService) *PrescriptionHandlers {
	return &PrescriptionHandlers{prescriptionService: prescriptionService}
}

// Create handles POST /v1/prescriptions
func (h *PrescriptionHandlers) Create(c echo.Context) error {
	principal, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		PatientID    string                  `json:"patient_id"`
		Medications  []models.MedicationLine `json:"medications"`
		Instructions *string                 `json:"instructions"`
		ValidUntil   *time.Time              `json:"valid_until"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	patientID, err := common.ValidateUUID(req.PatientID, "patient_id")
	if err != nil {
		return common.SendValidationError(c, "patient_id", err.Error())
	}
	if err := common.ValidateOptionalString(req.Instructions, "instructions", 2000); err != nil {
		return common.SendValidationError(c, "instructions", err.Error())
	}

	prescription := &models.Prescription{
		TenantID:     tenantID,
		PatientID:    patientID,
		DoctorID:     principal.UserID,
		Medications:  models.MedicationLines{Lines: req.Medications},
		Instructions: req.Instructions,
		ValidUntil:   req.ValidUntil,
	}
	if err := h.prescriptionService.Create(c.Request().Context(), prescription); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, prescription)
}

// Get handles GET /v1/prescriptions/:id
func (h *PrescriptionHandlers) Get(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	prescription, err := h.prescriptionService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, prescription)
}

// List handles GET /v1/prescriptions
func (h *PrescriptionHandlers) List(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	prescriptions, err := h.prescriptionService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"prescriptions": prescriptions,
		"limit":         limit,
		"offset":        offset,
	})
}

// Fulfill handles POST /v1/prescriptions/:id/fulfill
func (h *PrescriptionHandlers) Fulfill(c echo.Context) error {
	principal, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	prescription, err := h.prescriptionService.Fulfill(c.Request().Context(), tenantID, id, principal.UserID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, prescription)
}

// Cancel handles POST /v1/prescriptions/:id/cancel
func (h *PrescriptionHandlers) Cancel(c echo.Context) error {
	principal, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	prescription, err := h.prescriptionService.Cancel(c.Request().Context(), tenantID, id, principal.UserID, req.Reason)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, prescription)
}
