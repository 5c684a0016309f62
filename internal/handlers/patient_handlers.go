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

// PatientHandlers handles HTTP requests for patient records.
type PatientHandlers struct {
	patientService services.PatientService
}

func NewPatientHandlers(patientService services.PatientService) *PatientHandlers {
	return &PatientHandlers{patientService: patientService}
}

// Create handles POST /v1/patients
func (h *PatientHandlers) Create(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		UserID      *string    `json:"user_id"`
		FirstName   string     `json:"first_name"`
		LastName    string     `json:"last_name"`
		DateOfBirth *time.Time `json:"date_of_birth"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	patient := &models.Patient{
		TenantID:    tenantID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
	}
	if req.UserID != nil {
		userID, err := common.ValidateUUID(*req.UserID, "user_id")
		if err != nil {
			return common.SendValidationError(c, "user_id", err.Error())
		}
		patient.UserID = &userID
	}

	if err := h.patientService.Create(c.Request().Context(), patient); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, patient)
}

// Get handles GET /v1/patients/:id
func (h *PatientHandlers) Get(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	patient, err := h.patientService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, patient)
}

// List handles GET /v1/patients
func (h *PatientHandlers) List(c echo.Context) error {
	_, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	patients, err := h.patientService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patients": patients,
		"limit":    limit,
		"offset":   offset,
	})
}
