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

// AuditHandlers exposes the read side of the audit trail.
type AuditHandlers struct {
	auditService services.AuditService
}

func NewAuditHandlers(auditService services.AuditService) *AuditHandlers {
	return &AuditHandlers{auditService: auditService}
}

// List handles GET /v1/tenants/:id/audit
func (h *AuditHandlers) List(c echo.Context) error {
	tenantID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	filters := &models.AuditFilters{}
	if v := c.QueryParam("subject_type"); v != "" {
		filters.SubjectType = &v
	}
	if v := c.QueryParam("subject_id"); v != "" {
		filters.SubjectID = &v
	}
	if v := c.QueryParam("action"); v != "" {
		filters.Action = &v
	}
	if v := c.QueryParam("actor_id"); v != "" {
		actorID, err := common.ValidateUUID(v, "actor_id")
		if err != nil {
			return common.SendValidationError(c, "actor_id", err.Error())
		}
		filters.ActorID = &actorID
	}
	if v := c.QueryParam("start_date"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return common.SendValidationError(c, "start_date", "must be RFC3339")
		}
		filters.StartDate = &start
	}
	if v := c.QueryParam("end_date"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return common.SendValidationError(c, "end_date", "must be RFC3339")
		}
		filters.EndDate = &end
	}
	if filters.StartDate != nil && filters.EndDate != nil {
		if err := common.ValidateDateRange(*filters.StartDate, *filters.EndDate); err != nil {
			return common.SendValidationError(c, "date_range", err.Error())
		}
	}
	filters.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filters.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	entries, err := h.auditService.List(c.Request().Context(), tenantID, filters)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}
