package handlers

import (
	"net/http"

	"dentalops/internal/common"
	"dentalops/internal/services"

	"github.com/labstack/echo/v4"
)

// TimelineHandlers serves the merged patient timeline.
type TimelineHandlers struct {
	timelineService services.TimelineService
}

func NewTimelineHandlers(timelineService services.TimelineService) *TimelineHandlers {
	return &TimelineHandlers{timelineService: timelineService}
}

// GetTimeline handles GET /v1/patients/:id/timeline
func (h *TimelineHandlers) GetTimeline(c echo.Context) error {
	principal, tenantID, err := principalTenant(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	patientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	events, err := h.timelineService.GetTimeline(c.Request().Context(), principal, tenantID, patientID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id": patientID,
		"events":     events,
	})
}
