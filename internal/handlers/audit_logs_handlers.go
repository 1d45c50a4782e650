package handlers

import (
	"net/http"
	"time"

	"vetdesk/internal/common"
	"vetdesk/internal/models"
	"vetdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuditLogsHandlers struct {
	auditSvc services.AuditLogsService
}

func NewAuditLogsHandlers(auditSvc services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditSvc: auditSvc}
}

type listAuditLogsRequest struct {
	Action    *string    `query:"action"`
	ActorID   *uuid.UUID `query:"actor_id"`
	StartDate *time.Time `query:"start_date"`
	EndDate   *time.Time `query:"end_date"`
	Limit     int        `query:"limit"`
	Offset    int        `query:"offset"`
}

// ListAuditLogs handles GET /clinics/:clinicID/audit-logs. Admins can
// only read their own clinic's trail.
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	clinicID, err := pathUUID(c, "clinicID")
	if err != nil {
		return err
	}

	actorClinicID, ok := common.GetClinicIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "clinic not resolved")
	}
	if actorClinicID != clinicID {
		return echo.NewHTTPError(http.StatusForbidden, "cannot view audit logs of another clinic")
	}

	var req listAuditLogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	logs, err := h.auditSvc.ListByClinic(c.Request().Context(), clinicID, &models.AuditLogFilters{
		Action:    req.Action,
		ActorID:   req.ActorID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"audit_logs": logs})
}
