package handlers

import (
	"net/http"

	"vetdesk/internal/common"
	"vetdesk/internal/models"
	"vetdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StaffHandlers translates HTTP requests into staff lifecycle
// operations. The acting user always comes from the JWT context, never
// from the payload.
type StaffHandlers struct {
	staffSvc services.StaffService
	authSvc  services.AuthService
}

func NewStaffHandlers(staffSvc services.StaffService, authSvc services.AuthService) *StaffHandlers {
	return &StaffHandlers{staffSvc: staffSvc, authSvc: authSvc}
}

func actingUser(c echo.Context) (uuid.UUID, error) {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	}
	return userID, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a valid UUID")
	}
	return id, nil
}

// CreateStaff handles POST /clinics/:clinicID/staff.
func (h *StaffHandlers) CreateStaff(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	clinicID, err := pathUUID(c, "clinicID")
	if err != nil {
		return err
	}

	req := new(services.CreateStaffRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	req.ClinicID = clinicID

	profile, err := h.staffSvc.Create(c.Request().Context(), actorID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, profile)
}

// GetStaff handles GET /staff/:id.
func (h *StaffHandlers) GetStaff(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.staffSvc.GetByID(c.Request().Context(), actorID, staffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

type updateStaffResponse struct {
	Profile *models.StaffProfile  `json:"profile"`
	Token   *models.TokenResponse `json:"token,omitempty"`
}

// UpdateStaff handles PUT /staff/:id. When the actor renames their own
// account the response carries a replacement token pair, since the old
// session identifies a username that no longer exists.
func (h *StaffHandlers) UpdateStaff(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	req := new(services.UpdateStaffRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	result, err := h.staffSvc.Update(c.Request().Context(), actorID, staffID, req)
	if err != nil {
		return err
	}

	resp := &updateStaffResponse{Profile: result.Profile}
	if result.UsernameChanged && actorID == staffID {
		token, err := h.authSvc.GenerateTokens(c.Request().Context(), actorID, result.Profile.ClinicID)
		if err != nil {
			return err
		}
		resp.Token = token
	}
	return c.JSON(http.StatusOK, resp)
}

// ActivateStaff handles POST /staff/:id/activate.
func (h *StaffHandlers) ActivateStaff(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.staffSvc.Activate(c.Request().Context(), actorID, staffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// DeactivateStaff handles POST /staff/:id/deactivate.
func (h *StaffHandlers) DeactivateStaff(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.staffSvc.Deactivate(c.Request().Context(), actorID, staffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

type listStaffRequest struct {
	Active *bool `query:"active"`
	Limit  int   `query:"limit"`
	Offset int   `query:"offset"`
}

// ListStaff handles GET /clinics/:clinicID/staff.
func (h *StaffHandlers) ListStaff(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	clinicID, err := pathUUID(c, "clinicID")
	if err != nil {
		return err
	}

	var req listStaffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	profiles, err := h.staffSvc.ListByClinic(c.Request().Context(), actorID, clinicID, req.Active, req.Limit, req.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"staff":  profiles,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}
