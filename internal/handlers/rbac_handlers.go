package handlers

import (
	"net/http"

	"vetdesk/internal/services"

	"github.com/labstack/echo/v4"
)

type RBACHandlers struct {
	rbacSvc services.RBACService
}

func NewRBACHandlers(rbacSvc services.RBACService) *RBACHandlers {
	return &RBACHandlers{rbacSvc: rbacSvc}
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ListRoles handles GET /roles.
func (h *RBACHandlers) ListRoles(c echo.Context) error {
	roles, err := h.rbacSvc.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"roles": roles})
}

// ListPermissions handles GET /permissions.
func (h *RBACHandlers) ListPermissions(c echo.Context) error {
	permissions, err := h.rbacSvc.ListPermissions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"permissions": permissions})
}

// ListStaffRoles handles GET /staff/:id/roles.
func (h *RBACHandlers) ListStaffRoles(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	roles, err := h.rbacSvc.ListStaffRoles(c.Request().Context(), actorID, staffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"roles": roles})
}

// AssignRole handles POST /staff/:id/roles.
func (h *RBACHandlers) AssignRole(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	req := new(assignRoleRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	if err := h.rbacSvc.AssignRole(c.Request().Context(), actorID, staffID, req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RevokeRole handles DELETE /staff/:id/roles/:role.
func (h *RBACHandlers) RevokeRole(c echo.Context) error {
	actorID, err := actingUser(c)
	if err != nil {
		return err
	}
	staffID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.rbacSvc.RevokeRole(c.Request().Context(), actorID, staffID, c.Param("role")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
