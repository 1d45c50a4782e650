package middleware

import (
	"net/http"

	"vetdesk/internal/common"
	"vetdesk/internal/services"

	"github.com/labstack/echo/v4"
)

type RBACMiddleware struct {
	authzSvc services.AuthzService
}

func NewRBACMiddleware(authzSvc services.AuthzService) *RBACMiddleware {
	return &RBACMiddleware{authzSvc: authzSvc}
}

// RequirePermission rejects requests whose acting user lacks the named
// permission. Tenant scoping and self-action rules still run in the
// service layer; this is only the coarse route guard.
func (m *RBACMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
			}

			hasPermission, err := m.authzSvc.UserHasPermission(ctx, userID, permission)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "error checking permission")
			}
			if !hasPermission {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}

			return next(c)
		}
	}
}
