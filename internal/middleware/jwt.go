package middleware

import (
	"net/http"

	"vetdesk/internal/common"
	"vetdesk/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig builds the echo-jwt configuration for access tokens.
// Signature and expiry checks happen inside echo-jwt; pair it with
// ResolveStaffContext to get the identity into the request context.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		},
	}
}

// ResolveStaffContext reads the token echo-jwt already validated and
// resolves the acting user and their clinic into the request context.
func ResolveStaffContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject in token")
			}
			clinicID, err := uuid.Parse(claims.ClinicID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid clinic_id in token")
			}

			ctx := common.WithUserID(c.Request().Context(), userID)
			ctx = common.WithClinicID(ctx, clinicID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
