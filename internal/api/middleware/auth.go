package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talentoplus/hr-system/internal/core/ports"
)

// Context keys populated by Auth for downstream handlers.
const (
	CtxPrincipalID = "principal_id"
	CtxEmail       = "email"
	CtxRole        = "role"
	CtxEmployeeID  = "employee_id"
)

// Auth validates the bearer token with expiry enforced and injects the
// verified claims into the request context. Token verification goes through
// the signer's strict path only; the expiry-ignoring path is reserved for
// the refresh flow and is not reachable from here.
func Auth(signer ports.TokenSigner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := signer.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxPrincipalID, claims.PrincipalID)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, string(claims.Role))
			if claims.EmployeeID != nil {
				c.Set(CtxEmployeeID, *claims.EmployeeID)
			}

			return next(c)
		}
	}
}
