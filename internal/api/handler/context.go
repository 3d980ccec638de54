package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentoplus/hr-system/internal/api/middleware"
	"github.com/talentoplus/hr-system/internal/core/domain"
)

// authClaims is the request-scoped identity injected by the Auth middleware.
type authClaims struct {
	PrincipalID int
	Email       string
	Role        domain.Role
	// EmployeeID is nil for principals without a linked employee record.
	EmployeeID *int
}

// ctxClaims extracts the auth claims injected by the Auth middleware and
// fast-fails when they are absent (presence proves the middleware ran).
func ctxClaims(c echo.Context) (*authClaims, error) {
	role, _ := c.Get(middleware.CtxRole).(string)
	if role == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	claims := &authClaims{Role: domain.Role(role)}
	claims.PrincipalID, _ = c.Get(middleware.CtxPrincipalID).(int)
	claims.Email, _ = c.Get(middleware.CtxEmail).(string)
	if id, ok := c.Get(middleware.CtxEmployeeID).(int); ok {
		claims.EmployeeID = &id
	}
	return claims, nil
}

// canAccessEmployee reports whether the caller may read the employee record
// with the given id: admins always, employees only their own.
func (a *authClaims) canAccessEmployee(id int) bool {
	if a.Role == domain.RoleAdmin {
		return true
	}
	return a.EmployeeID != nil && *a.EmployeeID == id
}
