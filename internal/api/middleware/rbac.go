package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/staffdesk/personnel-directory/internal/core/domain"
)

// RequireRole lets the request through only when the identity stored by
// AuthGate holds one of the allowed roles. It must run after AuthGate.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[identity.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// AdminGate restricts the route to admin accounts.
func AdminGate() echo.MiddlewareFunc {
	return RequireRole(domain.RoleAdmin)
}
