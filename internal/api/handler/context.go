package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/staffdesk/personnel-directory/internal/api/middleware"
	"github.com/staffdesk/personnel-directory/internal/core/domain"
)

// callerIdentity returns the identity injected by AuthGate. Its absence
// means the route was mounted without the gate, so the request is treated as
// unauthenticated rather than anonymous.
func callerIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.SubjectID == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return identity, nil
}

// optionalCaller returns the identity injected by OptionalAuth, or nil for
// anonymous requests.
func optionalCaller(c echo.Context) *domain.Identity {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil
	}
	return &identity
}
