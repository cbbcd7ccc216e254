package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staffdesk/personnel-directory/internal/api/metrics"
	"github.com/staffdesk/personnel-directory/internal/core/domain"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

// IdentityKey is the echo context key holding the verified domain.Identity.
const IdentityKey = "identity"

// AuthGate requires a valid bearer token and stores the verified identity in
// the echo context. A missing or garbled header fails with
// domain.ErrUnauthenticated, a token that does not verify with the error
// returned by the token service.
func AuthGate(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			identity, err := verify(tokens, raw)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// OptionalAuth behaves like AuthGate when an Authorization header is sent and
// lets anonymous requests through otherwise.
func OptionalAuth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			raw, err := bearerToken(header)
			if err != nil {
				return err
			}

			identity, err := verify(tokens, raw)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by AuthGate or OptionalAuth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(IdentityKey).(domain.Identity)
	return identity, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrUnauthenticated
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrUnauthenticated
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}

func verify(tokens ports.TokenService, raw string) (domain.Identity, error) {
	identity, err := tokens.Verify(raw)
	if err != nil {
		metrics.TokenRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		if !errors.Is(err, domain.ErrInvalidToken) {
			err = errors.Join(domain.ErrInvalidToken, err)
		}
		return domain.Identity{}, err
	}
	return identity, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignature):
		return "signature"
	default:
		return "malformed"
	}
}
