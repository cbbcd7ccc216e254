package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/staffdesk/personnel-directory/internal/api/metrics"
	"github.com/staffdesk/personnel-directory/internal/core/domain"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

// LoginThrottle records one attempt per request against the email in the
// JSON body and the client IP, and rejects the request with
// domain.ErrTooManyAttempts once the limiter refuses it. A successful login
// clears the counter. Limiter failures are logged and the request proceeds.
// The body is restored for the handler.
func LoginThrottle(limiter ports.LoginLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return err
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			var payload struct {
				Email string `json:"email"`
			}
			if err := json.Unmarshal(body, &payload); err != nil || payload.Email == "" {
				// Malformed payloads are rejected by the handler.
				return next(c)
			}

			clientIP := c.RealIP()
			decision, err := limiter.Allow(req.Context(), payload.Email, clientIP)
			if err != nil {
				log.Warn().Err(err).Msg("login throttle unavailable, allowing request")
				return next(c)
			}
			if !decision.Allowed {
				metrics.LoginThrottledTotal.Inc()
				c.Response().Header().Set(echo.HeaderRetryAfter, retryAfterSeconds(decision))
				return domain.ErrTooManyAttempts
			}

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status == http.StatusOK {
				if err := limiter.Reset(req.Context(), payload.Email, clientIP); err != nil {
					log.Warn().Err(err).Msg("login throttle reset failed")
				}
			}
			return nil
		}
	}
}

func retryAfterSeconds(d ports.ThrottleDecision) string {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
