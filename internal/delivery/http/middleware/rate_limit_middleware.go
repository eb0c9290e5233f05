package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"cinescope/config"
	deliverycontext "cinescope/internal/delivery/context"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// RateLimitMiddleware applies per-route request quotas. It owns the
// fail-open policy: a guard that cannot decide lets the request pass.
type RateLimitMiddleware struct {
	limiter service.RateLimiter
	cfg     *config.RateLimitConfig
	logger  *slog.Logger
}

// KeyFunc derives the quota key for a request. An empty key skips the check.
type KeyFunc func(c echo.Context) string

// NewRateLimitMiddleware is the constructor for RateLimitMiddleware.
func NewRateLimitMiddleware(limiter service.RateLimiter, cfg *config.Config, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		cfg:     cfg.RateLimit,
		logger:  logger,
	}
}

// Limit builds the middleware for one route. The route name prefixes the
// quota key so routes never share counters.
func (m *RateLimitMiddleware) Limit(route string, limit config.RouteLimit, key KeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			k := key(c)
			if k == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			result := m.limiter.Check(ctx, route+":"+k, limit.Max, limit.Window)

			if result.Decision == service.DecisionUnknown {
				deliverycontext.GetLoggerOrDefault(ctx, m.logger).Warn("Rate limit check failed, allowing request",
					slog.String("route", route), slog.Any("error", result.Err))

				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if result.Decision == service.DecisionReject {
				return domainerrors.ErrRateLimited
			}

			return next(c)
		}
	}
}

// ByIP keys the quota on the client address.
func ByIP(c echo.Context) string {
	return c.RealIP()
}

// ByEmailAndIP keys the quota on the email in the JSON body plus the
// client address, so one attacker cannot exhaust another user's quota.
// Falls back to the address alone when no email is present.
func ByEmailAndIP(c echo.Context) string {
	email := peekEmail(c)
	if email == "" {
		return c.RealIP()
	}

	return email + "|" + c.RealIP()
}

// peekEmail reads the email field from the request body and restores the
// body for the handler's own bind.
func peekEmail(c echo.Context) string {
	req := c.Request()
	if req.Body == nil {
		return ""
	}

	body, err := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var peek struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return ""
	}

	return strings.TrimSpace(strings.ToLower(peek.Email))
}
