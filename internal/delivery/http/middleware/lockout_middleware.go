package middleware

import (
	"log/slog"
	"time"

	deliverycontext "cinescope/internal/delivery/context"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/domain/service"
	"cinescope/internal/util"

	"github.com/labstack/echo/v4"
)

// LockoutMiddleware rejects sign-in attempts for a temporarily locked
// email and IP pair before any credential is checked. The lock applies
// even when the password is correct.
type LockoutMiddleware struct {
	guard  service.LockoutGuard
	logger *slog.Logger
}

// NewLockoutMiddleware is the constructor for LockoutMiddleware.
func NewLockoutMiddleware(guard service.LockoutGuard, logger *slog.Logger) *LockoutMiddleware {
	return &LockoutMiddleware{guard: guard, logger: logger}
}

// CheckLock is the middleware function. A guard that cannot decide lets
// the request pass.
func (m *LockoutMiddleware) CheckLock(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := peekEmail(c)
		if email == "" {
			return next(c)
		}

		ctx := c.Request().Context()
		status := m.guard.CheckLock(ctx, email, c.RealIP())

		if status.Decision == service.DecisionUnknown {
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Warn("Lockout check failed, allowing request",
				slog.Any("error", status.Err))

			return next(c)
		}

		if status.Locked() {
			retryAfter := util.FormatDuration(status.RemainingLock(time.Now()))

			return domainerrors.ErrAccountLocked.WithDetails("tente novamente em " + retryAfter)
		}

		return next(c)
	}
}
