// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"cinescope/config"
	"cinescope/internal/delivery/http/middleware"
	"cinescope/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config         *config.Config
	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimit      *middleware.RateLimitMiddleware
	Lockout        *middleware.LockoutMiddleware
	RequestID      *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg            *config.Config
	authHandler    *handler.AuthHandler
	accountHandler *handler.AccountHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimit      *middleware.RateLimitMiddleware
	lockout        *middleware.LockoutMiddleware
	requestID      *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:            params.Config,
		authHandler:    params.AuthHandler,
		accountHandler: params.AccountHandler,
		authMiddleware: params.AuthMiddleware,
		rateLimit:      params.RateLimit,
		lockout:        params.Lockout,
		requestID:      params.RequestID,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestID.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	limits := r.cfg.RateLimit

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.SignUp,
			r.rateLimit.Limit("signup", limits.Signup, middleware.ByIP))

		authGroup.POST("/signin", r.authHandler.SignIn,
			r.rateLimit.Limit("signin", limits.Signin, middleware.ByIP),
			r.lockout.CheckLock)

		authGroup.POST("/verify", r.authHandler.Verify,
			r.authMiddleware.Authenticate)

		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword,
			r.rateLimit.Limit("forgot-password", limits.ForgotPassword, middleware.ByEmailAndIP))

		authGroup.POST("/check-email", r.authHandler.CheckEmail,
			r.rateLimit.Limit("check-email", limits.CheckEmail, middleware.ByIP))

		authGroup.POST("/reset-password", r.authHandler.ResetPassword,
			r.rateLimit.Limit("reset-password", limits.ResetPassword, middleware.ByIP))

		authGroup.POST("/change-password", r.authHandler.ChangePassword,
			r.authMiddleware.Authenticate)

		authGroup.POST("/delete-account", r.accountHandler.Delete,
			r.authMiddleware.Authenticate)

		authGroup.POST("/reactivate-account", r.accountHandler.Reactivate,
			r.authMiddleware.Authenticate)

		authGroup.POST("/re-enable-account", r.accountHandler.ReEnable)
	}
}
