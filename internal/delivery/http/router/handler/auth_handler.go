// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"cinescope/internal/delivery/http/middleware"
	"cinescope/internal/delivery/http/response"
	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: logger,
	}
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type changePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

// requireFields runs the echo validator over the bound request and maps
// the first violated field onto the route's business error code.
func requireFields(c echo.Context, req any, byField map[string]error) error {
	err := c.Validate(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if mapped, ok := byField[fieldErrs[0].Field()]; ok {
			return mapped
		}
	}

	return err
}

// SignUp handles account creation.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrEmailPasswordRequired
	}
	if err := requireFields(c, &req, map[string]error{
		"Email":    domainerrors.ErrEmailPasswordRequired,
		"Password": domainerrors.ErrEmailPasswordRequired,
		"Name":     domainerrors.ErrNameRequired,
	}); err != nil {
		return err
	}

	output, err := h.uc.SignUp(c.Request().Context(), &usecase.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Meta:     requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusCreated, sessionFields(output))
}

// SignIn handles the password grant.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrEmailPasswordRequired
	}
	if err := requireFields(c, &req, map[string]error{
		"Email":    domainerrors.ErrEmailPasswordRequired,
		"Password": domainerrors.ErrEmailPasswordRequired,
	}); err != nil {
		return err
	}

	output, err := h.uc.SignIn(c.Request().Context(), &usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
		Meta:     requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, sessionFields(output))
}

// Verify reports the claims of a valid bearer token. The token has already
// been checked by the auth middleware.
func (h *AuthHandler) Verify(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	return response.OK(c, http.StatusOK, echo.Map{
		"user": echo.Map{
			"uid":   claims.UID,
			"email": claims.Email,
		},
	})
}

// ForgotPassword triggers the reset mail. The response never reveals
// whether the address is registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrEmailRequired
	}
	if err := requireFields(c, &req, map[string]error{"Email": domainerrors.ErrEmailRequired}); err != nil {
		return err
	}

	err := h.uc.ForgotPassword(c.Request().Context(), &usecase.ForgotPasswordInput{
		Email: req.Email,
		Meta:  requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, echo.Map{
		"message": "se o email estiver cadastrado, um link de redefinicao foi enviado",
	})
}

// CheckEmail reports whether an address is registered.
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrEmailRequired
	}
	if err := requireFields(c, &req, map[string]error{"Email": domainerrors.ErrEmailRequired}); err != nil {
		return err
	}

	output, err := h.uc.CheckEmail(c.Request().Context(), &usecase.CheckEmailInput{Email: req.Email})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, echo.Map{"exists": output.Exists})
}

// ResetPassword sets a new password for the account with the given email.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrEmailRequired
	}
	if err := requireFields(c, &req, map[string]error{
		"Email":       domainerrors.ErrEmailRequired,
		"NewPassword": domainerrors.ErrPasswordRequired,
	}); err != nil {
		return err
	}

	err := h.uc.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Email:       req.Email,
		NewPassword: req.NewPassword,
		Meta:        requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, echo.Map{"message": "senha redefinida com sucesso"})
}

// ChangePassword sets a new password for the authenticated account.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrPasswordRequired
	}
	if err := requireFields(c, &req, map[string]error{"NewPassword": domainerrors.ErrPasswordRequired}); err != nil {
		return err
	}

	err := h.uc.ChangePassword(c.Request().Context(), &usecase.ChangePasswordInput{
		Claims:      claims,
		NewPassword: req.NewPassword,
		Meta:        requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, echo.Map{"message": "senha alterada com sucesso"})
}

func requestMeta(c echo.Context) usecase.RequestMeta {
	return usecase.RequestMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func sessionFields(output *usecase.SessionOutput) echo.Map {
	return echo.Map{
		"user":         userPayload(output.User),
		"idToken":      output.IDToken,
		"refreshToken": output.RefreshToken,
		"expiresIn":    int64(output.ExpiresIn.Seconds()),
	}
}

func userPayload(user *entity.IdentityUser) echo.Map {
	return echo.Map{
		"uid":           user.UID,
		"name":          user.DisplayName,
		"email":         user.Email,
		"emailVerified": user.EmailVerified,
	}
}
