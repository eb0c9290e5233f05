package handler

import (
	"log/slog"
	"net/http"
	"time"

	"cinescope/internal/delivery/http/middleware"
	"cinescope/internal/delivery/http/response"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for account lifecycle handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

type deleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type reEnableAccountRequest struct {
	Email string `json:"email" validate:"required"`
}

// Delete soft-deletes the authenticated account after re-verifying the
// password.
func (h *AccountHandler) Delete(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	var req deleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrPasswordRequired
	}
	if err := requireFields(c, &req, map[string]error{"Password": domainerrors.ErrPasswordRequired}); err != nil {
		return err
	}

	output, err := h.uc.Delete(c.Request().Context(), &usecase.DeleteAccountInput{
		Claims:   claims,
		Password: req.Password,
		Meta:     requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, echo.Map{
		"message":      "conta marcada para exclusao",
		"deletionDate": output.DeletionDate.Format(time.RFC3339),
	})
}

// Reactivate restores the authenticated pending-deletion account.
func (h *AccountHandler) Reactivate(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	err := h.uc.Reactivate(c.Request().Context(), &usecase.ReactivateAccountInput{
		Claims: claims,
		Meta:   requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, echo.Map{"message": "conta reativada com sucesso"})
}

// ReEnable restores a pending-deletion account by email, for owners who
// can no longer open a session.
func (h *AccountHandler) ReEnable(c echo.Context) error {
	var req reEnableAccountRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrEmailRequired
	}
	if err := requireFields(c, &req, map[string]error{"Email": domainerrors.ErrEmailRequired}); err != nil {
		return err
	}

	err := h.uc.ReEnableByEmail(c.Request().Context(), &usecase.ReEnableAccountInput{
		Email: req.Email,
		Meta:  requestMeta(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, http.StatusOK, echo.Map{"message": "conta reativada com sucesso"})
}
