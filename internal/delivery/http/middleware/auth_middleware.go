package middleware

import (
	"strings"

	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/usecase"

	"github.com/labstack/echo/v4"
)

// keyClaims is the echo context key holding verified token claims.
const keyClaims = "tokenClaims"

// AuthMiddleware authenticates requests with a Firebase bearer token.
type AuthMiddleware struct {
	auth usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(auth usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate validates the bearer token, including the revocation check,
// and stores the claims for handlers.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrTokenInvalid.WrapMessage("cabecalho de autorizacao ausente")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return domainerrors.ErrTokenInvalid.WrapMessage("formato do token invalido, use Bearer")
		}

		claims, err := m.auth.Verify(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(keyClaims, claims)

		return next(c)
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(c echo.Context) (*entity.TokenClaims, bool) {
	claims, ok := c.Get(keyClaims).(*entity.TokenClaims)

	return claims, ok
}
