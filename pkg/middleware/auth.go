package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/entities"
	"itad-system/pkg/contextkeys"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/service"
	"itad-system/pkg/utils"
)

// PrincipalResolver maps a verified external identity to the local account, creating it on first sight.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, externalID, name, email string) (*entities.UserAccount, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	accounts   PrincipalResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, accounts PrincipalResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		accounts:   accounts,
		logger:     logger,
	}
}

// Auth verifies the bearer token and resolves the Principal once for the whole request.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug("AuthMiddleware: empty Authorization header", zap.String("path", c.Path()))
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			m.logger.Warn("AuthMiddleware: malformed Authorization header")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			m.logger.Warn("AuthMiddleware: token rejected", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := c.Request().Context()
		principal, err := m.accounts.ResolvePrincipal(ctx, claims.Subject, claims.Name, claims.Email)
		if err != nil {
			m.logger.Error("AuthMiddleware: failed to resolve principal", zap.String("subject", claims.Subject), zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx = context.WithValue(ctx, contextkeys.ClaimsKey, claims)
		ctx = utils.WithPrincipal(ctx, principal)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
