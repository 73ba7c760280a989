package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"itad-system/internal/entities"
	"itad-system/pkg/contextkeys"
	apperrors "itad-system/pkg/errors"
)

func ContextWithTimeout(ctx echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request().Context(), timeout)
}

// PrincipalFromCtx returns the account resolved by the auth middleware.
func PrincipalFromCtx(ctx context.Context) (*entities.UserAccount, error) {
	principal, ok := ctx.Value(contextkeys.PrincipalKey).(*entities.UserAccount)
	if !ok || principal == nil {
		return nil, apperrors.ErrPrincipalNotFoundInContext
	}
	return principal, nil
}

func WithPrincipal(ctx context.Context, principal *entities.UserAccount) context.Context {
	return context.WithValue(ctx, contextkeys.PrincipalKey, principal)
}

// PrincipalID is a convenience for audit columns; nil when no principal is attached.
func PrincipalID(ctx context.Context) *string {
	p, err := PrincipalFromCtx(ctx)
	if err != nil {
		return nil
	}
	return &p.ID
}
