// Файл: pkg/utils/context.go
package utils

import (
	"context"
	"time"

	"gear-guard/internal/authz"
	"gear-guard/pkg/contextkeys"
	apperrors "gear-guard/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoggerKey — ключ echo.Context, под которым лежит логгер запроса.
const LoggerKey = "logger"

// Ctx ограничивает вызовы хранилища из обработчика таймаутом.
func Ctx(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout)
}

func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, p.ID)
	return context.WithValue(ctx, contextkeys.PrincipalKey, p)
}

func GetPrincipalFromContext(ctx context.Context) (authz.Principal, error) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(authz.Principal)
	if !ok {
		return authz.Principal{}, apperrors.ErrPrincipalNotFoundInContext
	}
	return p, nil
}

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	id, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || id == 0 {
		return 0, apperrors.ErrPrincipalNotFoundInContext
	}
	return id, nil
}

// LoggerFrom возвращает логгер запроса или fallback, если его нет в контексте.
func LoggerFrom(c echo.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Get(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}
