package middleware

import (
	"time"

	"gear-guard/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InjectLogger кладёт в контекст логгер с request_id и пишет строку о каждом запросе.
// Должен стоять после RequestID.
func InjectLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqLogger := logger.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
			c.Set(utils.LoggerKey, reqLogger)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
			}
			if status >= 500 {
				reqLogger.Warn("HTTP запрос", fields...)
			} else {
				reqLogger.Debug("HTTP запрос", fields...)
			}
			return nil
		}
	}
}
