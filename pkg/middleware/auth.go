package middleware

import (
	"context"
	"errors"
	"strings"

	"gear-guard/internal/authz"
	"gear-guard/internal/entities"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/service"
	"gear-guard/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserLookup — источник актуальных данных пользователя (роль и команда не берутся из токена).
type UserLookup interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	users      UserLookup
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, users UserLookup, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		users:      users,
		logger:     logger,
	}
}

// Auth проверяет Bearer токен, загружает пользователя и кладёт Principal в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		principal, err := m.Resolve(c.Request().Context(), parts[1])
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		c.SetRequest(c.Request().WithContext(utils.WithPrincipal(c.Request().Context(), principal)))
		return next(c)
	}
}

// Resolve превращает токен в Principal. Используется и websocket-контроллером.
func (m *AuthMiddleware) Resolve(ctx context.Context, token string) (authz.Principal, error) {
	claims, err := m.jwtService.ValidateToken(token)
	if err != nil {
		m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
		return authz.Principal{}, err
	}

	user, err := m.users.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			m.logger.Warn("AuthMiddleware: пользователь из токена не найден", zap.Uint64("userID", claims.UserID))
			return authz.Principal{}, apperrors.ErrInvalidToken
		}
		return authz.Principal{}, err
	}

	m.logger.Debug("AuthMiddleware: Пользователь успешно аутентифицирован",
		zap.Uint64("userID", user.ID), zap.String("role", string(user.Role)))
	return authz.PrincipalFromUser(user), nil
}
