package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/service"
	"gear-guard/pkg/utils"
)

type AuthServiceInterface interface {
	Signup(ctx context.Context, payload dto.SignupDTO) (*dto.AuthResponseDTO, error)
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context, principal authz.Principal) (*entities.User, error)
}

const (
	maxLoginAttempts = 5
	loginLockout     = 15 * time.Minute
)

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	teamRepo  repositories.TeamRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	jwt       service.JWTService
	logger    *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwt service.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{userRepo: userRepo, teamRepo: teamRepo, cacheRepo: cacheRepo, jwt: jwt, logger: logger}
}

// Signup регистрирует пользователя. Роль MANAGER через самостоятельную регистрацию не выдаётся.
func (s *AuthService) Signup(ctx context.Context, payload dto.SignupDTO) (*dto.AuthResponseDTO, error) {
	role := entities.RoleEmployee
	if payload.Role != "" {
		role = entities.Role(payload.Role)
	}
	switch role {
	case entities.RoleEmployee, entities.RoleTechnician:
	case entities.RoleManager:
		return nil, apperrors.NewValidationError("роль MANAGER назначается только администратором")
	default:
		return nil, apperrors.NewValidationError("неизвестная роль: %q", payload.Role)
	}

	user := &entities.User{
		Name:  strings.TrimSpace(payload.Name),
		Email: strings.ToLower(strings.TrimSpace(payload.Email)),
		Role:  role,
	}
	if payload.TeamID.Valid {
		if _, err := s.teamRepo.FindTeam(ctx, payload.TeamID.Uint64); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("команда %d не существует", payload.TeamID.Uint64)
			}
			return nil, err
		}
		user.TeamID = &payload.TeamID.Uint64
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrUserAlreadyExists) {
			s.logger.Error("Ошибка регистрации", zap.String("email", user.Email), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("Пользователь зарегистрирован", zap.Uint64("userID", user.ID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	attemptsKey := fmt.Sprintf("login_attempts:%s", email)

	if raw, err := s.cacheRepo.Get(ctx, attemptsKey); err == nil {
		var attempts int
		if _, err := fmt.Sscan(raw, &attempts); err == nil && attempts >= maxLoginAttempts {
			s.logger.Warn("Вход заблокирован: слишком много попыток", zap.String("email", email))
			return nil, apperrors.NewHttpError(
				http.StatusTooManyRequests,
				fmt.Sprintf("Слишком много попыток. Попробуйте через %d минут.", int(loginLockout.Minutes())),
				nil,
				nil,
			)
		}
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Вход: пользователь не найден", zap.String("email", email))
			s.countFailure(ctx, attemptsKey)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.logger.Warn("Вход: неверный пароль", zap.Uint64("userID", user.ID))
		s.countFailure(ctx, attemptsKey)
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.cacheRepo.Del(ctx, attemptsKey); err != nil {
		s.logger.Warn("Не удалось сбросить счётчик попыток входа", zap.Error(err))
	}
	return s.issue(user)
}

// countFailure увеличивает счётчик неудачных входов; окно блокировки отсчитывается от первой ошибки.
func (s *AuthService) countFailure(ctx context.Context, key string) {
	n, err := s.cacheRepo.Incr(ctx, key)
	if err != nil {
		s.logger.Warn("Не удалось посчитать попытку входа", zap.Error(err))
		return
	}
	if n != 1 {
		return
	}
	// Счётчик без TTL заблокировал бы вход навсегда.
	if err := s.cacheRepo.Expire(ctx, key, loginLockout); err != nil {
		s.logger.Warn("Не удалось задать окно блокировки, счётчик сброшен", zap.String("key", key), zap.Error(err))
		if err := s.cacheRepo.Del(ctx, key); err != nil {
			s.logger.Error("Не удалось удалить счётчик попыток входа", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *AuthService) Me(ctx context.Context, principal authz.Principal) (*entities.User, error) {
	return s.userRepo.FindUserByID(ctx, principal.ID)
}

func (s *AuthService) issue(user *entities.User) (*dto.AuthResponseDTO, error) {
	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("Не удалось подписать токен", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, err
	}
	return &dto.AuthResponseDTO{
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.GetAccessTokenTTL().Seconds()),
		User:        user,
	}, nil
}
