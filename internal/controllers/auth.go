package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/services"
	"gear-guard/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	timeout     time.Duration
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, timeout time.Duration, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, timeout: timeout, logger: logger}
}

func (c *AuthController) Signup(ctx echo.Context) error {
	var payload dto.SignupDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	res, err := c.authService.Signup(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Регистрация прошла успешно", http.StatusCreated)
}

func (c *AuthController) Login(ctx echo.Context) error {
	var payload dto.LoginDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	res, err := c.authService.Login(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Вход выполнен", http.StatusOK)
}

func (c *AuthController) Me(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	user, err := c.authService.Me(reqCtx, principal)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, user, "Текущий пользователь", http.StatusOK)
}
