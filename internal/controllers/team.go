package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/services"
	"gear-guard/pkg/utils"
)

type TeamController struct {
	teamService services.TeamServiceInterface
	timeout     time.Duration
	logger      *zap.Logger
}

func NewTeamController(teamService services.TeamServiceInterface, timeout time.Duration, logger *zap.Logger) *TeamController {
	return &TeamController{teamService: teamService, timeout: timeout, logger: logger}
}

func (c *TeamController) GetTeams(ctx echo.Context) error {
	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	teams, err := c.teamService.GetTeams(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, teams, "Список команд получен", http.StatusOK)
}

func (c *TeamController) FindTeam(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	team, err := c.teamService.FindTeam(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, team, "Команда найдена", http.StatusOK)
}
