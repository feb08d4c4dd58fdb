package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/services"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/metrics"
	"gear-guard/pkg/utils"
)

type MaintenanceRequestController struct {
	requestService  services.MaintenanceRequestServiceInterface
	durationService services.DurationLoggerInterface
	metrics         *metrics.Metrics
	timeout         time.Duration
	logger          *zap.Logger
}

func NewMaintenanceRequestController(
	requestService services.MaintenanceRequestServiceInterface,
	durationService services.DurationLoggerInterface,
	m *metrics.Metrics,
	timeout time.Duration,
	logger *zap.Logger,
) *MaintenanceRequestController {
	return &MaintenanceRequestController{
		requestService:  requestService,
		durationService: durationService,
		metrics:         m,
		timeout:         timeout,
		logger:          logger,
	}
}

func (c *MaintenanceRequestController) GetRequests(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter.DateFrom, filter.DateTo, err = utils.ParseDateRange(ctx.Request().URL.Query(), time.Local)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	list, total, err := c.requestService.ListRequests(reqCtx, principal, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, list, "Список заявок получен", http.StatusOK, total)
}

func (c *MaintenanceRequestController) FindRequest(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	req, err := c.requestService.FindRequest(reqCtx, principal, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Заявка найдена", http.StatusOK)
}

func (c *MaintenanceRequestController) CreateRequest(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateMaintenanceRequestDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	req, err := c.requestService.CreateRequest(reqCtx, principal, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Заявка создана", http.StatusCreated)
}

// UpdateStage: при сбое каскада стадия уже сохранена, поэтому заявка отдаётся в теле вместе с 500.
func (c *MaintenanceRequestController) UpdateStage(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateStageDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	stage := entities.RequestStage(payload.Stage)
	req, err := c.requestService.TransitionStage(reqCtx, principal, id, stage)

	var cascadeErr *apperrors.CascadeError
	if errors.As(err, &cascadeErr) {
		c.metrics.StageTransition(string(stage))
		c.metrics.CascadeFailure()
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(
			http.StatusInternalServerError,
			"Стадия обновлена, но статус оборудования не изменён",
			err,
			req,
		), c.logger)
	}
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.metrics.StageTransition(string(stage))
	return utils.SuccessResponse(ctx, req, "Стадия заявки обновлена", http.StatusOK)
}

func (c *MaintenanceRequestController) LogDuration(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.LogDurationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	hours, err := services.ParseHours(payload.RawHours())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	req, err := c.durationService.LogDuration(reqCtx, principal, id, hours)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Время по заявке записано", http.StatusOK)
}
