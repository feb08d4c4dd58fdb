package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/dto"
	"gear-guard/internal/services"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/utils"
)

// EquipmentImporter загружает оборудование из xlsx.
type EquipmentImporter interface {
	Import(ctx context.Context, r io.Reader) (*services.ImportResult, error)
}

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	importer         EquipmentImporter
	timeout          time.Duration
	logger           *zap.Logger
}

func NewEquipmentController(
	service services.EquipmentServiceInterface,
	importer EquipmentImporter,
	timeout time.Duration,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService: service,
		importer:         importer,
		timeout:          timeout,
		logger:           logger,
	}
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	res, total, err := c.equipmentService.GetEquipments(reqCtx, filter)
	if err != nil {
		c.logger.Error("GetEquipments: ошибка при получении списка оборудования", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список оборудования успешно получен", http.StatusOK, total)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
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

	res, err := c.equipmentService.FindEquipment(reqCtx, principal, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование найдено", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateEquipmentDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	res, err := c.equipmentService.CreateEquipment(reqCtx, principal, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование успешно создано", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateEquipmentDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	res, err := c.equipmentService.UpdateEquipment(reqCtx, principal, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование успешно обновлено", http.StatusOK)
}

// ImportEquipment принимает multipart-поле "file" с книгой Excel. Только для менеджеров.
func (c *EquipmentController) ImportEquipment(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if !authz.For(principal).CanManageReferenceData() {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Файл не передан (поле 'file')", err, nil), c.logger)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer src.Close()

	// импорт может быть долгим, поэтому таймаут запроса не применяется
	res, err := c.importer.Import(ctx.Request().Context(), src)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.logger.Info("Импорт оборудования завершен",
		zap.Uint64("userID", principal.ID),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))
	return utils.SuccessResponse(ctx, res, "Импорт завершен", http.StatusOK)
}
