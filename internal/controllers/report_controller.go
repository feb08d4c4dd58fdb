package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/services"
	"gear-guard/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	timeout       time.Duration
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, timeout time.Duration, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, timeout: timeout, logger: logger}
}

// ExportRequests принимает те же фильтры, что и список заявок, но без пагинации.
func (c *ReportController) ExportRequests(ctx echo.Context) error {
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

	f, err := c.reportService.ExportRequests(reqCtx, principal, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("requests_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
