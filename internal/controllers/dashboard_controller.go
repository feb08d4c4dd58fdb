package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/repositories"
	"gear-guard/internal/services"
	"gear-guard/pkg/utils"
)

// DashboardController отдаёт статистику, кэшируя её на время TTL.
// Снимок привязан к поколению кэша, которое слушатель увеличивает при каждом изменении заявок.
type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	cache            *repositories.DashboardStatsCache
	timeout          time.Duration
	logger           *zap.Logger
}

func NewDashboardController(
	ds services.DashboardServiceInterface,
	cache *repositories.DashboardStatsCache,
	timeout time.Duration,
	logger *zap.Logger,
) *DashboardController {
	return &DashboardController{
		dashboardService: ds,
		cache:            cache,
		timeout:          timeout,
		logger:           logger,
	}
}

func (ctrl *DashboardController) GetDashboardStats(c echo.Context) error {
	reqCtx, cancel := utils.Ctx(c, ctrl.timeout)
	defer cancel()

	gen, cacheable := ctrl.generation(reqCtx)
	if cacheable {
		if stats, ok := ctrl.fromCache(reqCtx, gen); ok {
			return utils.SuccessResponse(c, stats, "Статистика для дашборда получена", http.StatusOK)
		}
	}

	stats, err := ctrl.dashboardService.GetDashboardStats(reqCtx)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if cacheable {
		// Поколение прочитано до подсчёта: если заявки успели измениться, снимок ляжет под старый ключ.
		if raw, err := json.Marshal(stats); err == nil {
			if err := ctrl.cache.Put(reqCtx, gen, raw); err != nil {
				ctrl.logger.Warn("Не удалось закэшировать статистику дашборда", zap.Error(err))
			}
		}
	}
	return utils.SuccessResponse(c, stats, "Статистика для дашборда получена", http.StatusOK)
}

func (ctrl *DashboardController) generation(ctx context.Context) (int64, bool) {
	if !ctrl.cache.Enabled() {
		return 0, false
	}
	gen, err := ctrl.cache.Generation(ctx)
	if err != nil {
		ctrl.logger.Warn("Ошибка чтения поколения кэша дашборда", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (ctrl *DashboardController) fromCache(ctx context.Context, gen int64) (*dto.DashboardStatsDTO, bool) {
	raw, err := ctrl.cache.Get(ctx, gen)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			ctrl.logger.Warn("Ошибка чтения кэша дашборда", zap.Error(err))
		}
		return nil, false
	}
	var stats dto.DashboardStatsDTO
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}
