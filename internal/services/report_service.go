package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/entities"
	"gear-guard/pkg/types"
	"gear-guard/pkg/utils"
)

const reportSheet = "Заявки"

var reportHeaders = []string{
	"ID", "Тема", "Тип", "Приоритет", "Стадия", "Оборудование", "Команда", "Техник",
	"Плановая дата", "Просрочена", "Часы", "Создана", "Завершена",
}

type ReportServiceInterface interface {
	ExportRequests(ctx context.Context, principal authz.Principal, filter types.Filter) (*excelize.File, error)
}

// ReportService выгружает в xlsx те же заявки, что пользователь видит в списке.
type ReportService struct {
	requests MaintenanceRequestServiceInterface
	logger   *zap.Logger
}

func NewReportService(requests MaintenanceRequestServiceInterface, logger *zap.Logger) *ReportService {
	return &ReportService{requests: requests, logger: logger}
}

func (s *ReportService) ExportRequests(ctx context.Context, principal authz.Principal, filter types.Filter) (*excelize.File, error) {
	filter.WithPagination = false
	list, _, err := s.requests.ListRequests(ctx, principal, filter)
	if err != nil {
		return nil, err
	}

	f, err := buildRequestsWorkbook(list)
	if err != nil {
		s.logger.Error("Ошибка формирования xlsx", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Отчёт по заявкам сформирован", zap.Int("rows", len(list)), zap.Uint64("principalID", principal.ID))
	return f, nil
}

func requestRow(req entities.MaintenanceRequest) []interface{} {
	const dateFmt = "02.01.2006"
	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(dateFmt)
	}
	overdue := "нет"
	if req.IsOverdue {
		overdue = "да"
	}
	var hours interface{} = ""
	if req.DurationHours != nil {
		hours = *req.DurationHours
	}

	return []interface{}{
		req.ID, req.Subject, string(req.Type), string(req.Priority), string(req.Stage),
		utils.SafeDeref(req.EquipmentName), utils.SafeDeref(req.TeamName), utils.SafeDeref(req.TechnicianName),
		formatTime(req.ScheduledDate), overdue, hours, formatTime(req.CreatedAt), formatTime(req.CompletedAt),
	}
}

func buildRequestsWorkbook(list []entities.MaintenanceRequest) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(reportHeaders), 1)
	if err := f.SetCellStyle(reportSheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, req := range list {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := requestRow(req)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("строка %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(reportSheet, "B", "B", 40)
	_ = f.SetColWidth(reportSheet, "F", "H", 25)
	_ = f.SetColWidth(reportSheet, "I", "M", 15)
	return f, nil
}
