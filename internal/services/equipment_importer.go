package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gear-guard/internal/entities"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
)

// ImportResult — итог загрузки оборудования из xlsx.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type importColumns struct {
	name, serial, department, location, team int
}

type EquipImportService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	logger        *zap.Logger
}

func NewEquipImportService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	logger *zap.Logger,
) *EquipImportService {
	return &EquipImportService{equipmentRepo: equipmentRepo, teamRepo: teamRepo, logger: logger}
}

// Import ищет строку заголовков (нужны колонки с названием и серийным номером) на любом листе
// и создаёт оборудование по каждой следующей строке. Уже существующие серийные номера пропускаются.
func (s *EquipImportService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("не удалось открыть файл Excel: %v", err)
	}
	defer f.Close()

	rows, header, cols, err := findHeader(f)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.GetTeams(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		name := cell(row, cols.name)
		serial := cell(row, cols.serial)
		if name == "" || isTrash(name) {
			continue
		}
		if serial == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: пустой серийный номер", lineNum))
			continue
		}

		eq := &entities.Equipment{
			Name:         name,
			SerialNumber: serial,
			Department:   cell(row, cols.department),
			Location:     cell(row, cols.location),
			Status:       entities.EquipmentActive,
		}
		if teamName := cell(row, cols.team); teamName != "" {
			if id := fuzzyFindTeam(teamName, teams); id != 0 {
				eq.MaintenanceTeamID = &id
			} else {
				s.logger.Warn("Команда не найдена, привязка пропущена", zap.Int("line", lineNum), zap.String("team", teamName))
			}
		}

		if err := s.equipmentRepo.CreateEquipment(ctx, eq); err != nil {
			if errors.Is(err, apperrors.ErrValidation) {
				result.Skipped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", lineNum, err))
			continue
		}
		result.Created++
	}

	s.logger.Info("Импорт оборудования завершён",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func findHeader(f *excelize.File) ([][]string, int, importColumns, error) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for rIdx, row := range rows {
			cols := importColumns{name: -1, serial: -1, department: -1, location: -1, team: -1}
			for cIdx, colName := range row {
				c := strings.ToLower(strings.TrimSpace(colName))
				switch {
				case strings.Contains(c, "serial") || strings.Contains(c, "серийн"):
					cols.serial = cIdx
				case strings.Contains(c, "name") || strings.Contains(c, "назван") || strings.Contains(c, "наимен"):
					cols.name = cIdx
				case strings.Contains(c, "department") || strings.Contains(c, "отдел"):
					cols.department = cIdx
				case strings.Contains(c, "location") || strings.Contains(c, "место") || strings.Contains(c, "адрес"):
					cols.location = cIdx
				case strings.Contains(c, "team") || strings.Contains(c, "команд"):
					cols.team = cIdx
				}
			}
			if cols.name != -1 && cols.serial != -1 {
				return rows, rIdx, cols, nil
			}
		}
	}
	return nil, 0, importColumns{}, apperrors.NewValidationError("не найдена шапка таблицы: нужны колонки с названием и серийным номером")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func fuzzyFindTeam(name string, teams []entities.Team) uint64 {
	clean := cleanString(name)
	if clean == "" {
		return 0
	}
	for _, t := range teams {
		cleanDB := cleanString(t.Name)
		if cleanDB == clean || strings.Contains(cleanDB, clean) || strings.Contains(clean, cleanDB) {
			return t.ID
		}
	}
	return 0
}

func cleanString(in string) string {
	replacer := strings.NewReplacer(
		"команда", "",
		"team", "",
		"\"", "",
		"«", "",
		"»", "",
		" ", "",
		".", "",
		"-", "",
	)
	return strings.TrimSpace(replacer.Replace(strings.ToLower(in)))
}

func isTrash(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return v == "" || strings.Contains(v, "итого") || strings.Contains(v, "всего") || strings.Contains(v, "total")
}
