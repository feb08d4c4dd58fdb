package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gear-guard/internal/entities"
	db "gear-guard/internal/infrastructure/bd"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/types"
)

const requestTable = "maintenance_requests mr"

var requestSelectColumns = []string{
	"mr.id", "mr.subject", "mr.description", "mr.type", "mr.priority", "mr.stage",
	"mr.equipment_id", "mr.team_id", "mr.technician_id", "mr.created_by_id",
	"mr.scheduled_date", "mr.started_at", "mr.completed_at", "mr.duration_hours",
	"mr.created_at", "mr.updated_at",
	"e.name", "t.name", "u.name",
}

// Поля, доступные в filter[...] и sort[...].
var requestAllowedFields = map[string]string{
	"id":             "mr.id",
	"type":           "mr.type",
	"stage":          "mr.stage",
	"priority":       "mr.priority",
	"team_id":        "mr.team_id",
	"equipment_id":   "mr.equipment_id",
	"technician_id":  "mr.technician_id",
	"scheduled_date": "mr.scheduled_date",
	"created_at":     "mr.created_at",
	"updated_at":     "mr.updated_at",
}

type MaintenanceRequestRepositoryInterface interface {
	GetRequests(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error)
	FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error)
	FindByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.MaintenanceRequest, error)
	CreateRequest(ctx context.Context, req *entities.MaintenanceRequest) error
	UpdateStage(ctx context.Context, req *entities.MaintenanceRequest) error
	UpdateDuration(ctx context.Context, id uint64, hours float64, updatedAt time.Time) error
}

type MaintenanceRequestRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewMaintenanceRequestRepository(storage querier, logger *zap.Logger) MaintenanceRequestRepositoryInterface {
	return &MaintenanceRequestRepository{storage: storage, logger: logger}
}

func baseRequestSelect(columns ...string) sq.SelectBuilder {
	return sq.Select(columns...).
		From(requestTable).
		LeftJoin("equipment e ON e.id = mr.equipment_id").
		LeftJoin("teams t ON t.id = mr.team_id").
		LeftJoin("users u ON u.id = mr.technician_id")
}

func scanRequest(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var req entities.MaintenanceRequest
	err := row.Scan(
		&req.ID, &req.Subject, &req.Description, &req.Type, &req.Priority, &req.Stage,
		&req.EquipmentID, &req.TeamID, &req.TechnicianID, &req.CreatedByID,
		&req.ScheduledDate, &req.StartedAt, &req.CompletedAt, &req.DurationHours,
		&req.CreatedAt, &req.UpdatedAt,
		&req.EquipmentName, &req.TeamName, &req.TechnicianName,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *MaintenanceRequestRepository) GetRequests(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if scope != nil {
			b = b.Where(scope)
		}
		return db.ApplyDateRange(b, "mr.scheduled_date", filter.DateFrom, filter.DateTo)
	}

	countBuilder := db.ApplyFilters(where(sq.Select("COUNT(*)").From(requestTable)), filter, requestAllowedFields)
	countSQL, countArgs, err := countBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, apperrors.NewPersistenceError("maintenance_requests.count.build", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewPersistenceError("maintenance_requests.count", err)
	}
	if total == 0 {
		return []entities.MaintenanceRequest{}, 0, nil
	}

	listBuilder := db.ApplyListParams(where(baseRequestSelect(requestSelectColumns...)), filter, requestAllowedFields)
	if len(filter.Sort) == 0 {
		listBuilder = listBuilder.OrderBy("mr.created_at DESC", "mr.id DESC")
	}

	query, args, err := listBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, apperrors.NewPersistenceError("maintenance_requests.list.build", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ошибка выборки заявок", zap.Error(err), zap.String("query", query))
		return nil, 0, apperrors.NewPersistenceError("maintenance_requests.list", err)
	}
	defer rows.Close()

	result := make([]entities.MaintenanceRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, apperrors.NewPersistenceError("maintenance_requests.scan", err)
		}
		result = append(result, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewPersistenceError("maintenance_requests.rows", err)
	}

	return result, total, nil
}

func (r *MaintenanceRequestRepository) FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	query, args, err := baseRequestSelect(requestSelectColumns...).
		Where(sq.Eq{"mr.id": id}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("maintenance_requests.find.build", err)
	}

	req, err := scanRequest(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewPersistenceError("maintenance_requests.find", err)
	}
	return req, nil
}

func (r *MaintenanceRequestRepository) FindByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.MaintenanceRequest, error) {
	filter := types.Filter{Filter: map[string]interface{}{"equipment_id": equipmentID}}
	list, _, err := r.GetRequests(ctx, filter, nil)
	return list, err
}

// CreateRequest заполняет ID и временные метки переданной заявки.
func (r *MaintenanceRequestRepository) CreateRequest(ctx context.Context, req *entities.MaintenanceRequest) error {
	query, args, err := sq.Insert("maintenance_requests").
		Columns("subject", "description", "type", "priority", "stage", "equipment_id",
			"team_id", "technician_id", "created_by_id", "scheduled_date").
		Values(req.Subject, req.Description, req.Type, req.Priority, req.Stage, req.EquipmentID,
			req.TeamID, req.TechnicianID, req.CreatedByID, req.ScheduledDate).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return apperrors.NewPersistenceError("maintenance_requests.create.build", err)
	}

	if err := r.storage.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		if code, constraint := pgErrorCode(err); code == pgForeignKeyViolation {
			return apperrors.NewValidationError("связанная запись не найдена (%s)", constraint)
		}
		return apperrors.NewPersistenceError("maintenance_requests.create", err)
	}
	return nil
}

// UpdateStage пишет stage, started_at, completed_at и updated_at из переданной заявки.
func (r *MaintenanceRequestRepository) UpdateStage(ctx context.Context, req *entities.MaintenanceRequest) error {
	query, args, err := sq.Update("maintenance_requests").
		Set("stage", req.Stage).
		Set("started_at", req.StartedAt).
		Set("completed_at", req.CompletedAt).
		Set("updated_at", req.UpdatedAt).
		Where(sq.Eq{"id": req.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return apperrors.NewPersistenceError("maintenance_requests.update_stage.build", err)
	}
	return r.execOne(ctx, "maintenance_requests.update_stage", query, args...)
}

func (r *MaintenanceRequestRepository) UpdateDuration(ctx context.Context, id uint64, hours float64, updatedAt time.Time) error {
	query, args, err := sq.Update("maintenance_requests").
		Set("duration_hours", hours).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return apperrors.NewPersistenceError("maintenance_requests.update_duration.build", err)
	}
	return r.execOne(ctx, "maintenance_requests.update_duration", query, args...)
}

func (r *MaintenanceRequestRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return apperrors.NewPersistenceError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}
