package repositories

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gear-guard/internal/entities"
	db "gear-guard/internal/infrastructure/bd"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/types"
)

const equipmentSelectFields = "e.id, e.name, e.serial_number, e.department, e.location, e.description, e.status, e.maintenance_team_id, e.purchase_date, e.warranty_expiration, e.created_at, e.updated_at"

var equipmentAllowedFields = map[string]string{
	"id":                  "e.id",
	"name":                "e.name",
	"status":              "e.status",
	"department":          "e.department",
	"maintenance_team_id": "e.maintenance_team_id",
	"team_id":             "e.maintenance_team_id",
	"created_at":          "e.created_at",
}

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	FindByTeamID(ctx context.Context, teamID uint64) ([]entities.Equipment, error)
	CreateEquipment(ctx context.Context, eq *entities.Equipment) error
	UpdateEquipment(ctx context.Context, eq *entities.Equipment) error
	UpdateStatus(ctx context.Context, id uint64, status entities.EquipmentStatus) error
}

type EquipmentRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewEquipmentRepository(storage querier, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var eq entities.Equipment
	err := row.Scan(
		&eq.ID, &eq.Name, &eq.SerialNumber, &eq.Department, &eq.Location, &eq.Description,
		&eq.Status, &eq.MaintenanceTeamID, &eq.PurchaseDate, &eq.WarrantyExpiration,
		&eq.CreatedAt, &eq.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	base := db.ApplySearch(sq.Select().From("equipment e"), filter.Search, "e.name", "e.serial_number")

	countSQL, countArgs, err := db.ApplyFilters(base.Columns("COUNT(*)"), filter, equipmentAllowedFields).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, apperrors.NewPersistenceError("equipment.count.build", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewPersistenceError("equipment.count", err)
	}
	if total == 0 {
		return []entities.Equipment{}, 0, nil
	}

	listBuilder := db.ApplyListParams(base.Columns(equipmentSelectFields), filter, equipmentAllowedFields)
	if len(filter.Sort) == 0 {
		listBuilder = listBuilder.OrderBy("e.name ASC")
	}
	query, args, err := listBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, apperrors.NewPersistenceError("equipment.list.build", err)
	}

	list, err := r.queryList(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *EquipmentRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]entities.Equipment, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("equipment.list", err)
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("equipment.scan", err)
		}
		list = append(list, *eq)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("equipment.rows", err)
	}
	return list, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query, args, err := sq.Select(equipmentSelectFields).From("equipment e").
		Where(sq.Eq{"e.id": id}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("equipment.find.build", err)
	}

	eq, err := scanEquipment(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewPersistenceError("equipment.find", err)
	}
	return eq, nil
}

func (r *EquipmentRepository) FindByTeamID(ctx context.Context, teamID uint64) ([]entities.Equipment, error) {
	query, args, err := sq.Select(equipmentSelectFields).From("equipment e").
		Where(sq.Eq{"e.maintenance_team_id": teamID}).
		OrderBy("e.name ASC").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("equipment.by_team.build", err)
	}
	return r.queryList(ctx, query, args...)
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, eq *entities.Equipment) error {
	query, args, err := sq.Insert("equipment").
		Columns("name", "serial_number", "department", "location", "description", "status",
			"maintenance_team_id", "purchase_date", "warranty_expiration").
		Values(eq.Name, eq.SerialNumber, eq.Department, eq.Location, eq.Description, eq.Status,
			eq.MaintenanceTeamID, eq.PurchaseDate, eq.WarrantyExpiration).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return apperrors.NewPersistenceError("equipment.create.build", err)
	}

	if err := r.storage.QueryRow(ctx, query, args...).Scan(&eq.ID, &eq.CreatedAt, &eq.UpdatedAt); err != nil {
		return mapEquipmentWriteError("equipment.create", err)
	}
	return nil
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, eq *entities.Equipment) error {
	query, args, err := sq.Update("equipment").
		Set("name", eq.Name).
		Set("serial_number", eq.SerialNumber).
		Set("department", eq.Department).
		Set("location", eq.Location).
		Set("description", eq.Description).
		Set("status", eq.Status).
		Set("maintenance_team_id", eq.MaintenanceTeamID).
		Set("purchase_date", eq.PurchaseDate).
		Set("warranty_expiration", eq.WarrantyExpiration).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": eq.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return apperrors.NewPersistenceError("equipment.update.build", err)
	}

	if err := r.storage.QueryRow(ctx, query, args...).Scan(&eq.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return mapEquipmentWriteError("equipment.update", err)
	}
	return nil
}

// UpdateStatus — каскадная запись при списании.
func (r *EquipmentRepository) UpdateStatus(ctx context.Context, id uint64, status entities.EquipmentStatus) error {
	query, args, err := sq.Update("equipment").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return apperrors.NewPersistenceError("equipment.update_status.build", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return apperrors.NewPersistenceError("equipment.update_status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func mapEquipmentWriteError(op string, err error) error {
	switch code, constraint := pgErrorCode(err); code {
	case pgUniqueViolation:
		return apperrors.NewValidationError("оборудование с таким серийным номером уже существует")
	case pgForeignKeyViolation:
		return apperrors.NewValidationError("связанная запись не найдена (%s)", constraint)
	}
	return apperrors.NewPersistenceError(op, err)
}
