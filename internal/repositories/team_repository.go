package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gear-guard/internal/entities"
	apperrors "gear-guard/pkg/errors"
)

type TeamRepositoryInterface interface {
	GetTeams(ctx context.Context) ([]entities.Team, error)
	FindTeam(ctx context.Context, id uint64) (*entities.Team, error)
	FindNamesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

type TeamRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewTeamRepository(storage querier, logger *zap.Logger) TeamRepositoryInterface {
	return &TeamRepository{storage: storage, logger: logger}
}

// GetTeams возвращает команды вместе с числом участников и обслуживаемого оборудования.
func (r *TeamRepository) GetTeams(ctx context.Context) ([]entities.Team, error) {
	query, args, err := sq.Select(
		"t.id", "t.name", "t.created_at", "t.updated_at",
		"(SELECT COUNT(*) FROM users u WHERE u.team_id = t.id)",
		"(SELECT COUNT(*) FROM equipment e WHERE e.maintenance_team_id = t.id)",
	).From("teams t").
		OrderBy("t.name ASC").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("teams.list.build", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("teams.list", err)
	}
	defer rows.Close()

	teams := make([]entities.Team, 0)
	for rows.Next() {
		var t entities.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt, &t.MemberCount, &t.EquipmentCount); err != nil {
			return nil, apperrors.NewPersistenceError("teams.scan", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("teams.rows", err)
	}
	return teams, nil
}

func (r *TeamRepository) FindTeam(ctx context.Context, id uint64) (*entities.Team, error) {
	query, args, err := sq.Select("t.id", "t.name", "t.created_at", "t.updated_at").
		From("teams t").
		Where(sq.Eq{"t.id": id}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("teams.find.build", err)
	}

	var t entities.Team
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewPersistenceError("teams.find", err)
	}
	return &t, nil
}

// FindNamesByIDs: отсутствующие id просто не попадают в результат.
func (r *TeamRepository) FindNamesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	names := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	query, args, err := sq.Select("id", "name").From("teams").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("teams.names.build", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("teams.names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   uint64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apperrors.NewPersistenceError("teams.names.scan", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("teams.names.rows", err)
	}
	return names, nil
}
