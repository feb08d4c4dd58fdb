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

var userSelectFields = []string{"u.id", "u.name", "u.email", "u.password", "u.role", "u.team_id", "u.created_at", "u.updated_at"}

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByTeamID(ctx context.Context, teamID uint64) ([]entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) error
}

type UserRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewUserRepository(storage querier, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.TeamID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewPersistenceError("users.scan", err)
	}
	return &user, nil
}

func (r *UserRepository) findOne(ctx context.Context, cond sq.Sqlizer) (*entities.User, error) {
	query, args, err := sq.Select(userSelectFields...).From("users u").
		Where(cond).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("users.find.build", err)
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.id": id})
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, sq.Expr("LOWER(u.email) = LOWER(?)", email))
}

func (r *UserRepository) FindByTeamID(ctx context.Context, teamID uint64) ([]entities.User, error) {
	query, args, err := sq.Select(userSelectFields...).From("users u").
		Where(sq.Eq{"u.team_id": teamID}).
		OrderBy("u.name ASC").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, apperrors.NewPersistenceError("users.by_team.build", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("users.by_team", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("users.by_team.rows", err)
	}
	return users, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	query, args, err := sq.Insert("users").
		Columns("name", "email", "password", "role", "team_id").
		Values(user.Name, user.Email, user.Password, user.Role, user.TeamID).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return apperrors.NewPersistenceError("users.create.build", err)
	}

	if err := r.storage.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		switch code, constraint := pgErrorCode(err); code {
		case pgUniqueViolation:
			return apperrors.ErrUserAlreadyExists
		case pgForeignKeyViolation:
			return apperrors.NewValidationError("связанная запись не найдена (%s)", constraint)
		}
		return apperrors.NewPersistenceError("users.create", err)
	}
	return nil
}
