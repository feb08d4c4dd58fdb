package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/types"
)

// GroupField — колонка, по которой разрешено группировать заявки.
type GroupField string

const (
	GroupByTeam  GroupField = "team_id"
	GroupByType  GroupField = "type"
	GroupByStage GroupField = "stage"
)

var groupColumns = map[GroupField]string{
	GroupByTeam:  "mr.team_id",
	GroupByType:  "mr.type",
	GroupByStage: "mr.stage",
}

type DashboardRepositoryInterface interface {
	GroupRequestsBy(ctx context.Context, field GroupField, condition sq.Sqlizer) ([]types.GroupCount, error)
}

type DashboardRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewDashboardRepository(storage querier, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

func applySecurity(b sq.SelectBuilder, securityCondition sq.Sqlizer) sq.SelectBuilder {
	if securityCondition != nil {
		return b.Where(securityCondition)
	}
	return b
}

// GroupRequestsBy считает заявки по значению колонки. NULL-группа возвращается с Key == nil.
func (r *DashboardRepository) GroupRequestsBy(ctx context.Context, field GroupField, condition sq.Sqlizer) ([]types.GroupCount, error) {
	col, ok := groupColumns[field]
	if !ok {
		return nil, fmt.Errorf("группировка по %q не поддерживается", field)
	}

	base := sq.Select(col+"::text AS key", "COUNT(*) AS count").
		From(requestTable).
		GroupBy(col).
		OrderBy(col)
	base = applySecurity(base, condition)

	query, args, err := base.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ошибка группировки заявок", zap.String("field", string(field)), zap.Error(err))
		return nil, apperrors.NewPersistenceError("group requests", err)
	}
	defer rows.Close()

	result := make([]types.GroupCount, 0)
	for rows.Next() {
		var gc types.GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, apperrors.NewPersistenceError("scan group", err)
		}
		result = append(result, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("group requests", err)
	}
	return result, nil
}
