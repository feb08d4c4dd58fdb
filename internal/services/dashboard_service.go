package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/repositories"
	"gear-guard/pkg/constants"
	"gear-guard/pkg/types"
)

type DashboardServiceInterface interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
}

type DashboardService struct {
	repo     repositories.DashboardRepositoryInterface
	teamRepo repositories.TeamRepositoryInterface
	logger   *zap.Logger
}

func NewDashboardService(
	repo repositories.DashboardRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{repo: repo, teamRepo: teamRepo, logger: logger}
}

// GetDashboardStats: нагрузка по командам считается только по незакрытым (не REPAIRED) заявкам,
// распределение по типам по всем заявкам.
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	var (
		byTeam, byType []types.GroupCount
		wg             sync.WaitGroup
		errs           []error
		mu             sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) {
		byTeam, err = s.repo.GroupRequestsBy(ctx, repositories.GroupByTeam, sq.NotEq{"mr.stage": string(entities.StageRepaired)})
		return
	})
	addTask(func() (err error) {
		byType, err = s.repo.GroupRequestsBy(ctx, repositories.GroupByType, nil)
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("Ошибка загрузки дашборда", zap.Error(errs[0]))
		return nil, errs[0]
	}

	teamStats, err := s.buildTeamStats(ctx, byTeam)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStatsDTO{
		TeamStats: teamStats,
		TypeStats: buildTypeStats(byType),
	}, nil
}

func (s *DashboardService) buildTeamStats(ctx context.Context, groups []types.GroupCount) ([]dto.TeamStatDTO, error) {
	ids := make([]uint64, 0, len(groups))
	for _, g := range groups {
		if g.Key == nil {
			continue
		}
		id, err := strconv.ParseUint(*g.Key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("team_id %q: %w", *g.Key, err)
		}
		ids = append(ids, id)
	}

	names := map[uint64]string{}
	if len(ids) > 0 {
		var err error
		if names, err = s.teamRepo.FindNamesByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}

	stats := make([]dto.TeamStatDTO, 0, len(groups))
	var unassigned int64
	for _, g := range groups {
		if g.Key == nil {
			unassigned += g.Count
			continue
		}
		id, _ := strconv.ParseUint(*g.Key, 10, 64)
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("Team #%d", id)
		}
		stats = append(stats, dto.TeamStatDTO{Name: name, Count: g.Count})
	}
	if unassigned > 0 {
		stats = append(stats, dto.TeamStatDTO{Name: constants.UnassignedTeamName, Count: unassigned})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats, nil
}

func buildTypeStats(groups []types.GroupCount) []dto.TypeStatDTO {
	counts := make(map[string]int64, len(groups))
	for _, g := range groups {
		if g.Key != nil {
			counts[*g.Key] += g.Count
		}
	}
	stats := make([]dto.TypeStatDTO, 0, len(entities.AllRequestTypes))
	for _, t := range entities.AllRequestTypes {
		stats = append(stats, dto.TypeStatDTO{Name: string(t), Value: counts[string(t)]})
	}
	return stats
}
