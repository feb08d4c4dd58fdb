package services

import (
	"context"

	"go.uber.org/zap"

	"gear-guard/internal/entities"
	"gear-guard/internal/repositories"
)

type TeamServiceInterface interface {
	GetTeams(ctx context.Context) ([]entities.Team, error)
	FindTeam(ctx context.Context, id uint64) (*entities.Team, error)
}

type TeamService struct {
	teamRepository      repositories.TeamRepositoryInterface
	userRepository      repositories.UserRepositoryInterface
	equipmentRepository repositories.EquipmentRepositoryInterface
	logger              *zap.Logger
}

func NewTeamService(
	teamRepository repositories.TeamRepositoryInterface,
	userRepository repositories.UserRepositoryInterface,
	equipmentRepository repositories.EquipmentRepositoryInterface,
	logger *zap.Logger,
) *TeamService {
	return &TeamService{
		teamRepository:      teamRepository,
		userRepository:      userRepository,
		equipmentRepository: equipmentRepository,
		logger:              logger,
	}
}

func (s *TeamService) GetTeams(ctx context.Context) ([]entities.Team, error) {
	return s.teamRepository.GetTeams(ctx)
}

// FindTeam возвращает команду с участниками и обслуживаемым оборудованием.
func (s *TeamService) FindTeam(ctx context.Context, id uint64) (*entities.Team, error) {
	team, err := s.teamRepository.FindTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	members, err := s.userRepository.FindByTeamID(ctx, id)
	if err != nil {
		return nil, err
	}
	equipment, err := s.equipmentRepository.FindByTeamID(ctx, id)
	if err != nil {
		return nil, err
	}

	team.Members = members
	team.Equipment = equipment
	team.MemberCount = int64(len(members))
	team.EquipmentCount = int64(len(equipment))
	return team, nil
}
