package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/dto"
	"gear-guard/internal/entities"
	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/eventbus"
	"gear-guard/pkg/types"
	"gear-guard/pkg/utils"
)

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, principal authz.Principal, id uint64) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, principal authz.Principal, payload dto.CreateEquipmentDTO) (*entities.Equipment, error)
	UpdateEquipment(ctx context.Context, principal authz.Principal, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error)
}

type EquipmentService struct {
	equipmentRepository repositories.EquipmentRepositoryInterface
	requestRepository   repositories.MaintenanceRequestRepositoryInterface
	bus                 eventbus.Publisher
	logger              *zap.Logger
	now                 func() time.Time
}

func NewEquipmentService(
	equipmentRepository repositories.EquipmentRepositoryInterface,
	requestRepository repositories.MaintenanceRequestRepositoryInterface,
	bus eventbus.Publisher,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		equipmentRepository: equipmentRepository,
		requestRepository:   requestRepository,
		bus:                 bus,
		logger:              logger,
		now:                 time.Now,
	}
}

var equipmentEnumFilters = map[string]func(string) bool{
	"status": func(v string) bool { return entities.EquipmentStatus(v).IsValid() },
}

var equipmentIDFilters = []string{"id", "team_id", "maintenance_team_id"}

func (s *EquipmentService) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	filter, err := normalizeFilter(filter, equipmentEnumFilters, equipmentIDFilters)
	if err != nil {
		return nil, 0, err
	}
	return s.equipmentRepository.GetEquipments(ctx, filter)
}

// FindEquipment возвращает оборудование вместе с заявками, которые видит пользователь.
func (s *EquipmentService) FindEquipment(ctx context.Context, principal authz.Principal, id uint64) (*entities.Equipment, error) {
	eq, err := s.equipmentRepository.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	requests, err := s.requestRepository.FindByEquipmentID(ctx, id)
	if err != nil {
		return nil, err
	}

	policy := authz.For(principal)
	now := s.now()
	eq.Requests = make([]entities.MaintenanceRequest, 0, len(requests))
	for i := range requests {
		if !policy.CanRead(&requests[i]) {
			continue
		}
		requests[i].IsOverdue = IsOverdue(&requests[i], now)
		eq.Requests = append(eq.Requests, requests[i])
	}
	return eq, nil
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, principal authz.Principal, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	if !authz.For(principal).CanManageReferenceData() {
		return nil, apperrors.ErrUnauthorized
	}

	eq := &entities.Equipment{
		Name:         strings.TrimSpace(payload.Name),
		SerialNumber: strings.TrimSpace(payload.SerialNumber),
		Department:   strings.TrimSpace(payload.Department),
		Location:     strings.TrimSpace(payload.Location),
		Status:       entities.EquipmentActive,
	}
	if eq.Name == "" || eq.SerialNumber == "" {
		return nil, apperrors.NewValidationError("название и серийный номер обязательны")
	}
	if payload.Status.Valid {
		eq.Status = entities.EquipmentStatus(payload.Status.String)
		if !eq.Status.IsValid() {
			return nil, apperrors.NewValidationError("неизвестный статус оборудования: %q", payload.Status.String)
		}
	}
	if payload.Description.Valid {
		eq.Description = utils.ToPtr(payload.Description.String)
	}
	if payload.MaintenanceTeamID.Valid {
		eq.MaintenanceTeamID = utils.ToPtr(payload.MaintenanceTeamID.Uint64)
	}
	if payload.PurchaseDate.Valid {
		eq.PurchaseDate = utils.ToPtr(payload.PurchaseDate.Time)
	}
	if payload.WarrantyExpiration.Valid {
		eq.WarrantyExpiration = utils.ToPtr(payload.WarrantyExpiration.Time)
	}

	if err := s.equipmentRepository.CreateEquipment(ctx, eq); err != nil {
		s.logger.Error("Ошибка при создании оборудования", zap.String("serial", eq.SerialNumber), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Оборудование создано", zap.Uint64("equipmentID", eq.ID), zap.String("serial", eq.SerialNumber))
	s.bus.Publish(ctx, events.EquipmentStaleEvent{EquipmentID: eq.ID})
	return eq, nil
}

// UpdateEquipment меняет только переданные поля.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, principal authz.Principal, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	if !authz.For(principal).CanManageReferenceData() {
		return nil, apperrors.ErrUnauthorized
	}

	eq, err := s.equipmentRepository.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		eq.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.SerialNumber != nil {
		eq.SerialNumber = strings.TrimSpace(*payload.SerialNumber)
	}
	if eq.Name == "" || eq.SerialNumber == "" {
		return nil, apperrors.NewValidationError("название и серийный номер обязательны")
	}
	if payload.Department != nil {
		eq.Department = strings.TrimSpace(*payload.Department)
	}
	if payload.Location != nil {
		eq.Location = strings.TrimSpace(*payload.Location)
	}
	if payload.Status != nil {
		status := entities.EquipmentStatus(*payload.Status)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("неизвестный статус оборудования: %q", *payload.Status)
		}
		eq.Status = status
	}
	if payload.Description.Valid {
		eq.Description = payload.Description.Ptr()
	}
	if payload.MaintenanceTeamID.Valid {
		eq.MaintenanceTeamID = payload.MaintenanceTeamID.Ptr()
	}
	if payload.PurchaseDate.Valid {
		eq.PurchaseDate = payload.PurchaseDate.Ptr()
	}
	if payload.WarrantyExpiration.Valid {
		eq.WarrantyExpiration = payload.WarrantyExpiration.Ptr()
	}

	now := s.now()
	eq.UpdatedAt = &now
	if err := s.equipmentRepository.UpdateEquipment(ctx, eq); err != nil {
		return nil, err
	}
	s.logger.Info("Оборудование обновлено", zap.Uint64("equipmentID", id), zap.Uint64("principalID", principal.ID))
	s.bus.Publish(ctx, events.EquipmentStaleEvent{EquipmentID: id})
	return eq, nil
}
