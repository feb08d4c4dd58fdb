package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

type MaintenanceRequestServiceInterface interface {
	CreateRequest(ctx context.Context, principal authz.Principal, payload dto.CreateMaintenanceRequestDTO) (*entities.MaintenanceRequest, error)
	ListRequests(ctx context.Context, principal authz.Principal, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error)
	FindRequest(ctx context.Context, principal authz.Principal, id uint64) (*entities.MaintenanceRequest, error)
	TransitionStage(ctx context.Context, principal authz.Principal, id uint64, stage entities.RequestStage) (*entities.MaintenanceRequest, error)
}

type MaintenanceRequestService struct {
	requestRepo   repositories.MaintenanceRequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	bus           eventbus.Publisher
	logger        *zap.Logger
	now           func() time.Time
}

func NewMaintenanceRequestService(
	requestRepo repositories.MaintenanceRequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	bus eventbus.Publisher,
	logger *zap.Logger,
) *MaintenanceRequestService {
	return &MaintenanceRequestService{
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		userRepo:      userRepo,
		bus:           bus,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *MaintenanceRequestService) CreateRequest(ctx context.Context, principal authz.Principal, payload dto.CreateMaintenanceRequestDTO) (*entities.MaintenanceRequest, error) {
	subject := strings.TrimSpace(payload.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("тема заявки обязательна")
	}
	reqType := entities.RequestType(payload.Type)
	if !reqType.IsValid() {
		return nil, apperrors.NewValidationError("неизвестный тип заявки: %q", payload.Type)
	}
	if payload.EquipmentID == 0 {
		return nil, apperrors.NewValidationError("оборудование обязательно")
	}
	priority := entities.PriorityMedium
	if payload.Priority.Valid {
		priority = entities.RequestPriority(payload.Priority.String)
		if !priority.IsValid() {
			return nil, apperrors.NewValidationError("неизвестный приоритет: %q", payload.Priority.String)
		}
	}

	equipment, err := s.equipmentRepo.FindEquipment(ctx, payload.EquipmentID)
	if err != nil {
		return nil, fmt.Errorf("оборудование %d: %w", payload.EquipmentID, err)
	}

	req := &entities.MaintenanceRequest{
		Subject:     subject,
		Type:        reqType,
		Priority:    priority,
		Stage:       entities.StageNew,
		EquipmentID: equipment.ID,
		CreatedByID: principal.ID,
	}
	if payload.Description.Valid {
		req.Description = utils.ToPtr(payload.Description.String)
	}
	if payload.ScheduledDate.Valid {
		req.ScheduledDate = utils.ToPtr(payload.ScheduledDate.Time)
	}

	// команда берётся из оборудования только в момент создания
	if payload.TeamID.Valid {
		req.TeamID = utils.ToPtr(payload.TeamID.Uint64)
	} else {
		req.TeamID = equipment.MaintenanceTeamID
	}

	var technician *entities.User
	if payload.TechnicianID.Valid {
		technician, err = s.userRepo.FindUserByID(ctx, payload.TechnicianID.Uint64)
		if err != nil {
			return nil, fmt.Errorf("техник %d: %w", payload.TechnicianID.Uint64, err)
		}
		req.TechnicianID = &technician.ID
	}

	if err := s.requestRepo.CreateRequest(ctx, req); err != nil {
		s.logger.Error("Ошибка при создании заявки", zap.Error(err), zap.Uint64("equipmentID", equipment.ID))
		return nil, err
	}
	name := equipment.Name
	req.EquipmentName = &name
	req.IsOverdue = IsOverdue(req, s.now())

	s.logger.Info("Заявка создана",
		zap.Uint64("requestID", req.ID),
		zap.Uint64("createdBy", principal.ID),
		zap.String("teamID", utils.PtrToString(req.TeamID)),
	)

	s.bus.Publish(ctx, events.RequestsStaleEvent{RequestID: req.ID, Reason: "created"})
	if technician != nil {
		s.bus.Publish(ctx, events.TechnicianAssignedEvent{Request: *req, TechnicianID: technician.ID})
	}
	return req, nil
}

var requestEnumFilters = map[string]func(string) bool{
	"type":     func(v string) bool { return entities.RequestType(v).IsValid() },
	"stage":    func(v string) bool { return entities.RequestStage(v).IsValid() },
	"priority": func(v string) bool { return entities.RequestPriority(v).IsValid() },
}

var requestIDFilters = []string{"id", "team_id", "equipment_id", "technician_id"}

func normalizeRequestFilter(filter types.Filter) (types.Filter, error) {
	return normalizeFilter(filter, requestEnumFilters, requestIDFilters)
}

// normalizeFilter проверяет значения перечислений и переводит id в []uint64.
// Исходная карта filter.Filter не меняется.
func normalizeFilter(filter types.Filter, enums map[string]func(string) bool, idFields []string) (types.Filter, error) {
	normalized := make(map[string]interface{}, len(filter.Filter))
	for k, v := range filter.Filter {
		normalized[k] = v
	}

	for field, valid := range enums {
		raw, ok := normalized[field].(string)
		if !ok {
			continue
		}
		for _, v := range strings.Split(raw, ",") {
			if !valid(v) {
				return filter, apperrors.NewValidationError("недопустимое значение filter[%s]: %q", field, v)
			}
		}
	}

	for _, field := range idFields {
		raw, ok := normalized[field].(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		ids := make([]uint64, 0, len(parts))
		for _, p := range parts {
			id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
			if err != nil {
				return filter, apperrors.NewValidationError("недопустимое значение filter[%s]: %q", field, p)
			}
			ids = append(ids, id)
		}
		normalized[field] = ids
	}

	filter.Filter = normalized
	return filter, nil
}

func (s *MaintenanceRequestService) ListRequests(ctx context.Context, principal authz.Principal, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	filter, err := normalizeRequestFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	list, total, err := s.requestRepo.GetRequests(ctx, filter, authz.For(principal).ScopeReadFilter())
	if err != nil {
		return nil, 0, err
	}
	markOverdue(list, s.now())
	return list, total, nil
}

func (s *MaintenanceRequestService) FindRequest(ctx context.Context, principal authz.Principal, id uint64) (*entities.MaintenanceRequest, error) {
	req, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.For(principal).CanRead(req) {
		return nil, apperrors.ErrUnauthorized
	}
	req.IsOverdue = IsOverdue(req, s.now())
	return req, nil
}

// TransitionStage переводит заявку в любую стадию. Порядок стадий не проверяется.
// При переходе в SCRAP оборудование списывается второй записью; если она не удалась,
// возвращается обновлённая заявка вместе с *apperrors.CascadeError.
func (s *MaintenanceRequestService) TransitionStage(ctx context.Context, principal authz.Principal, id uint64, stage entities.RequestStage) (*entities.MaintenanceRequest, error) {
	if !stage.IsValid() {
		return nil, apperrors.NewValidationError("неизвестная стадия: %q", stage)
	}

	req, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.For(principal).AuthorizeMutate(req); err != nil {
		s.logger.Warn("Отказ в смене стадии",
			zap.Uint64("requestID", id),
			zap.Uint64("principalID", principal.ID),
			zap.String("role", string(principal.Role)),
		)
		return nil, err
	}

	now := s.now()
	from := req.Stage
	req.Stage = stage
	req.UpdatedAt = &now
	if stage == entities.StageInProgress && req.StartedAt == nil {
		req.StartedAt = &now
	}
	if stage.IsClosed() && req.CompletedAt == nil {
		req.CompletedAt = &now
	}

	if err := s.requestRepo.UpdateStage(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("Стадия заявки изменена",
		zap.Uint64("requestID", id),
		zap.String("from", string(from)),
		zap.String("to", string(stage)),
		zap.Uint64("principalID", principal.ID),
	)
	s.bus.Publish(ctx, events.RequestsStaleEvent{RequestID: id, Reason: "stage"})

	req.IsOverdue = IsOverdue(req, now)

	if stage != entities.StageScrap {
		return req, nil
	}

	if err := s.equipmentRepo.UpdateStatus(ctx, req.EquipmentID, entities.EquipmentScrapped); err != nil {
		s.logger.Error("Стадия SCRAP записана, но оборудование не списано",
			zap.Uint64("requestID", id),
			zap.Uint64("equipmentID", req.EquipmentID),
			zap.Error(err),
		)
		return req, &apperrors.CascadeError{RequestID: id, EquipmentID: req.EquipmentID, Err: err}
	}
	s.bus.Publish(ctx, events.EquipmentStaleEvent{EquipmentID: req.EquipmentID})
	return req, nil
}

// IsCascadeError — удобство для HTTP-слоя.
func IsCascadeError(err error) (*apperrors.CascadeError, bool) {
	var cErr *apperrors.CascadeError
	ok := errors.As(err, &cErr)
	return cErr, ok
}
