package services

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/entities"
	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/eventbus"
)

type DurationLoggerInterface interface {
	LogDuration(ctx context.Context, principal authz.Principal, id uint64, hours float64) (*entities.MaintenanceRequest, error)
}

// DurationLogger записывает затраченное на заявку время.
type DurationLogger struct {
	requestRepo repositories.MaintenanceRequestRepositoryInterface
	bus         eventbus.Publisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewDurationLogger(
	requestRepo repositories.MaintenanceRequestRepositoryInterface,
	bus eventbus.Publisher,
	logger *zap.Logger,
) *DurationLogger {
	return &DurationLogger{requestRepo: requestRepo, bus: bus, logger: logger, now: time.Now}
}

// ParseHours разбирает ввод пользователя ("1.5", "2,25") в часы.
func ParseHours(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, apperrors.NewValidationError("укажите количество часов")
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("некорректное количество часов: %q", raw)
	}
	if err := checkHours(hours); err != nil {
		return 0, err
	}
	return hours, nil
}

func checkHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return apperrors.NewValidationError("некорректное количество часов")
	}
	if hours < 0 {
		return apperrors.NewValidationError("количество часов не может быть отрицательным")
	}
	return nil
}

// LogDuration заменяет (не суммирует) duration_hours заявки.
func (s *DurationLogger) LogDuration(ctx context.Context, principal authz.Principal, id uint64, hours float64) (*entities.MaintenanceRequest, error) {
	if err := checkHours(hours); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.For(principal).AuthorizeMutate(req); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.requestRepo.UpdateDuration(ctx, id, hours, now); err != nil {
		return nil, err
	}
	req.DurationHours = &hours
	req.UpdatedAt = &now
	req.IsOverdue = IsOverdue(req, now)

	s.logger.Info("Время по заявке записано",
		zap.Uint64("requestID", id),
		zap.Float64("hours", hours),
		zap.Uint64("principalID", principal.ID),
	)
	s.bus.Publish(ctx, events.RequestsStaleEvent{RequestID: id, Reason: "duration"})
	return req, nil
}
