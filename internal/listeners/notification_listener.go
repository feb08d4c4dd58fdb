package listeners

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	"gear-guard/internal/services"
	"gear-guard/pkg/eventbus"
	"gear-guard/pkg/utils"
)

// NotificationListener отправляет технику письмо о назначенной заявке.
type NotificationListener struct {
	notificationService services.NotificationServiceInterface
	userRepo            repositories.UserRepositoryInterface
	logger              *zap.Logger
}

func NewNotificationListener(
	notificationService services.NotificationServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationService: notificationService,
		userRepo:            userRepo,
		logger:              logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.TechnicianAssignedName, l.handleTechnicianAssigned)
	l.logger.Info("NotificationListener подписан на событие", zap.String("event", events.TechnicianAssignedName))
}

func (l *NotificationListener) handleTechnicianAssigned(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.TechnicianAssignedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}

	technician, err := l.userRepo.FindUserByID(ctx, event.TechnicianID)
	if err != nil {
		return fmt.Errorf("техник %d: %w", event.TechnicianID, err)
	}

	subject, body := assignmentMessage(event)
	l.notificationService.Notify(ctx, technician.Email, subject, body)
	return nil
}

func assignmentMessage(event events.TechnicianAssignedEvent) (string, string) {
	req := event.Request
	subject := fmt.Sprintf("Вам назначена заявка #%d: %s", req.ID, req.Subject)

	var b strings.Builder
	fmt.Fprintf(&b, "Заявка #%d назначена на вас.\n\n", req.ID)
	fmt.Fprintf(&b, "Тема: %s\n", req.Subject)
	fmt.Fprintf(&b, "Тип: %s\nПриоритет: %s\n", req.Type, req.Priority)
	if name := utils.SafeDeref(req.EquipmentName); name != "" {
		fmt.Fprintf(&b, "Оборудование: %s\n", name)
	}
	if req.ScheduledDate != nil {
		fmt.Fprintf(&b, "Плановая дата: %s\n", req.ScheduledDate.Format("02.01.2006"))
	}
	if d := utils.SafeDeref(req.Description); d != "" {
		fmt.Fprintf(&b, "\n%s\n", d)
	}
	return subject, b.String()
}
