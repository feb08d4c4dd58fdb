package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"gear-guard/pkg/config"
)

// NotificationServiceInterface отправляет уведомления без гарантии доставки.
// Ошибки логируются самой реализацией и наружу не возвращаются.
type NotificationServiceInterface interface {
	Notify(ctx context.Context, to, subject, body string)
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpNotificationService struct {
	cfg      config.MailConfig
	logger   *zap.Logger
	sendMail sendMailFunc
}

// NewNotificationService выбирает SMTP, если задан хост, иначе пишет письма в лог.
func NewNotificationService(cfg config.MailConfig, logger *zap.Logger) NotificationServiceInterface {
	if cfg.Host == "" {
		return NewMockNotificationService(logger)
	}
	return &smtpNotificationService{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

func (s *smtpNotificationService) Notify(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := ctx.Err(); err != nil {
		s.logger.Warn("Уведомление не отправлено: контекст завершён", zap.String("to", to), zap.Error(err))
		return
	}

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	if err := s.sendMail(addr, auth, s.cfg.From, []string{to}, buildMessage(s.cfg.From, to, subject, body)); err != nil {
		s.logger.Error("Ошибка отправки письма", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return
	}
	s.logger.Info("Письмо отправлено", zap.String("to", to), zap.String("subject", subject))
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// mockNotificationService пишет письмо в лог вместо отправки.
type mockNotificationService struct {
	logger *zap.Logger
}

func NewMockNotificationService(logger *zap.Logger) NotificationServiceInterface {
	return &mockNotificationService{logger: logger}
}

func (s *mockNotificationService) Notify(_ context.Context, to, subject, body string) {
	s.logger.Info("!!! ИМИТАЦИЯ ОТПРАВКИ EMAIL !!!",
		zap.String("кому", to),
		zap.String("тема", subject),
		zap.String("текст", body),
	)
}
