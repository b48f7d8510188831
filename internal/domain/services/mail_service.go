package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

// InterfaceMailService sends account e-mails.
type InterfaceMailService interface {
	Send(to, subject, html string) error
}

// SMTPMailService 通过SMTP发送邮件
type SMTPMailService struct {
	dialer *gomail.Dialer
	from   string
}

// LogMailService 未配置SMTP时只记录日志
type LogMailService struct{}

// NewMailService 根据配置选择SMTP或日志实现
func NewMailService(cfg *config.Config) InterfaceMailService {
	if !cfg.SMTPEnabled() {
		return &LogMailService{}
	}
	return &SMTPMailService{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.EmailFrom,
	}
}

func (s *SMTPMailService) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (s *LogMailService) Send(to, subject, html string) error {
	applog.L().Info().Str("to", to).Str("subject", subject).Msg("mail not sent, SMTP disabled")
	applog.L().Debug().Str("to", to).Msg(html)
	return nil
}
