package service

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"sophrologie-backend/internal/config"
)

// EmailService sends plain text notifications to the practitioner when a
// visitor submits a form. Delivery failures never fail the submission.
type EmailService struct {
	config *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{config: cfg}
}

func (s *EmailService) Enabled() bool {
	if s == nil || s.config == nil || !s.config.EnableEmail {
		return false
	}
	return s.config.SMTPHost != "" && s.config.SMTPUsername != "" && s.config.SMTPPassword != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.Enabled() {
		return errors.New("email service is disabled or not configured")
	}

	host := strings.TrimSpace(s.config.SMTPHost)
	port := strings.TrimSpace(s.config.SMTPPort)
	if port == "" {
		port = "587"
	}
	from := strings.TrimSpace(s.config.SMTPFrom)
	if from == "" {
		from = "noreply@" + host
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, host)

	var builder strings.Builder
	headers := map[string]string{
		"From":         from,
		"To":           strings.TrimSpace(to),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}

	for key, value := range headers {
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("\r\n")
	}

	builder.WriteString("\r\n")
	builder.WriteString(body)

	return smtp.SendMail(addr, auth, from, []string{to}, []byte(builder.String()))
}

// NotifyPractitioner sends to the configured practice address.
func (s *EmailService) NotifyPractitioner(subject, body string) error {
	if !s.Enabled() {
		return nil
	}
	return s.Send(s.config.NotifyEmail, subject, body)
}
