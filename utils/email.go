package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP configuration for campaign test sends
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
}

var emailConfig EmailConfig

// InitEmailConfig initializes SMTP configuration
func InitEmailConfig(host string, port int, username, password, from string) {
	emailConfig = EmailConfig{
		SMTPHost:     host,
		SMTPPort:     port,
		SMTPUsername: username,
		SMTPPassword: password,
		FromEmail:    from,
	}
}

// SendTestEmail delivers a rendered campaign preview to a single address
// over SMTP. Used by the campaign test-send endpoint only; real sends go
// through the MailBluster adapter.
func SendTestEmail(to, subject, htmlBody string) error {
	if emailConfig.SMTPHost == "" {
		return fmt.Errorf("email configuration not initialized")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", emailConfig.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "[Test] "+subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(
		emailConfig.SMTPHost,
		emailConfig.SMTPPort,
		emailConfig.SMTPUsername,
		emailConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}
	return nil
}
