package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// Provider defines the interface for email providers
type Provider interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// Config holds email service configuration
type Config struct {
	// Provider type: "sendgrid" or "smtp"
	Provider string `mapstructure:"provider"`

	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`

	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`

	// SMTP configuration (for Mailhog or other SMTP servers)
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPUseTLS   bool   `mapstructure:"smtp_use_tls"`
}

// DefaultConfig returns a default configuration for development (Mailhog)
func DefaultConfig() *Config {
	return &Config{
		Provider:   "smtp",
		FromEmail:  "alerts@wattscope.io",
		FromName:   "WattScope Alerts",
		SMTPHost:   "localhost",
		SMTPPort:   1025,
		SMTPUseTLS: false,
	}
}

// Service implements the ports.EmailService interface
type Service struct {
	config    *Config
	provider  Provider
	templates map[string]*template.Template
	log       *zap.Logger
}

// NewService creates a new email service
func NewService(config *Config, log *zap.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
		log:       log,
	}

	switch config.Provider {
	case "sendgrid":
		if config.SendGridAPIKey == "" {
			return nil, &domain.ConfigurationError{Section: "email", Message: "SendGrid API key is required"}
		}
		s.provider = NewSendGridProvider(config.SendGridAPIKey, config.FromEmail, config.FromName)
	case "smtp":
		s.provider = NewSMTPProvider(
			config.SMTPHost,
			config.SMTPPort,
			config.SMTPUsername,
			config.SMTPPassword,
			config.FromEmail,
			config.FromName,
			config.SMTPUseTLS,
		)
	default:
		return nil, &domain.ConfigurationError{Section: "email", Message: fmt.Sprintf("unknown provider %q", config.Provider)}
	}

	s.templates["alert"] = template.Must(template.New("alert").Parse(alertTemplate))
	s.templates["test"] = template.Must(template.New("test").Parse(testTemplate))

	return s, nil
}

// Send sends a plain-text email
func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info("Sending email",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	if err := s.provider.Send(ctx, to, subject, body, false); err != nil {
		s.log.Error("Failed to send email",
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendHTML sends an HTML email
func (s *Service) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	s.log.Info("Sending HTML email",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	if err := s.provider.Send(ctx, to, subject, htmlBody, true); err != nil {
		s.log.Error("Failed to send HTML email",
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send HTML email: %w", err)
	}

	return nil
}

// SendAlert renders the severity-coloured alert template and sends it
func (s *Service) SendAlert(ctx context.Context, to string, event *domain.AlertEvent) error {
	data := map[string]interface{}{
		"AlertType":      event.AlertType,
		"DeviceName":     event.DeviceName,
		"Message":        event.Message,
		"ThresholdValue": fmt.Sprintf("%.2f", event.ThresholdValue),
		"ActualValue":    fmt.Sprintf("%.2f", event.ActualValue),
		"Severity":       string(event.Severity),
		"SeverityColor":  severityColor(event.Severity),
		"SentAt":         event.SentAt.Format("2006-01-02 15:04:05"),
	}

	var buf bytes.Buffer
	if err := s.templates["alert"].Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render alert template: %w", err)
	}

	subject := fmt.Sprintf("[%s] Energy alert: %s", event.Severity, event.AlertType)
	return s.SendHTML(ctx, to, subject, buf.String())
}

// SendTest sends the connectivity-check email
func (s *Service) SendTest(ctx context.Context, to string) error {
	var buf bytes.Buffer
	if err := s.templates["test"].Execute(&buf, map[string]interface{}{"To": to}); err != nil {
		return fmt.Errorf("failed to render test template: %w", err)
	}
	return s.SendHTML(ctx, to, "WattScope test email", buf.String())
}

func severityColor(sev domain.AlertSeverity) string {
	switch sev {
	case domain.SeverityCritical:
		return "#dc2626"
	case domain.SeverityHigh:
		return "#ea580c"
	case domain.SeverityMedium:
		return "#d97706"
	default:
		return "#2563eb"
	}
}
