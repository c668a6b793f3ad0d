package email

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// MockProvider is a mock email provider for testing
type MockProvider struct {
	SentEmails []MockEmail
	ShouldFail bool
	FailError  error
}

type MockEmail struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

func (m *MockProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if m.ShouldFail {
		if m.FailError != nil {
			return m.FailError
		}
		return errors.New("mock send failed")
	}

	m.SentEmails = append(m.SentEmails, MockEmail{
		To:      to,
		Subject: subject,
		Body:    body,
		IsHTML:  isHTML,
	})
	return nil
}

func newTestService(provider *MockProvider) *Service {
	s := &Service{
		config: &Config{
			Provider:  "mock",
			FromEmail: "test@wattscope.io",
			FromName:  "WattScope Test",
		},
		provider:  provider,
		templates: make(map[string]*template.Template),
		log:       zap.NewNop(),
	}
	s.templates["alert"] = template.Must(template.New("alert").Parse(alertTemplate))
	s.templates["test"] = template.Must(template.New("test").Parse(testTemplate))
	return s
}

func TestService_Send_Success(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	// Act
	err := service.Send(context.Background(), "user@example.com", "Test Subject", "Test Body")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	email := mockProvider.SentEmails[0]
	if email.To != "user@example.com" {
		t.Errorf("expected to 'user@example.com', got '%s'", email.To)
	}
	if email.IsHTML {
		t.Error("expected plain text email, got HTML")
	}
}

func TestService_Send_Failure(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{
		ShouldFail: true,
		FailError:  errors.New("SMTP connection failed"),
	}
	service := newTestService(mockProvider)

	// Act
	err := service.Send(context.Background(), "user@example.com", "Test Subject", "Test Body")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "SMTP connection failed") {
		t.Errorf("expected error to contain 'SMTP connection failed', got '%s'", err.Error())
	}
}

func TestService_SendAlert_RendersTemplate(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	event := &domain.AlertEvent{
		ID:             "evt-1",
		AlertType:      "power_threshold",
		DeviceName:     "AC",
		ThresholdValue: 1500,
		ActualValue:    2100.5,
		Severity:       domain.SeverityHigh,
		Message:        "AC exceeded the configured power threshold",
		SentAt:         time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	}

	// Act
	err := service.SendAlert(context.Background(), "user@example.com", event)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	email := mockProvider.SentEmails[0]
	if !email.IsHTML {
		t.Error("alert emails must be HTML")
	}
	if !strings.Contains(email.Subject, "high") {
		t.Errorf("subject should carry severity, got '%s'", email.Subject)
	}
	if !strings.Contains(email.Body, "2100.50") {
		t.Error("expected body to contain the measured value")
	}
	if !strings.Contains(email.Body, "AC") {
		t.Error("expected body to contain the device name")
	}
	if !strings.Contains(email.Body, "#ea580c") {
		t.Error("expected the high-severity colour in the body")
	}
}

func TestService_SendTest(t *testing.T) {
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	err := service.SendTest(context.Background(), "ops@example.com")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	if !strings.Contains(mockProvider.SentEmails[0].Body, "ops@example.com") {
		t.Error("test email should echo the recipient address")
	}
}

func TestNewService_SendGridProvider(t *testing.T) {
	// Arrange
	config := &Config{
		Provider:       "sendgrid",
		SendGridAPIKey: "test-api-key",
		FromEmail:      "test@example.com",
		FromName:       "Test",
	}

	// Act
	service, err := NewService(config, zap.NewNop())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := service.provider.(*SendGridProvider); !ok {
		t.Error("expected SendGridProvider")
	}
}

func TestNewService_SMTPProvider(t *testing.T) {
	config := &Config{
		Provider:  "smtp",
		SMTPHost:  "localhost",
		SMTPPort:  1025,
		FromEmail: "test@example.com",
		FromName:  "Test",
	}

	service, err := NewService(config, zap.NewNop())

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := service.provider.(*SMTPProvider); !ok {
		t.Error("expected SMTPProvider")
	}
}

func TestNewService_UnknownProvider(t *testing.T) {
	_, err := NewService(&Config{Provider: "unknown"}, zap.NewNop())

	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNewService_SendGridMissingAPIKey(t *testing.T) {
	_, err := NewService(&Config{Provider: "sendgrid"}, zap.NewNop())

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "API key is required") {
		t.Errorf("expected 'API key is required' error, got '%s'", err.Error())
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "smtp" {
		t.Errorf("expected provider 'smtp', got '%s'", config.Provider)
	}
	if config.SMTPPort != 1025 {
		t.Errorf("expected SMTP port 1025, got %d", config.SMTPPort)
	}
}
