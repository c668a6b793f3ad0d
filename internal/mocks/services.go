package mocks

import (
	"context"

	"github.com/wattscope/wattscope/internal/domain"
)

// MockEmailService is a mock implementation of EmailService interface
type MockEmailService struct {
	SendFunc      func(ctx context.Context, to, subject, body string) error
	SendHTMLFunc  func(ctx context.Context, to, subject, htmlBody string) error
	SendAlertFunc func(ctx context.Context, to string, event *domain.AlertEvent) error

	SentTo []string
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	m.SentTo = append(m.SentTo, to)
	return nil
}

func (m *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendHTMLFunc != nil {
		return m.SendHTMLFunc(ctx, to, subject, htmlBody)
	}
	m.SentTo = append(m.SentTo, to)
	return nil
}

func (m *MockEmailService) SendAlert(ctx context.Context, to string, event *domain.AlertEvent) error {
	if m.SendAlertFunc != nil {
		return m.SendAlertFunc(ctx, to, event)
	}
	m.SentTo = append(m.SentTo, to)
	return nil
}

// MockWeatherService is a mock implementation of WeatherService interface
type MockWeatherService struct {
	CurrentFunc func(ctx context.Context, city string) (*domain.WeatherReport, error)
}

func (m *MockWeatherService) Current(ctx context.Context, city string) (*domain.WeatherReport, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, city)
	}
	return nil, nil
}
