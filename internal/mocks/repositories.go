package mocks

import (
	"context"

	"github.com/wattscope/wattscope/internal/domain"
)

// MockAlertSettingRepository is a mock implementation of AlertSettingRepository
type MockAlertSettingRepository struct {
	SaveFunc        func(ctx context.Context, setting *domain.AlertSetting) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.AlertSetting, error)
	FindAllFunc     func(ctx context.Context) ([]domain.AlertSetting, error)
	FindEnabledFunc func(ctx context.Context) ([]domain.AlertSetting, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockAlertSettingRepository) Save(ctx context.Context, setting *domain.AlertSetting) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, setting)
	}
	return nil
}

func (m *MockAlertSettingRepository) FindByID(ctx context.Context, id string) (*domain.AlertSetting, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAlertSettingRepository) FindAll(ctx context.Context) ([]domain.AlertSetting, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return []domain.AlertSetting{}, nil
}

func (m *MockAlertSettingRepository) FindEnabled(ctx context.Context) ([]domain.AlertSetting, error) {
	if m.FindEnabledFunc != nil {
		return m.FindEnabledFunc(ctx)
	}
	return []domain.AlertSetting{}, nil
}

func (m *MockAlertSettingRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEmailRecipientRepository is a mock implementation of EmailRecipientRepository
type MockEmailRecipientRepository struct {
	SaveFunc       func(ctx context.Context, recipient *domain.EmailRecipient) error
	FindByIDFunc   func(ctx context.Context, id string) (*domain.EmailRecipient, error)
	FindAllFunc    func(ctx context.Context) ([]domain.EmailRecipient, error)
	FindActiveFunc func(ctx context.Context) ([]domain.EmailRecipient, error)
	UpdateFunc     func(ctx context.Context, recipient *domain.EmailRecipient) error
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockEmailRecipientRepository) Save(ctx context.Context, recipient *domain.EmailRecipient) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, recipient)
	}
	return nil
}

func (m *MockEmailRecipientRepository) FindByID(ctx context.Context, id string) (*domain.EmailRecipient, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockEmailRecipientRepository) FindAll(ctx context.Context) ([]domain.EmailRecipient, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return []domain.EmailRecipient{}, nil
}

func (m *MockEmailRecipientRepository) FindActive(ctx context.Context) ([]domain.EmailRecipient, error) {
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx)
	}
	return []domain.EmailRecipient{}, nil
}

func (m *MockEmailRecipientRepository) Update(ctx context.Context, recipient *domain.EmailRecipient) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, recipient)
	}
	return nil
}

func (m *MockEmailRecipientRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockAlertEventRepository is a mock implementation of AlertEventRepository
type MockAlertEventRepository struct {
	SaveFunc           func(ctx context.Context, event *domain.AlertEvent) error
	FindPageFunc       func(ctx context.Context, page, perPage int) ([]domain.AlertEvent, int64, error)
	LastForSettingFunc func(ctx context.Context, alertType, deviceName string) (*domain.AlertEvent, error)

	Saved []domain.AlertEvent
}

func (m *MockAlertEventRepository) Save(ctx context.Context, event *domain.AlertEvent) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, event)
	}
	m.Saved = append(m.Saved, *event)
	return nil
}

func (m *MockAlertEventRepository) FindPage(ctx context.Context, page, perPage int) ([]domain.AlertEvent, int64, error) {
	if m.FindPageFunc != nil {
		return m.FindPageFunc(ctx, page, perPage)
	}
	return []domain.AlertEvent{}, 0, nil
}

func (m *MockAlertEventRepository) LastForSetting(ctx context.Context, alertType, deviceName string) (*domain.AlertEvent, error) {
	if m.LastForSettingFunc != nil {
		return m.LastForSettingFunc(ctx, alertType, deviceName)
	}
	return nil, nil
}
