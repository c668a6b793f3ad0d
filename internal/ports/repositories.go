package ports

import (
	"context"

	"github.com/wattscope/wattscope/internal/domain"
)

type AlertSettingRepository interface {
	Save(ctx context.Context, setting *domain.AlertSetting) error
	FindByID(ctx context.Context, id string) (*domain.AlertSetting, error)
	FindAll(ctx context.Context) ([]domain.AlertSetting, error)
	FindEnabled(ctx context.Context) ([]domain.AlertSetting, error)
	Delete(ctx context.Context, id string) error
}

type EmailRecipientRepository interface {
	Save(ctx context.Context, recipient *domain.EmailRecipient) error
	FindByID(ctx context.Context, id string) (*domain.EmailRecipient, error)
	FindAll(ctx context.Context) ([]domain.EmailRecipient, error)
	FindActive(ctx context.Context) ([]domain.EmailRecipient, error)
	Update(ctx context.Context, recipient *domain.EmailRecipient) error
	Delete(ctx context.Context, id string) error
}

type AlertEventRepository interface {
	Save(ctx context.Context, event *domain.AlertEvent) error
	FindPage(ctx context.Context, page, perPage int) ([]domain.AlertEvent, int64, error)
	LastForSetting(ctx context.Context, alertType, deviceName string) (*domain.AlertEvent, error)
}
