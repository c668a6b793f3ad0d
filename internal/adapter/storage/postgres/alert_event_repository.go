package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/ports"
)

type AlertEventRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAlertEventRepository(db *gorm.DB, log *zap.Logger) ports.AlertEventRepository {
	return &AlertEventRepository{
		db:  db,
		log: log,
	}
}

func (r *AlertEventRepository) Save(ctx context.Context, event *domain.AlertEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *AlertEventRepository) FindPage(ctx context.Context, page, perPage int) ([]domain.AlertEvent, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.AlertEvent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []domain.AlertEvent
	err := r.db.WithContext(ctx).
		Order("sent_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&events).Error
	return events, total, err
}

func (r *AlertEventRepository) LastForSetting(ctx context.Context, alertType, deviceName string) (*domain.AlertEvent, error) {
	var event domain.AlertEvent
	err := r.db.WithContext(ctx).
		Where("alert_type = ? AND device_name = ?", alertType, deviceName).
		Order("sent_at desc").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}
