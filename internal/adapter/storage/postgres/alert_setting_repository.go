package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/ports"
)

type AlertSettingRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAlertSettingRepository(db *gorm.DB, log *zap.Logger) ports.AlertSettingRepository {
	return &AlertSettingRepository{
		db:  db,
		log: log,
	}
}

func (r *AlertSettingRepository) Save(ctx context.Context, setting *domain.AlertSetting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}

func (r *AlertSettingRepository) FindByID(ctx context.Context, id string) (*domain.AlertSetting, error) {
	var setting domain.AlertSetting
	err := r.db.WithContext(ctx).First(&setting, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

func (r *AlertSettingRepository) FindAll(ctx context.Context) ([]domain.AlertSetting, error) {
	var settings []domain.AlertSetting
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&settings).Error
	return settings, err
}

func (r *AlertSettingRepository) FindEnabled(ctx context.Context) ([]domain.AlertSetting, error) {
	var settings []domain.AlertSetting
	err := r.db.WithContext(ctx).Where("enabled = ?", true).Find(&settings).Error
	return settings, err
}

func (r *AlertSettingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.AlertSetting{}, "id = ?", id).Error
}
