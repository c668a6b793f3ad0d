package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/ports"
)

type EmailRecipientRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewEmailRecipientRepository(db *gorm.DB, log *zap.Logger) ports.EmailRecipientRepository {
	return &EmailRecipientRepository{
		db:  db,
		log: log,
	}
}

func (r *EmailRecipientRepository) Save(ctx context.Context, recipient *domain.EmailRecipient) error {
	return r.db.WithContext(ctx).Create(recipient).Error
}

func (r *EmailRecipientRepository) FindByID(ctx context.Context, id string) (*domain.EmailRecipient, error) {
	var recipient domain.EmailRecipient
	err := r.db.WithContext(ctx).First(&recipient, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipient, nil
}

func (r *EmailRecipientRepository) FindAll(ctx context.Context) ([]domain.EmailRecipient, error) {
	var recipients []domain.EmailRecipient
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&recipients).Error
	return recipients, err
}

func (r *EmailRecipientRepository) FindActive(ctx context.Context) ([]domain.EmailRecipient, error) {
	var recipients []domain.EmailRecipient
	err := r.db.WithContext(ctx).Where("active = ?", true).Find(&recipients).Error
	return recipients, err
}

func (r *EmailRecipientRepository) Update(ctx context.Context, recipient *domain.EmailRecipient) error {
	return r.db.WithContext(ctx).Save(recipient).Error
}

func (r *EmailRecipientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.EmailRecipient{}, "id = ?", id).Error
}
