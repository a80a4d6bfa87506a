package payment

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gormRepository implements the Repository interface using GORM
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates a new GORM-based payment repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
	}
}

func (r *gormRepository) Create(p *Payment) error {
	r.logger.Debug("Creating payment",
		zap.Int64("user_id", p.UserID),
		zap.String("provider_id", p.ProviderID))

	if p.Status == "" {
		p.Status = StatusPending
	}

	if err := r.db.Create(p).Error; err != nil {
		return WrapRepositoryError(err, "create payment")
	}

	return nil
}

func (r *gormRepository) GetByProviderID(providerID string) (*Payment, error) {
	var p Payment
	err := r.db.Where("provider_id = ?", providerID).First(&p).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, WrapRepositoryError(err, "get payment by provider ID")
	}

	return &p, nil
}

// MarkSucceeded matches only pending rows, so the pending→succeeded
// transition happens at most once no matter how often the processor
// re-delivers the notification.
func (r *gormRepository) MarkSucceeded(providerID string) error {
	result := r.db.Model(&Payment{}).
		Where("provider_id = ? AND status = ?", providerID, StatusPending).
		Update("status", StatusSucceeded)

	if result.Error != nil {
		return WrapRepositoryError(result.Error, "mark payment succeeded")
	}

	if result.RowsAffected == 0 {
		var p Payment
		if err := r.db.Where("provider_id = ?", providerID).First(&p).Error; err != nil {
			return ErrPaymentNotFound
		}
		return ErrAlreadySucceeded
	}

	return nil
}

func (r *gormRepository) SetLinkMessage(providerID string, messageID int) error {
	result := r.db.Model(&Payment{}).
		Where("provider_id = ?", providerID).
		Update("link_message_id", messageID)

	if result.Error != nil {
		return WrapRepositoryError(result.Error, "set link message")
	}

	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}
