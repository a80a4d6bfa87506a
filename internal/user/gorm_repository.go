package user

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository implements the Repository interface using GORM
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates a new GORM-based user repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the user; an existing row for the same Telegram identity
// is left untouched so /start stays idempotent.
func (r *gormRepository) Create(u *User) error {
	r.logger.Debug("Creating user", zap.Int64("telegram_id", u.TelegramID))

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoNothing: true,
	}).Create(u).Error

	if err != nil {
		return WrapRepositoryError(err, "create user")
	}

	return nil
}

func (r *gormRepository) GetByTelegramID(telegramID int64) (*User, error) {
	var u User
	err := r.db.Where("telegram_id = ?", telegramID).First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapRepositoryError(err, "get user by telegram ID")
	}

	return &u, nil
}

func (r *gormRepository) GetByID(id int64) (*User, error) {
	var u User
	err := r.db.Where("id = ?", id).First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapRepositoryError(err, "get user by ID")
	}

	return &u, nil
}

func (r *gormRepository) Update(u *User) error {
	r.logger.Debug("Updating user", zap.Int64("user_id", u.ID))

	result := r.db.Model(&User{}).Where("id = ?", u.ID).Select(
		"name", "is_female", "current_streak", "max_streak", "last_clean_day",
		"review_time", "timezone_offset", "last_checkin_date",
		"subscription_ends_at", "trial_used",
	).Updates(u)

	if result.Error != nil {
		return WrapRepositoryError(result.Error, "update user")
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *gormRepository) ListWithTimezone() ([]*User, error) {
	var users []*User
	err := r.db.Where("timezone_offset IS NOT NULL").Find(&users).Error

	if err != nil {
		return nil, WrapRepositoryError(err, "list users with timezone")
	}

	return users, nil
}

func (r *gormRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&User{}).Count(&count).Error; err != nil {
		return 0, WrapRepositoryError(err, "count users")
	}
	return count, nil
}

func (r *gormRepository) ListAll() ([]*User, error) {
	var users []*User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, WrapRepositoryError(err, "list all users")
	}
	return users, nil
}
