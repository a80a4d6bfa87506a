package journal

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gormRepository implements the Repository interface using GORM
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates a new GORM-based journal repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
	}
}

func (r *gormRepository) Append(event *Event) error {
	r.logger.Debug("Appending event", zap.Int64("user_id", event.UserID))

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if err := r.db.Create(event).Error; err != nil {
		return WrapRepositoryError(err, "append event")
	}

	return nil
}

func (r *gormRepository) ListUnanalyzed(userID int64, from, to time.Time) ([]*Event, error) {
	var events []*Event
	err := r.db.
		Where("user_id = ? AND analyzed = ? AND created_at >= ? AND created_at < ?",
			userID, false, from, to).
		Order("created_at").
		Find(&events).Error

	if err != nil {
		return nil, WrapRepositoryError(err, "list unanalyzed events")
	}

	return events, nil
}

// SaveAnalysis flips analyzed exactly once; a second write for the same
// event matches zero rows and reports ErrEventNotFound.
func (r *gormRepository) SaveAnalysis(eventID int64, analysis string) error {
	result := r.db.Model(&Event{}).
		Where("id = ? AND analyzed = ?", eventID, false).
		Updates(map[string]interface{}{
			"analysis": analysis,
			"analyzed": true,
		})

	if result.Error != nil {
		return WrapRepositoryError(result.Error, "save analysis")
	}

	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (r *gormRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&Event{}).Count(&count).Error; err != nil {
		return 0, WrapRepositoryError(err, "count events")
	}
	return count, nil
}
