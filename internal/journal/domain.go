package journal

import "time"

// Event is one logged habit moment, or a check-in note. Analysis is
// attached at most once by the evening review, flipping Analyzed
// false→true; after that the row is never mutated again.
type Event struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Analysis  string    `json:"analysis" gorm:"type:text"`
	Analyzed  bool      `json:"analyzed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName returns the table name for the Event model
func (Event) TableName() string {
	return "events"
}
