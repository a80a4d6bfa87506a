package user

import (
	"strings"
	"time"

	"habitbot-api/internal/common"
)

// MaxNameLength caps stored display names.
const MaxNameLength = 100

// User is the durable per-person profile: identity, streak counters,
// reminder preferences and subscription state.
type User struct {
	ID         int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TelegramID int64 `json:"telegram_id" gorm:"uniqueIndex;not null"`

	Name     string `json:"name" gorm:"type:varchar(100)"`
	IsFemale *bool  `json:"is_female"`

	CurrentStreak int    `json:"current_streak" gorm:"not null;default:0"`
	MaxStreak     int    `json:"max_streak" gorm:"not null;default:0"`
	LastCleanDay  string `json:"last_clean_day" gorm:"type:varchar(10)"`

	// ReviewTime is the user's local "HH:MM" evening-review time, empty until set.
	ReviewTime string `json:"review_time" gorm:"type:varchar(5)"`
	// TimezoneOffset is signed whole hours from UTC. Until it is set the
	// user is excluded from every time-based prompt.
	TimezoneOffset *int `json:"timezone_offset"`

	// LastCheckinDate guards the midday check-in: one send per local calendar day.
	LastCheckinDate string `json:"last_checkin_date" gorm:"type:varchar(10)"`

	SubscriptionEndsAt *time.Time `json:"subscription_ends_at" gorm:"type:date"`
	TrialUsed          bool       `json:"trial_used" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasName reports whether onboarding captured a display name.
func (u *User) HasName() bool {
	return u.Name != ""
}

// HasTimezone reports whether the user may receive time-based prompts.
func (u *User) HasTimezone() bool {
	return u.TimezoneOffset != nil
}

// SubscriptionActive is the subscription gate: true iff the subscription
// window covers today's date, boundary day inclusive. Pure, no I/O.
func (u *User) SubscriptionActive(today time.Time) bool {
	if u.SubscriptionEndsAt == nil {
		return false
	}
	return common.DateString(today) <= common.DateString(*u.SubscriptionEndsAt)
}

// RecordCleanDay credits today as a clean day. It is idempotent per local
// calendar day: a second confirmation on the same day changes nothing and
// returns false. MaxStreak never drops below CurrentStreak.
func (u *User) RecordCleanDay(today time.Time) bool {
	day := common.DateString(today)
	if u.LastCleanDay == day {
		return false
	}

	u.CurrentStreak++
	if u.CurrentStreak > u.MaxStreak {
		u.MaxStreak = u.CurrentStreak
	}
	u.LastCleanDay = day
	return true
}

// ResetStreak forfeits the current streak; completing an evening review
// over unresolved events always calls this.
func (u *User) ResetStreak() {
	u.CurrentStreak = 0
}

// SetName stores a trimmed, length-capped display name.
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return common.ValidationError{Field: "name", Message: "must be at least 2 characters"}
	}
	if runes := []rune(name); len(runes) > MaxNameLength {
		name = string(runes[:MaxNameLength])
	}
	u.Name = name
	return nil
}

// StartTrial grants the one-time trial window. A second request is
// rejected and leaves the subscription untouched.
func (u *User) StartTrial(today time.Time, days int) error {
	if u.TrialUsed {
		return ErrTrialAlreadyUsed
	}
	u.TrialUsed = true
	u.ExtendSubscription(today, days)
	return nil
}

// ExtendSubscription lengthens the subscription window by the given number
// of days, anchored at max(existing expiry, today) so renewals stack
// instead of overwriting an unexpired window.
func (u *User) ExtendSubscription(today time.Time, days int) {
	anchor := today
	if u.SubscriptionEndsAt != nil && u.SubscriptionEndsAt.After(today) {
		anchor = *u.SubscriptionEndsAt
	}
	ends := anchor.AddDate(0, 0, days)
	u.SubscriptionEndsAt = &ends
}
