package user

// Repository defines persistence operations for user profiles.
// Implementations must make Create idempotent per Telegram identity and
// keep each Update a single-row transaction.
type Repository interface {
	// Create inserts a user unless one already exists for the Telegram identity.
	Create(u *User) error

	// GetByTelegramID returns ErrUserNotFound when no profile exists.
	GetByTelegramID(telegramID int64) (*User, error)

	// GetByID looks a user up by internal id, the key stored on payments
	// and stashed in dialog state.
	GetByID(id int64) (*User, error)

	// Update persists all mutable profile fields.
	Update(u *User) error

	// ListWithTimezone returns every user eligible for time-based prompts.
	ListWithTimezone() ([]*User, error)

	// Count returns the total number of registered users.
	Count() (int64, error)

	// ListAll returns every user, used by admin broadcast.
	ListAll() ([]*User, error)
}
