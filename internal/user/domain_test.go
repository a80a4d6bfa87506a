package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestSubscriptionActive(t *testing.T) {
	today := date(2024, 3, 10)

	tests := []struct {
		name   string
		endsAt *time.Time
		want   bool
	}{
		{
			name:   "no subscription",
			endsAt: nil,
			want:   false,
		},
		{
			name:   "expired yesterday",
			endsAt: ptr(date(2024, 3, 9)),
			want:   false,
		},
		{
			name:   "valid through today (boundary inclusive)",
			endsAt: ptr(date(2024, 3, 10)),
			want:   true,
		},
		{
			name:   "valid until next month",
			endsAt: ptr(date(2024, 4, 9)),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{SubscriptionEndsAt: tt.endsAt}
			assert.Equal(t, tt.want, u.SubscriptionActive(today))
		})
	}
}

func TestRecordCleanDay(t *testing.T) {
	today := date(2024, 3, 10)

	u := &User{CurrentStreak: 4, MaxStreak: 9}

	assert.True(t, u.RecordCleanDay(today))
	assert.Equal(t, 5, u.CurrentStreak)
	assert.Equal(t, 9, u.MaxStreak)
	assert.Equal(t, "2024-03-10", u.LastCleanDay)

	// Second confirmation on the same day must change nothing.
	assert.False(t, u.RecordCleanDay(today))
	assert.Equal(t, 5, u.CurrentStreak)
	assert.Equal(t, 9, u.MaxStreak)

	// The next day counts again and can push the high-water mark.
	u.CurrentStreak = 9
	assert.True(t, u.RecordCleanDay(date(2024, 3, 11)))
	assert.Equal(t, 10, u.CurrentStreak)
	assert.Equal(t, 10, u.MaxStreak)
	assert.LessOrEqual(t, u.CurrentStreak, u.MaxStreak)
}

func TestResetStreak(t *testing.T) {
	u := &User{CurrentStreak: 7, MaxStreak: 12}
	u.ResetStreak()
	assert.Equal(t, 0, u.CurrentStreak)
	assert.Equal(t, 12, u.MaxStreak)
}

func TestSetName(t *testing.T) {
	u := &User{}

	assert.Error(t, u.SetName(" A "))
	assert.False(t, u.HasName())

	require.NoError(t, u.SetName("  Alex  "))
	assert.Equal(t, "Alex", u.Name)

	long := make([]rune, 0, 150)
	for i := 0; i < 150; i++ {
		long = append(long, 'я')
	}
	require.NoError(t, u.SetName(string(long)))
	assert.Len(t, []rune(u.Name), MaxNameLength)
}

func TestStartTrial(t *testing.T) {
	today := date(2024, 3, 10)
	u := &User{}

	require.NoError(t, u.StartTrial(today, 7))
	assert.True(t, u.TrialUsed)
	require.NotNil(t, u.SubscriptionEndsAt)
	assert.Equal(t, date(2024, 3, 17), *u.SubscriptionEndsAt)

	// Trial is one-time; a repeat attempt leaves the window untouched.
	before := *u.SubscriptionEndsAt
	err := u.StartTrial(today.AddDate(0, 1, 0), 7)
	assert.ErrorIs(t, err, ErrTrialAlreadyUsed)
	assert.Equal(t, before, *u.SubscriptionEndsAt)
	assert.True(t, u.TrialUsed)
}

func TestExtendSubscription(t *testing.T) {
	today := date(2024, 3, 10)

	t.Run("no existing window anchors at today", func(t *testing.T) {
		u := &User{}
		u.ExtendSubscription(today, 30)
		require.NotNil(t, u.SubscriptionEndsAt)
		assert.Equal(t, date(2024, 4, 9), *u.SubscriptionEndsAt)
	})

	t.Run("expired window anchors at today", func(t *testing.T) {
		u := &User{SubscriptionEndsAt: ptr(date(2024, 2, 1))}
		u.ExtendSubscription(today, 30)
		assert.Equal(t, date(2024, 4, 9), *u.SubscriptionEndsAt)
	})

	t.Run("unexpired window stacks from existing expiry", func(t *testing.T) {
		u := &User{SubscriptionEndsAt: ptr(date(2024, 3, 20))}
		u.ExtendSubscription(today, 30)
		assert.Equal(t, date(2024, 4, 19), *u.SubscriptionEndsAt)
	})
}

func ptr(t time.Time) *time.Time {
	return &t
}
