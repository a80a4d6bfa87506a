package scheduler

import (
	"testing"
	"time"

	"habitbot-api/internal/common"
	"habitbot-api/internal/config"
	"habitbot-api/internal/events"
	"habitbot-api/internal/journal"
	"habitbot-api/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		PollInterval:  60,
		CheckinHour:   13,
		CheckinMinute: 0,
		Enabled:       true,
	}
}

func newTestScheduler(t *testing.T, now time.Time) (*scheduler, *user.MockRepository, *journal.MockRepository, *events.MockEventBus, *common.MockClock) {
	users := user.NewMockRepository()
	journalRepo := journal.NewMockRepository()
	bus := events.NewMockEventBus()
	clock := common.NewMockClock(now)

	sched, err := NewScheduler(testConfig(), config.BotConfig{AdminID: 999},
		users, journalRepo, bus, zaptest.NewLogger(t), clock)
	require.NoError(t, err)

	return sched.(*scheduler), users, journalRepo, bus, clock
}

func addUser(t *testing.T, users *user.MockRepository, telegramID int64, mutate func(*user.User)) *user.User {
	require.NoError(t, users.Create(&user.User{TelegramID: telegramID}))
	u, err := users.GetByTelegramID(telegramID)
	require.NoError(t, err)
	if mutate != nil {
		mutate(u)
		require.NoError(t, users.Update(u))
	}
	return u
}

func activeSubscriber(offset int) func(*user.User) {
	return func(u *user.User) {
		u.TimezoneOffset = &offset
		ends := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		u.SubscriptionEndsAt = &ends
	}
}

func TestCheckinFiresAtLocalMidday(t *testing.T) {
	// 10:00 UTC is 13:00 in UTC+3.
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	sched, users, _, bus, _ := newTestScheduler(t, now)
	u := addUser(t, users, 100, activeSubscriber(3))

	sched.sweep()

	published := bus.Published(events.TopicCheckinDue)
	require.Len(t, published, 1)
	due := published[0].(events.CheckinDue)
	assert.Equal(t, u.ID, due.UserID)
	assert.Equal(t, u.TelegramID, due.ChatID)

	updated, err := users.GetByTelegramID(100)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", updated.LastCheckinDate)
}

func TestCheckinAtMostOncePerDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	sched, users, _, bus, clock := newTestScheduler(t, now)
	addUser(t, users, 100, activeSubscriber(3))

	// The ticker can observe the same matching minute twice in a row.
	sched.sweep()
	clock.Advance(30 * time.Second)
	sched.sweep()

	assert.Len(t, bus.Published(events.TopicCheckinDue), 1)
}

func TestCheckinSkipsOffMinuteAndOtherOffsets(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	sched, users, _, bus, _ := newTestScheduler(t, now)
	// 10:00 UTC is 15:00 in UTC+5, not midday.
	addUser(t, users, 200, activeSubscriber(5))

	sched.sweep()

	assert.Empty(t, bus.Published(events.TopicCheckinDue))
}

func TestUserWithoutTimezoneNeverPrompted(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	sched, users, _, bus, _ := newTestScheduler(t, now)
	addUser(t, users, 300, func(u *user.User) {
		u.ReviewTime = "13:00"
		ends := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		u.SubscriptionEndsAt = &ends
	})

	sched.sweep()

	assert.Empty(t, bus.Published(events.TopicCheckinDue))
	assert.Empty(t, bus.Published(events.TopicReviewDue))
}

func TestCheckinGatedBySubscription(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	sched, users, _, bus, _ := newTestScheduler(t, now)
	offset := 3
	addUser(t, users, 100, func(u *user.User) { u.TimezoneOffset = &offset })

	sched.sweep()
	assert.Empty(t, bus.Published(events.TopicCheckinDue))

	// The admin is exempt from the gate.
	addUser(t, users, 999, func(u *user.User) { u.TimezoneOffset = &offset })
	sched.sweep()

	published := bus.Published(events.TopicCheckinDue)
	require.Len(t, published, 1)
	assert.Equal(t, int64(999), published[0].(events.CheckinDue).ChatID)
}

func TestReviewPromptSelectsByUnresolvedEvents(t *testing.T) {
	// 18:30 UTC is 21:30 in UTC+3.
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)
	sched, users, journalRepo, bus, _ := newTestScheduler(t, now)

	withEvents := addUser(t, users, 100, func(u *user.User) {
		activeSubscriber(3)(u)
		u.ReviewTime = "21:30"
	})
	clean := addUser(t, users, 200, func(u *user.User) {
		activeSubscriber(3)(u)
		u.ReviewTime = "21:30"
	})

	require.NoError(t, journalRepo.Append(&journal.Event{
		UserID: withEvents.ID, Text: "сорвался", CreatedAt: now.Add(-2 * time.Hour),
	}))

	sched.sweep()

	published := bus.Published(events.TopicReviewDue)
	require.Len(t, published, 2)

	byUser := map[int64]events.ReviewDue{}
	for _, e := range published {
		due := e.(events.ReviewDue)
		byUser[due.UserID] = due
	}
	assert.True(t, byUser[withEvents.ID].HasEvents)
	assert.False(t, byUser[clean.ID].HasEvents)
}

func TestSweepSurvivesPerUserFailure(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	sched, users, _, bus, _ := newTestScheduler(t, now)
	addUser(t, users, 100, activeSubscriber(3))
	addUser(t, users, 200, activeSubscriber(3))

	users.UpdateErr = assert.AnError
	sched.sweep()
	assert.Empty(t, bus.Published(events.TopicCheckinDue))

	// Once the store recovers, the next sweep delivers both.
	users.UpdateErr = nil
	sched.sweep()
	assert.Len(t, bus.Published(events.TopicCheckinDue), 2)
}

func TestSchedulerRejectsBadConfig(t *testing.T) {
	_, err := NewScheduler(config.SchedulerConfig{PollInterval: 0},
		config.BotConfig{}, user.NewMockRepository(), journal.NewMockRepository(),
		events.NewMockEventBus(), zaptest.NewLogger(t), common.NewMockClock(time.Now()))
	require.Error(t, err)

	var schedErr *SchedulerError
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, ErrInvalidConfiguration, schedErr.Code)
}
