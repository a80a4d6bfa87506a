package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"habitbot-api/internal/common"
	"habitbot-api/internal/config"
	"habitbot-api/internal/events"
	"habitbot-api/internal/journal"
	"habitbot-api/internal/user"

	"go.uber.org/zap"
)

// Scheduler defines the interface for the background reminder sweep
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}

// scheduler walks every timezone-configured user once per poll interval
// and publishes check-in and review prompts for those whose local clock
// matches. Users without a timezone never appear in the sweep.
type scheduler struct {
	config   config.SchedulerConfig
	botCfg   config.BotConfig
	users    user.Repository
	journal  journal.Repository
	eventBus events.EventBus
	logger   *zap.Logger
	clock    common.Clock

	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	ticker  *time.Ticker
	running atomic.Bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg config.SchedulerConfig, botCfg config.BotConfig,
	users user.Repository, journalRepo journal.Repository,
	eventBus events.EventBus, logger *zap.Logger, clock common.Clock) (Scheduler, error) {

	if cfg.PollInterval <= 0 {
		return nil, NewConfigurationError("poll_interval", cfg.PollInterval, "must be greater than 0")
	}
	if cfg.CheckinHour < 0 || cfg.CheckinHour > 23 {
		return nil, NewConfigurationError("checkin_hour", cfg.CheckinHour, "must be a valid hour")
	}
	if cfg.CheckinMinute < 0 || cfg.CheckinMinute > 59 {
		return nil, NewConfigurationError("checkin_minute", cfg.CheckinMinute, "must be a valid minute")
	}

	return &scheduler{
		config:   cfg,
		botCfg:   botCfg,
		users:    users,
		journal:  journalRepo,
		eventBus: eventBus,
		logger:   logger,
		clock:    clock,
	}, nil
}

// Start begins the periodic sweep
func (s *scheduler) Start(ctx context.Context) error {
	if s.running.Load() {
		return NewSchedulerError(ErrSchedulerAlreadyRunning, "scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.ticker = time.NewTicker(time.Duration(s.config.PollInterval) * time.Second)
	s.running.Store(true)

	s.logger.Info("Starting reminder scheduler",
		zap.Int("poll_interval_seconds", s.config.PollInterval),
		zap.Int("checkin_hour", s.config.CheckinHour),
		zap.Int("checkin_minute", s.config.CheckinMinute))

	s.wg.Add(1)
	go s.run()

	return nil
}

// Stop gracefully shuts down the scheduler
func (s *scheduler) Stop() error {
	if !s.running.Load() {
		return NewSchedulerError(ErrSchedulerNotRunning, "scheduler is not running")
	}

	s.logger.Info("Stopping reminder scheduler...")
	s.cancel()
	s.ticker.Stop()
	s.wg.Wait()
	s.running.Store(false)

	s.logger.Info("Reminder scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is currently running
func (s *scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *scheduler) run() {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sweep goroutine panic recovered, restarting",
				zap.Any("panic", r))
			s.wg.Add(1)
			go s.run()
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Scheduler stopping due to context cancellation")
			return
		case <-s.ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one pass over all timezone-configured users. Per-user
// failures are logged and skipped so one bad record never halts the
// sweep for everyone else.
func (s *scheduler) sweep() {
	now := s.clock.Now()

	eligible, err := s.users.ListWithTimezone()
	if err != nil {
		s.logger.Error("Failed to list users for sweep", zap.Error(err))
		return
	}

	for _, u := range eligible {
		if err := s.sweepUser(u, now); err != nil {
			s.logger.Warn("Sweep failed for user",
				zap.Int64("user_id", u.ID), zap.Error(err))
		}
	}
}

func (s *scheduler) sweepUser(u *user.User, now time.Time) error {
	local := common.LocalNow(now, *u.TimezoneOffset)

	if local.Hour() == s.config.CheckinHour && local.Minute() == s.config.CheckinMinute {
		if err := s.sendCheckin(u, local); err != nil {
			return err
		}
	}

	if u.ReviewTime != "" && common.ClockString(local) == u.ReviewTime {
		if err := s.sendReviewPrompt(u, now); err != nil {
			return err
		}
	}

	return nil
}

// sendCheckin publishes the midday check-in at most once per local
// calendar day. The sent-date is persisted before publishing, so a
// matching minute observed twice (or a restart inside it) cannot
// double-send.
func (s *scheduler) sendCheckin(u *user.User, local time.Time) error {
	today := common.DateString(local)
	if u.LastCheckinDate == today {
		return nil
	}

	isAdmin := s.botCfg.AdminID != 0 && u.TelegramID == s.botCfg.AdminID
	if !isAdmin && !u.SubscriptionActive(local) {
		return nil
	}

	u.LastCheckinDate = today
	if err := s.users.Update(u); err != nil {
		return err
	}

	return s.eventBus.Publish(events.TopicCheckinDue, events.CheckinDue{
		Event:  events.NewEvent(),
		UserID: u.ID,
		ChatID: u.TelegramID,
		Name:   u.Name,
	})
}

func (s *scheduler) sendReviewPrompt(u *user.User, now time.Time) error {
	from, to := common.LocalDayWindow(now, *u.TimezoneOffset)
	todays, err := s.journal.ListUnanalyzed(u.ID, from, to)
	if err != nil {
		return err
	}

	return s.eventBus.Publish(events.TopicReviewDue, events.ReviewDue{
		Event:     events.NewEvent(),
		UserID:    u.ID,
		ChatID:    u.TelegramID,
		HasEvents: len(todays) > 0,
	})
}
