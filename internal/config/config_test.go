package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// The token has no default, so supply it through the env override path.
	os.Setenv("BOT_TOKEN", "test-token")
	defer os.Unsetenv("BOT_TOKEN")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Scheduler.PollInterval)
	assert.Equal(t, 13, cfg.Scheduler.CheckinHour)
	assert.Equal(t, 0, cfg.Scheduler.CheckinMinute)
	assert.Equal(t, 30, cfg.Payments.SubscriptionDays)
	assert.Equal(t, 7, cfg.Payments.TrialDays)
	assert.True(t, cfg.Scheduler.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing bot token",
			mutate:  func(c *Config) { c.Bot.Token = "" },
			wantErr: "bot.token is required",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Scheduler.PollInterval = 0 },
			wantErr: "scheduler.poll_interval must be greater than 0",
		},
		{
			name:    "zero trial length",
			mutate:  func(c *Config) { c.Payments.TrialDays = 0 },
			wantErr: "payments.subscription_days and payments.trial_days must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Bot:       BotConfig{Token: "token"},
				Scheduler: SchedulerConfig{PollInterval: 60},
				Payments:  PaymentsConfig{SubscriptionDays: 30, TrialDays: 7},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
