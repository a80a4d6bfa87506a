package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Bot       BotConfig       `mapstructure:"bot"`
	Payments  PaymentsConfig  `mapstructure:"payments"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type BotConfig struct {
	Token      string `mapstructure:"token"`
	WebhookURL string `mapstructure:"webhook_url"`
	AdminID    int64  `mapstructure:"admin_id"`
	Timeout    int    `mapstructure:"timeout"`
}

type PaymentsConfig struct {
	ShopID           string `mapstructure:"shop_id"`
	SecretKey        string `mapstructure:"secret_key"`
	APIURL           string `mapstructure:"api_url"`
	ReturnURL        string `mapstructure:"return_url"`
	Price            string `mapstructure:"price"`
	Currency         string `mapstructure:"currency"`
	SubscriptionDays int    `mapstructure:"subscription_days"`
	TrialDays        int    `mapstructure:"trial_days"`
	Timeout          int    `mapstructure:"timeout"`
}

type SchedulerConfig struct {
	PollInterval  int  `mapstructure:"poll_interval"`
	CheckinHour   int  `mapstructure:"checkin_hour"`
	CheckinMinute int  `mapstructure:"checkin_minute"`
	Enabled       bool `mapstructure:"enabled"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings a running process cannot do without.
// Missing credentials fail fast at startup instead of surfacing mid-dialog.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required")
	}
	if c.Scheduler.PollInterval <= 0 {
		return fmt.Errorf("scheduler.poll_interval must be greater than 0")
	}
	if c.Payments.SubscriptionDays <= 0 || c.Payments.TrialDays <= 0 {
		return fmt.Errorf("payments.subscription_days and payments.trial_days must be greater than 0")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "habitbot")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	viper.SetDefault("bot.token", "")
	viper.SetDefault("bot.webhook_url", "")
	viper.SetDefault("bot.admin_id", 0)
	viper.SetDefault("bot.timeout", 30)

	viper.SetDefault("payments.shop_id", "")
	viper.SetDefault("payments.secret_key", "")
	viper.SetDefault("payments.api_url", "https://api.yookassa.ru/v3")
	viper.SetDefault("payments.return_url", "")
	viper.SetDefault("payments.price", "299.00")
	viper.SetDefault("payments.currency", "RUB")
	viper.SetDefault("payments.subscription_days", 30)
	viper.SetDefault("payments.trial_days", 7)
	viper.SetDefault("payments.timeout", 30)

	viper.SetDefault("scheduler.poll_interval", 60) // seconds, one sweep per minute
	viper.SetDefault("scheduler.checkin_hour", 13)
	viper.SetDefault("scheduler.checkin_minute", 0)
	viper.SetDefault("scheduler.enabled", true)
}
