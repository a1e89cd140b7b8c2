// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BookingConfig struct {
	PaymentsEnabled     bool `yaml:"payments_enabled"`
	ReminderHoursBefore int  `yaml:"reminder_hours_before"`
}

type EmailConfig struct {
	Region string `yaml:"region"`
	Sender string `yaml:"sender"`
	// Credentials fall back to the default AWS chain when empty.
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type RedisConfig struct {
	Addr            string `yaml:"addr"`
	DB              int    `yaml:"db"`
	TLS             bool   `yaml:"tls"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	Password        string `yaml:"-"` // Loaded from environment
}

type RabbitMQConfig struct {
	Exchange string `yaml:"exchange"`
	URL      string `yaml:"-"` // Loaded from environment
}

type SchedulerConfig struct {
	OutboxCron        string `yaml:"outbox_cron"`
	AlertSweepCron    string `yaml:"alert_sweep_cron"`
	RemindersCron     string `yaml:"reminders_cron"`
	StalePassesCron   string `yaml:"stale_passes_cron"`
	OutboxBatchSize   int    `yaml:"outbox_batch_size"`
	OutboxMaxAttempts int    `yaml:"outbox_max_attempts"`
}

type RateLimitConfig struct {
	AdmissionsPerMinute int `yaml:"admissions_per_minute"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Booking   BookingConfig   `yaml:"booking"`
	Email     EmailConfig     `yaml:"email"`
	Redis     RedisConfig     `yaml:"redis"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes yaml, applies defaults and environment secrets, and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.ReminderHoursBefore == 0 {
		c.Booking.ReminderHoursBefore = 24
	}
	if c.Redis.CacheTTLSeconds == 0 {
		c.Redis.CacheTTLSeconds = 30
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "courtbook.events"
	}
	if c.Scheduler.OutboxCron == "" {
		c.Scheduler.OutboxCron = "* * * * *"
	}
	if c.Scheduler.AlertSweepCron == "" {
		c.Scheduler.AlertSweepCron = "*/5 * * * *"
	}
	if c.Scheduler.RemindersCron == "" {
		c.Scheduler.RemindersCron = "*/15 * * * *"
	}
	if c.Scheduler.StalePassesCron == "" {
		c.Scheduler.StalePassesCron = "0 3 * * *"
	}
	if c.Scheduler.OutboxBatchSize == 0 {
		c.Scheduler.OutboxBatchSize = 25
	}
	if c.Scheduler.OutboxMaxAttempts == 0 {
		c.Scheduler.OutboxMaxAttempts = 5
	}
	if c.RateLimit.AdmissionsPerMinute == 0 {
		c.RateLimit.AdmissionsPerMinute = 20
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Booking.ReminderHoursBefore < 0 {
		return fmt.Errorf("booking reminder_hours_before must not be negative")
	}
	if c.Redis.CacheTTLSeconds < 0 {
		return fmt.Errorf("redis cache_ttl_seconds must not be negative")
	}
	if c.RateLimit.AdmissionsPerMinute < 0 {
		return fmt.Errorf("ratelimit admissions_per_minute must not be negative")
	}
	if c.Scheduler.OutboxMaxAttempts < 1 {
		return fmt.Errorf("scheduler outbox_max_attempts must be at least 1")
	}

	for name, expr := range map[string]string{
		"outbox_cron":       c.Scheduler.OutboxCron,
		"alert_sweep_cron":  c.Scheduler.AlertSweepCron,
		"reminders_cron":    c.Scheduler.RemindersCron,
		"stale_passes_cron": c.Scheduler.StalePassesCron,
	} {
		if _, err := cron.ParseStandard(strings.TrimSpace(expr)); err != nil {
			return fmt.Errorf("scheduler %s: %w", name, err)
		}
	}

	return nil
}
