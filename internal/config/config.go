// Package config loads the service configuration from a YAML file, an
// optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Lark         LarkConfig         `mapstructure:"lark"`
	Notification NotificationConfig `mapstructure:"notification"`
	Report       ReportConfig       `mapstructure:"report"`
	Logger       LoggerConfig       `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LarkConfig holds Lark API credentials. Leaving both empty disables
// delivery and notices are only logged.
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	BaseURL   string `mapstructure:"base_url"`
}

// Enabled reports whether messages are delivered through Lark
func (l LarkConfig) Enabled() bool {
	return l.AppID != "" && l.AppSecret != ""
}

// NotificationConfig holds notice recipients and reminder settings
type NotificationConfig struct {
	AdminRecipients   []string `mapstructure:"admin_recipients"`
	SiteURL           string   `mapstructure:"site_url"`
	ReminderThreshold int      `mapstructure:"reminder_threshold"`
	StaleDays         int      `mapstructure:"stale_days"`
	DeadlineAlertDays int      `mapstructure:"deadline_alert_days"`
	ReminderCron      string   `mapstructure:"reminder_cron"`
	Timezone          string   `mapstructure:"timezone"`
}

// Location resolves the configured timezone
func (n NotificationConfig) Location() (*time.Location, error) {
	if n.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(n.Timezone)
}

// ReportConfig holds export settings
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// An empty configPath skips the file and uses defaults plus environment.
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit_per_min", 600)

	v.SetDefault("database.path", "data/backoffice.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("notification.reminder_threshold", 50)
	v.SetDefault("notification.stale_days", 7)
	v.SetDefault("notification.deadline_alert_days", 7)
	v.SetDefault("notification.reminder_cron", "0 9 * * *")
	v.SetDefault("notification.timezone", "Asia/Tokyo")

	v.SetDefault("report.output_dir", "reports")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("lark.app_id", "LARK_APP_ID")
	v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	v.BindEnv("notification.site_url", "SITE_URL")
	v.BindEnv("database.path", "DATABASE_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitPerMin < 0 {
		return fmt.Errorf("server.rate_limit_per_min must not be negative")
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}

	if (c.Lark.AppID == "") != (c.Lark.AppSecret == "") {
		return fmt.Errorf("lark.app_id and lark.app_secret must be set together")
	}

	n := c.Notification
	if n.ReminderThreshold < 1 || n.ReminderThreshold > 100 {
		return fmt.Errorf("notification.reminder_threshold must be between 1 and 100, got %d", n.ReminderThreshold)
	}
	if n.StaleDays < 1 {
		return fmt.Errorf("notification.stale_days must be at least 1, got %d", n.StaleDays)
	}
	if n.DeadlineAlertDays < 1 {
		return fmt.Errorf("notification.deadline_alert_days must be at least 1, got %d", n.DeadlineAlertDays)
	}
	for _, r := range n.AdminRecipients {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("notification.admin_recipients contains an empty entry")
		}
		if strings.Contains(r, "@") {
			if err := utils.ValidateEmail(r); err != nil {
				return fmt.Errorf("notification.admin_recipients: %w", err)
			}
		}
	}
	if _, err := cron.ParseStandard(n.ReminderCron); err != nil {
		return fmt.Errorf("notification.reminder_cron is invalid: %w", err)
	}
	if _, err := n.Location(); err != nil {
		return fmt.Errorf("notification.timezone is invalid: %w", err)
	}

	return nil
}
