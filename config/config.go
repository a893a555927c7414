package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig
	Database   DatabaseConfig
	RateLimit  RateLimitConfig

	// Integrations
	Telegram       TelegramConfig
	GoogleCalendar GoogleCalendarConfig

	// Scheduling assistant
	Scheduling   SchedulingConfig
	Reminder     ReminderConfig
	Reconcile    ReconcileConfig
	Notification NotificationConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type DatabaseConfig struct {
	Driver       string // pgx | sqlite
	DSN          string
	MaxOpenConns int
}

type RateLimitConfig struct {
	PerMin int
}

type TelegramConfig struct {
	BotToken      string
	WebhookURL    string
	WebhookSecret string
	NgrokAPI      string
}

type GoogleCalendarConfig struct {
	CredentialsPath string
	CalendarID      string
	RedirectURL     string
}

type SchedulingConfig struct {
	LookaheadDays   int
	MaxSlots        int
	SlotStepMinutes int
	BreakMinutes    int
	DefaultTimezone string
	DefaultLanguage string
	OpTimeout       time.Duration
}

type ReminderConfig struct {
	Enabled bool
	Cron    string
}

type ReconcileConfig struct {
	Enabled     bool
	Cron        string
	GracePeriod time.Duration
}

type NotificationConfig struct {
	PrimaryURL   string
	FallbackURLs []string
	Path         string
	MaxAttempts  int
	BaseBackoff  time.Duration
	PollInterval time.Duration
	Timeout      time.Duration
}

// BaseURLs returns the primary URL followed by the fallbacks, skipping blanks.
func (c NotificationConfig) BaseURLs() []string {
	var urls []string
	for _, u := range append([]string{c.PrimaryURL}, c.FallbackURLs...) {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Load loads configuration using Viper.
// A .env file, when present, is loaded into the process environment first.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	cfg.Database.Driver = viper.GetString("database.driver")
	cfg.Database.DSN = viper.GetString("database.dsn")
	cfg.Database.MaxOpenConns = viper.GetInt("database.max_open_conns")
	if dsn := viper.GetString("database_url"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	cfg.RateLimit.PerMin = viper.GetInt("rate_limit.per_min")

	// Integrations
	cfg.Telegram.BotToken = viper.GetString("telegram.bot_token")
	cfg.Telegram.WebhookURL = viper.GetString("telegram.webhook_url")
	cfg.Telegram.WebhookSecret = viper.GetString("telegram.webhook_secret")
	cfg.Telegram.NgrokAPI = viper.GetString("telegram.ngrok_api")
	if tgToken := viper.GetString("telegram_bot_token"); tgToken != "" {
		cfg.Telegram.BotToken = tgToken
	}

	cfg.GoogleCalendar.CredentialsPath = viper.GetString("google_calendar.credentials_path")
	cfg.GoogleCalendar.CalendarID = viper.GetString("google_calendar.calendar_id")
	cfg.GoogleCalendar.RedirectURL = viper.GetString("google_calendar.redirect_url")
	if googleCreds := viper.GetString("google_calendar_credentials"); googleCreds != "" {
		cfg.GoogleCalendar.CredentialsPath = googleCreds
	}

	// Scheduling assistant
	cfg.Scheduling.LookaheadDays = viper.GetInt("scheduling.lookahead_days")
	cfg.Scheduling.MaxSlots = viper.GetInt("scheduling.max_slots")
	cfg.Scheduling.SlotStepMinutes = viper.GetInt("scheduling.slot_step_minutes")
	cfg.Scheduling.BreakMinutes = viper.GetInt("scheduling.break_minutes")
	cfg.Scheduling.DefaultTimezone = viper.GetString("scheduling.default_timezone")
	cfg.Scheduling.DefaultLanguage = viper.GetString("scheduling.default_language")
	cfg.Scheduling.OpTimeout = viper.GetDuration("scheduling.op_timeout")

	cfg.Reminder.Enabled = viper.GetBool("reminder.enabled")
	cfg.Reminder.Cron = viper.GetString("reminder.cron")

	cfg.Reconcile.Enabled = viper.GetBool("reconcile.enabled")
	cfg.Reconcile.Cron = viper.GetString("reconcile.cron")
	cfg.Reconcile.GracePeriod = viper.GetDuration("reconcile.grace_period")

	cfg.Notification.PrimaryURL = viper.GetString("notification.primary_url")
	cfg.Notification.FallbackURLs = splitList(viper.GetString("notification.fallback_urls"))
	if list := viper.GetStringSlice("notification.fallback_urls"); len(cfg.Notification.FallbackURLs) == 0 && len(list) > 0 {
		cfg.Notification.FallbackURLs = list
	}
	cfg.Notification.Path = viper.GetString("notification.path")
	cfg.Notification.MaxAttempts = viper.GetInt("notification.max_attempts")
	cfg.Notification.BaseBackoff = viper.GetDuration("notification.base_backoff")
	cfg.Notification.PollInterval = viper.GetDuration("notification.poll_interval")
	cfg.Notification.Timeout = viper.GetDuration("notification.timeout")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be pgx or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Scheduling.MaxSlots <= 0 {
		return fmt.Errorf("scheduling.max_slots must be positive")
	}
	if _, err := time.LoadLocation(c.Scheduling.DefaultTimezone); err != nil {
		return fmt.Errorf("scheduling.default_timezone: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "file:scheduler.db?_pragma=journal_mode(WAL)")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("rate_limit.per_min", 30)

	viper.SetDefault("telegram.ngrok_api", "http://ngrok:4040")
	viper.SetDefault("google_calendar.calendar_id", "primary")

	viper.SetDefault("scheduling.lookahead_days", 7)
	viper.SetDefault("scheduling.max_slots", 3)
	viper.SetDefault("scheduling.slot_step_minutes", 30)
	viper.SetDefault("scheduling.break_minutes", 10)
	viper.SetDefault("scheduling.default_timezone", "Europe/Paris")
	viper.SetDefault("scheduling.default_language", "fr")
	viper.SetDefault("scheduling.op_timeout", "30s")

	viper.SetDefault("reminder.enabled", true)
	viper.SetDefault("reminder.cron", "*/2 * * * *")
	viper.SetDefault("reconcile.enabled", true)
	viper.SetDefault("reconcile.cron", "*/15 * * * *")
	viper.SetDefault("reconcile.grace_period", "10m")

	viper.SetDefault("notification.path", "/internal/notifications")
	viper.SetDefault("notification.max_attempts", 8)
	viper.SetDefault("notification.base_backoff", "30s")
	viper.SetDefault("notification.poll_interval", "10s")
	viper.SetDefault("notification.timeout", "5s")
}

// splitList parses comma-separated values, since env vars cannot carry YAML lists.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
