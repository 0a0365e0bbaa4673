package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full configuration surface, loaded once at startup and
// read-only afterwards.
type Config struct {
	Canvas   CanvasConfig
	Telegram TelegramConfig
	Ollama   OllamaConfig
	Schedule ScheduleConfig
	SMTP     SMTPConfig

	// Location is resolved from Schedule.Timezone during Load.
	Location *time.Location
}

type CanvasConfig struct {
	BaseURL string
	Token   string
}

type TelegramConfig struct {
	Token string
	// ChatID is the fixed target for scheduled reports; 0 disables the
	// daily job.
	ChatID int64
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type ScheduleConfig struct {
	DaysAhead int
	Hour      int
	Minute    int
	Timezone  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
	SMSEmail string
}

// Load reads configuration from the environment (with a best-effort .env
// load first), applies defaults and validates. Any violation is an error;
// callers treat it as fatal.
func Load() (*Config, error) {
	// A missing .env file is fine; explicit environment always wins.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("DAYS_AHEAD", 7)
	v.SetDefault("CHECK_HOUR", 8)
	v.SetDefault("CHECK_MINUTE", 0)
	v.SetDefault("APP_TIMEZONE", "America/New_York")
	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434/v1")
	v.SetDefault("OLLAMA_MODEL", "mistral")
	v.SetDefault("SMTP_PORT", 587)
	v.AutomaticEnv()

	cfg := &Config{
		Canvas: CanvasConfig{
			BaseURL: v.GetString("CANVAS_API_URL"),
			Token:   v.GetString("CANVAS_API_TOKEN"),
		},
		Telegram: TelegramConfig{
			Token:  v.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID: v.GetInt64("TELEGRAM_CHAT_ID"),
		},
		Ollama: OllamaConfig{
			BaseURL: v.GetString("OLLAMA_BASE_URL"),
			Model:   v.GetString("OLLAMA_MODEL"),
		},
		Schedule: ScheduleConfig{
			DaysAhead: v.GetInt("DAYS_AHEAD"),
			Hour:      v.GetInt("CHECK_HOUR"),
			Minute:    v.GetInt("CHECK_MINUTE"),
			Timezone:  v.GetString("APP_TIMEZONE"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_SERVER"),
			Port:     v.GetInt("SMTP_PORT"),
			Sender:   v.GetString("EMAIL_SENDER"),
			Password: v.GetString("EMAIL_PASSWORD"),
			SMSEmail: v.GetString("SMS_EMAIL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		// A silent UTC fallback would shift the daily delivery time, so an
		// unknown zone is fatal.
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Schedule.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Canvas.BaseURL == "" {
		missing = append(missing, "CANVAS_API_URL")
	}
	if c.Canvas.Token == "" {
		missing = append(missing, "CANVAS_API_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}

	if c.Schedule.DaysAhead < 0 {
		return fmt.Errorf("DAYS_AHEAD must be >= 0, got %d", c.Schedule.DaysAhead)
	}
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return fmt.Errorf("CHECK_HOUR must be 0-23, got %d", c.Schedule.Hour)
	}
	if c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return fmt.Errorf("CHECK_MINUTE must be 0-59, got %d", c.Schedule.Minute)
	}
	return nil
}

// RequireTelegram validates the subset the Telegram bot needs.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("missing required environment variable TELEGRAM_BOT_TOKEN")
	}
	return nil
}

// RequireSMTP validates the subset the email-to-SMS notifier needs.
func (c *Config) RequireSMTP() error {
	var missing []string
	if c.SMTP.Host == "" {
		missing = append(missing, "SMTP_SERVER")
	}
	if c.SMTP.Sender == "" {
		missing = append(missing, "EMAIL_SENDER")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "EMAIL_PASSWORD")
	}
	if c.SMTP.SMSEmail == "" {
		missing = append(missing, "SMS_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}
