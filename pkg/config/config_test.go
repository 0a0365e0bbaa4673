package config

import (
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CANVAS_API_URL", "https://canvas.test")
	t.Setenv("CANVAS_API_TOKEN", "tok")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule.DaysAhead != 7 || cfg.Schedule.Hour != 8 || cfg.Schedule.Minute != 0 {
		t.Errorf("schedule defaults = %+v", cfg.Schedule)
	}
	if cfg.Ollama.Model != "mistral" {
		t.Errorf("model default = %q", cfg.Ollama.Model)
	}
	if cfg.Location == nil || cfg.Location.String() != "America/New_York" {
		t.Errorf("location = %v", cfg.Location)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("CANVAS_API_URL", "")
	t.Setenv("CANVAS_API_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing Canvas credentials")
	}
}

func TestLoadInvalidHour(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECK_HOUR", "24")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for CHECK_HOUR out of range")
	}
}

func TestLoadInvalidMinute(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECK_MINUTE", "60")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for CHECK_MINUTE out of range")
	}
}

func TestLoadNegativeDaysAhead(t *testing.T) {
	setRequired(t)
	t.Setenv("DAYS_AHEAD", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative DAYS_AHEAD")
	}
}

func TestLoadInvalidTimezoneFatal(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone, not a UTC fallback")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DAYS_AHEAD", "3")
	t.Setenv("CHECK_HOUR", "21")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123456")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule.DaysAhead != 3 || cfg.Schedule.Hour != 21 {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Telegram.ChatID != -100123456 {
		t.Errorf("chat id = %d", cfg.Telegram.ChatID)
	}
}

func TestRequireSMTP(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.RequireSMTP(); err == nil {
		t.Fatal("expected error with no SMTP settings")
	}

	t.Setenv("SMTP_SERVER", "smtp.test")
	t.Setenv("EMAIL_SENDER", "bot@test")
	t.Setenv("EMAIL_PASSWORD", "pw")
	t.Setenv("SMS_EMAIL", "5551234@gw.test")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.RequireSMTP(); err != nil {
		t.Errorf("RequireSMTP: %v", err)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("port default = %d", cfg.SMTP.Port)
	}
}
