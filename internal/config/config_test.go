package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Instruments, []string{"EURUSD", "GBPUSD", "USDJPY"}) {
		t.Errorf("instruments = %v", cfg.Instruments)
	}
	if cfg.Schedule.PollCron != "@every 60s" {
		t.Errorf("poll cron = %q", cfg.Schedule.PollCron)
	}
	if cfg.HTTP.Addr != ":8000" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.DataSource.Timeframe != "M1" {
		t.Errorf("timeframe = %q", cfg.DataSource.Timeframe)
	}
	if cfg.Engine.ResetPolicy != "on_attempt" {
		t.Errorf("reset policy = %q", cfg.Engine.ResetPolicy)
	}
	if cfg.Redis.BarTTL != 5*time.Second {
		t.Errorf("bar ttl = %v", cfg.Redis.BarTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() || cfg.WhatsAppEnabled() || cfg.KafkaEnabled() {
		t.Error("no channel should be enabled without credentials")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
instruments: [eurusd, " xauusd "]
data_source:
  base_url: http://bridge:9000
  timeframe: M5
telegram:
  bot_token: abc
  chat_id: "-100123"
kafka:
  brokers: [kafka:9092]
redis:
  addr: redis:6379
  bar_ttl: 10s
engine:
  reset_policy: on_delivery
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Instruments, []string{"EURUSD", "XAUUSD"}) {
		t.Errorf("instruments = %v", cfg.Instruments)
	}
	if cfg.DataSource.BaseURL != "http://bridge:9000" || cfg.DataSource.Timeframe != "M5" {
		t.Errorf("data source = %+v", cfg.DataSource)
	}
	if cfg.Redis.BarTTL != 10*time.Second {
		t.Errorf("bar ttl = %v", cfg.Redis.BarTTL)
	}
	if !cfg.TelegramEnabled() || !cfg.KafkaEnabled() {
		t.Error("telegram and kafka should be enabled")
	}
	if cfg.Kafka.Topic != "crossover-alerts" {
		t.Errorf("kafka topic = %q", cfg.Kafka.Topic)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "instruments: [EURUSD]\nhttp:\n  addr: \":9000\"\n")
	t.Setenv("INSTRUMENTS", "GBPUSD, USDJPY")
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("TWILIO_SID", "AC1")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "+14155238886")
	t.Setenv("MI_WHATSAPP_NUMBER", "+34600000000")
	t.Setenv("RESET_POLICY", "on_delivery")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Instruments, []string{"GBPUSD", "USDJPY"}) {
		t.Errorf("instruments = %v", cfg.Instruments)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if !cfg.WhatsAppEnabled() {
		t.Error("whatsapp should be enabled")
	}
	if cfg.Engine.ResetPolicy != "on_delivery" || !cfg.Schedule.RunOnStart {
		t.Errorf("engine = %+v schedule = %+v", cfg.Engine, cfg.Schedule)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "instruments: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timeframe", func(c *Config) { c.DataSource.Timeframe = "W1" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x"; c.Telegram.ChatID = "" }},
		{"non-numeric chat", func(c *Config) { c.Telegram.ChatID = "@channel" }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" }},
		{"bad reset policy", func(c *Config) { c.Engine.ResetPolicy = "never" }},
		{"empty symbol", func(c *Config) { c.Instruments = []string{"EURUSD", ""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
