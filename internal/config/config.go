package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Instruments []string `yaml:"instruments"`
	DataSource  struct {
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		Timeframe string `yaml:"timeframe"`
	} `yaml:"data_source"`
	Schedule struct {
		PollCron   string `yaml:"poll_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	WhatsApp struct {
		AccountSID string `yaml:"account_sid"`
		AuthToken  string `yaml:"auth_token"`
		From       string `yaml:"from"`
		To         string `yaml:"to"`
	} `yaml:"whatsapp"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		BarTTL   time.Duration `yaml:"bar_ttl"`
	} `yaml:"redis"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Engine struct {
		ResetPolicy string `yaml:"reset_policy"`
	} `yaml:"engine"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// DefaultInstruments are monitored when none are configured.
var DefaultInstruments = []string{"EURUSD", "GBPUSD", "USDJPY"}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("INSTRUMENTS"); v != "" {
		cfg.Instruments = splitList(v)
	}
	if v := os.Getenv("BRIDGE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("BRIDGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("POLL_CRON"); v != "" {
		cfg.Schedule.PollCron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		cfg.Schedule.RunOnStart = v == "true" || v == "1"
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("TWILIO_SID"); v != "" {
		cfg.WhatsApp.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.WhatsApp.AuthToken = v
	}
	if v := os.Getenv("TWILIO_WHATSAPP_NUMBER"); v != "" {
		cfg.WhatsApp.From = v
	}
	if v := os.Getenv("MI_WHATSAPP_NUMBER"); v != "" {
		cfg.WhatsApp.To = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("RESET_POLICY"); v != "" {
		cfg.Engine.ResetPolicy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = append([]string(nil), DefaultInstruments...)
	}
	for i, s := range cfg.Instruments {
		cfg.Instruments[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if cfg.DataSource.Timeframe == "" {
		cfg.DataSource.Timeframe = string(model.TimeframeM1)
	}
	if cfg.Schedule.PollCron == "" {
		cfg.Schedule.PollCron = "@every 60s"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8000"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "crossover-alerts"
	}
	if cfg.Redis.BarTTL == 0 {
		cfg.Redis.BarTTL = 5 * time.Second
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "data/crossmon.db"
	}
	if cfg.Engine.ResetPolicy == "" {
		cfg.Engine.ResetPolicy = "on_attempt"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TelegramEnabled reports whether Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// WhatsAppEnabled reports whether Twilio credentials and both numbers are present.
func (c *Config) WhatsAppEnabled() bool {
	w := c.WhatsApp
	return w.AccountSID != "" && w.AuthToken != "" && w.From != "" && w.To != ""
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool { return len(c.Kafka.Brokers) > 0 }

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if len(c.Instruments) == 0 {
		return fmt.Errorf("instruments must not be empty")
	}
	for _, s := range c.Instruments {
		if s == "" {
			return fmt.Errorf("instruments must not contain empty symbols")
		}
	}
	if !model.Timeframe(c.DataSource.Timeframe).Valid() {
		return fmt.Errorf("data_source.timeframe %q is not supported", c.DataSource.Timeframe)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Telegram.ChatID != "" {
		if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
			return fmt.Errorf("telegram.chat_id must be numeric: %w", err)
		}
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or none, got %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for postgres")
	}
	switch c.Engine.ResetPolicy {
	case "on_attempt", "on_delivery":
	default:
		return fmt.Errorf("engine.reset_policy must be on_attempt or on_delivery, got %q", c.Engine.ResetPolicy)
	}
	if c.Redis.BarTTL < 0 {
		return fmt.Errorf("redis.bar_ttl must not be negative")
	}
	return nil
}
