package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"SmartRecover/internal/processing"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "SMARTRECOVER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	kafkaBrokersEnv   = "KAFKA_BROKERS"
	logLevelEnv       = "LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Processing    ProcessingConfig   `yaml:"processing"`
	Kafka         KafkaConfig        `yaml:"kafka"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Ledger        LedgerConfig       `yaml:"ledger"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	// WeightedScores marks risk_scores.total_score as a raw weighted sum instead of 0..100.
	WeightedScores bool `yaml:"weightedScores"`
}

// ProcessingConfig tunes the batch engine.
type ProcessingConfig struct {
	BatchSize             int     `yaml:"batchSize"`
	HighPriorityThreshold float64 `yaml:"highPriorityThreshold"`
	Concurrency           int     `yaml:"concurrency"`
	SampleSize            int     `yaml:"sampleSize"`
	TopK                  int     `yaml:"topK"`
}

// KafkaConfig points the high-priority publisher at a topic.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MetricsConfig enables pushing run metrics to a Prometheus pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// ScheduleConfig defines how often recurring runs fire.
type ScheduleConfig struct {
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the schedule timezone string to a time.Location.
func (s ScheduleConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Every parses the interval, falling back to one day.
func (s ScheduleConfig) Every() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// LedgerConfig points at an exported debtor file used instead of the database.
type LedgerConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(kafkaBrokersEnv); v != "" {
		c.Kafka.Brokers = splitList(v)
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Schedule.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Schedule.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.MaxConns > 0 {
		base.Database.MaxConns = override.Database.MaxConns
	}
	if override.Database.WeightedScores {
		base.Database.WeightedScores = true
	}

	if override.Processing.BatchSize > 0 {
		base.Processing.BatchSize = override.Processing.BatchSize
	}
	if override.Processing.HighPriorityThreshold > 0 {
		base.Processing.HighPriorityThreshold = override.Processing.HighPriorityThreshold
	}
	if override.Processing.Concurrency > 0 {
		base.Processing.Concurrency = override.Processing.Concurrency
	}
	if override.Processing.SampleSize > 0 {
		base.Processing.SampleSize = override.Processing.SampleSize
	}
	if override.Processing.TopK > 0 {
		base.Processing.TopK = override.Processing.TopK
	}

	if len(override.Kafka.Brokers) > 0 {
		base.Kafka.Brokers = override.Kafka.Brokers
	}
	if override.Kafka.Topic != "" {
		base.Kafka.Topic = override.Kafka.Topic
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Metrics.PushgatewayURL != "" {
		base.Metrics.PushgatewayURL = override.Metrics.PushgatewayURL
	}
	if override.Metrics.Job != "" {
		base.Metrics.Job = override.Metrics.Job
	}

	if override.Schedule.Interval != "" {
		base.Schedule.Interval = override.Schedule.Interval
	}
	if override.Schedule.Timezone != "" {
		base.Schedule.Timezone = override.Schedule.Timezone
	}

	if override.Ledger.Path != "" {
		base.Ledger = override.Ledger
	}

	return base
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

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{DSN: "", MaxConns: 8},
		Processing: ProcessingConfig{
			BatchSize:             processing.DefaultBatchSize,
			HighPriorityThreshold: processing.DefaultHighPriorityThreshold,
			Concurrency:           1,
			SampleSize:            processing.DefaultSampleSize,
			TopK:                  processing.DefaultTopK,
		},
		Kafka:    KafkaConfig{Topic: "debtors.high-priority"},
		Metrics:  MetricsConfig{Job: "smartrecover"},
		Schedule: ScheduleConfig{Interval: "24h", Timezone: defaultTimezone, location: tz},
	}
}
