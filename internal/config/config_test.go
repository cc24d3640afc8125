package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartRecover/internal/processing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(kafkaBrokersEnv, "")
	t.Setenv(logLevelEnv, "")

	cfg := Load()

	assert.Equal(t, 100, cfg.Processing.BatchSize)
	assert.Equal(t, 500000.0, cfg.Processing.HighPriorityThreshold)
	assert.Equal(t, 10, cfg.Processing.TopK)
	assert.Equal(t, processing.DefaultSampleSize, cfg.Processing.SampleSize)
	assert.False(t, cfg.Database.WeightedScores)
	assert.Equal(t, "debtors.high-priority", cfg.Kafka.Topic)
	assert.Equal(t, 24*time.Hour, cfg.Schedule.Every())
	assert.Equal(t, "UTC", cfg.Schedule.Location().String())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
logging:
  level: debug
  format: json
database:
  weightedScores: true
processing:
  batchSize: 250
  highPriorityThreshold: 750000
  concurrency: 4
kafka:
  brokers: ["file:9092"]
schedule:
  interval: 15m
  timezone: Europe/Paris
ledger:
  path: /data/ledger.html
`)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(kafkaBrokersEnv, "a:9092, b:9092")
	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(logLevelEnv, "")

	cfg := Load()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 250, cfg.Processing.BatchSize)
	assert.True(t, cfg.Database.WeightedScores)
	assert.Equal(t, 750000.0, cfg.Processing.HighPriorityThreshold)
	assert.Equal(t, 4, cfg.Processing.Concurrency)
	assert.Equal(t, 10, cfg.Processing.SampleSize)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 15*time.Minute, cfg.Schedule.Every())
	assert.Equal(t, "/data/ledger.html", cfg.Ledger.Path)
}

func TestLoadIgnoresBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing: [oops"), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(kafkaBrokersEnv, "")
	t.Setenv(logLevelEnv, "")

	cfg := Load()
	assert.Equal(t, 100, cfg.Processing.BatchSize)
}

func TestScheduleEveryFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 24*time.Hour, ScheduleConfig{Interval: "soon"}.Every())
	assert.Equal(t, 24*time.Hour, ScheduleConfig{Interval: "-5m"}.Every())
	assert.Equal(t, time.Hour, ScheduleConfig{Interval: "1h"}.Every())
}
