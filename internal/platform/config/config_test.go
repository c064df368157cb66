package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.NotEmpty(t, cfg.JWTSigningKey)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "activity-events", cfg.Kafka.Topic)
	assert.Equal(t, 24*time.Hour, cfg.SweepInterval)
	assert.Equal(t, 30*24*time.Hour, cfg.StatsWindow)
	assert.Equal(t, 20, cfg.RecentActivityLimit)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BACKOFFICE_ADDR", ":9999")
	t.Setenv("JWT_SIGNING_KEY", "prod-key")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/backoffice")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("KAFKA_ACTIVITY_TOPIC", "audit-events")
	t.Setenv("SWEEP_INTERVAL", "1h")
	t.Setenv("STATS_WINDOW", "168h")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "prod-key", cfg.JWTSigningKey)
	assert.Equal(t, "postgres://localhost/backoffice", cfg.Postgres.DSN)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "audit-events", cfg.Kafka.Topic)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.StatsWindow)
}

func TestFromEnvMalformedDuration(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "often")
	cfg := FromEnv()
	assert.Equal(t, 24*time.Hour, cfg.SweepInterval, "malformed duration falls back to the default")
}
