package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string
	// AdminKeyHash is the bcrypt hash of the operational API key accepted by
	// the /ops routes. Empty disables those routes.
	AdminKeyHash string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	// SweepInterval controls how often the job expiration sweep runs.
	SweepInterval time.Duration
	// StatsWindow is the growth comparison period for dashboard stats.
	StatsWindow time.Duration
	// RecentActivityLimit caps the activity feed on the dashboard.
	RecentActivityLimit int
}

// PostgresConfig holds connection settings for the durable stores.
// An empty DSN selects the in-memory stores.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds connection settings for the sweep coordination lock.
// An empty URL disables Redis (single-instance deployments).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the activity event sink.
// Empty Brokers disables the sink; the store remains the source of truth.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("BACKOFFICE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	sweepInterval := durationEnv("SWEEP_INTERVAL", 24*time.Hour)
	statsWindow := durationEnv("STATS_WINDOW", 30*24*time.Hour)

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_ACTIVITY_TOPIC")
	if topic == "" {
		topic = "activity-events"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		AdminKeyHash:  os.Getenv("ADMIN_KEY_HASH"),
		Postgres:      PostgresConfig{DSN: os.Getenv("POSTGRES_DSN")},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka:               KafkaConfig{Brokers: brokers, Topic: topic},
		SweepInterval:       sweepInterval,
		StatsWindow:         statsWindow,
		RecentActivityLimit: 20,
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
