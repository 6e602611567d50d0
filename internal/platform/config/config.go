// Package config builds process configuration from environment variables so
// main stays lean. Defaults suit local development; production overrides
// everything through the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything cmd/server needs to wire the engine.
type Config struct {
	Addr          string
	JWTSigningKey string

	// Timezone used for calendar-day math (screening age, accumulation
	// windows). Regulatory deadlines follow local dates, not UTC.
	Timezone string

	PostgresURL string

	Redis RedisConfig
	Kafka KafkaConfig

	Screening ScreeningConfig

	// AnomalyURL points at the external anomaly-scoring service. Empty
	// disables the integration; classification never depends on it alone.
	AnomalyURL string
}

// RedisConfig configures the optional screening-result cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit outbox publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ScreeningConfig bounds the watchlist fan-out.
type ScreeningConfig struct {
	// OverallTimeout caps one whole screening run.
	OverallTimeout time.Duration
	// SourceTimeout caps each individual source query.
	SourceTimeout time.Duration
	// RetryBackoff is the single transport-level backoff before a source
	// is marked errored. Business logic never retries.
	RetryBackoff time.Duration
	// MaxAgeDays is the staleness horizon for a prior screening.
	MaxAgeDays int
	// Sources lists the configured watchlist endpoints. Kind is part of the
	// configuration; it is never inferred from a source's behavior.
	Sources []SourceConfig
}

// SourceConfig is one configured watchlist source.
type SourceConfig struct {
	Name   string
	Kind   string
	URL    string
	APIKey string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          getString("AMLGATE_ADDR", ":8080"),
		JWTSigningKey: getString("AMLGATE_JWT_SIGNING_KEY", "dev-secret-change-me"),
		Timezone:      getString("AMLGATE_TIMEZONE", "America/Santiago"),
		PostgresURL:   os.Getenv("AMLGATE_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("AMLGATE_REDIS_URL"),
			PoolSize:     getInt("AMLGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("AMLGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  getDuration("AMLGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("AMLGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("AMLGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getList("AMLGATE_KAFKA_BROKERS"),
			Topic:   getString("AMLGATE_KAFKA_AUDIT_TOPIC", "aml.audit.entries"),
		},
		Screening: ScreeningConfig{
			OverallTimeout: getDuration("AMLGATE_SCREENING_TIMEOUT", 10*time.Second),
			SourceTimeout:  getDuration("AMLGATE_SOURCE_TIMEOUT", 4*time.Second),
			RetryBackoff:   getDuration("AMLGATE_SOURCE_RETRY_BACKOFF", 250*time.Millisecond),
			MaxAgeDays:     getInt("AMLGATE_SCREENING_MAX_AGE_DAYS", 30),
			Sources:        getSources("AMLGATE_SCREENING_SOURCES"),
		},
		AnomalyURL: os.Getenv("AMLGATE_ANOMALY_URL"),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getSources parses semicolon-separated "name|kind|url[|apikey]" entries.
func getSources(key string) []SourceConfig {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []SourceConfig
	for _, entry := range strings.Split(v, ";") {
		parts := strings.Split(strings.TrimSpace(entry), "|")
		if len(parts) < 3 {
			continue
		}
		sc := SourceConfig{
			Name: strings.TrimSpace(parts[0]),
			Kind: strings.TrimSpace(parts[1]),
			URL:  strings.TrimSpace(parts[2]),
		}
		if len(parts) > 3 {
			sc.APIKey = strings.TrimSpace(parts[3])
		}
		if sc.Name != "" && sc.URL != "" {
			out = append(out, sc)
		}
	}
	return out
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
