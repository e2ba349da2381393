// Package config provides configuration structures and validation for the
// coin gateway and the audit processor. Values come from <name>.env files
// and the environment.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field is one
// subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	CORS        CORSConfig
	Auth        AuthConfig
	Coin        CoinConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// CORSConfig lists the browser origins allowed to call the gateway
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the admin token verification settings
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	AdminRole string
}

// CoinConfig contains ledger behaviour settings
type CoinConfig struct {
	Timezone        string // IANA zone that defines the redemption day
	HistoryCapacity int    // Visits retained per member
	QRCodeSize      int    // PNG edge length in pixels
	ReportMonths    int    // Months in the venue monthly series
}

// Location resolves the configured timezone, falling back to UTC
func (c CoinConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	CoinEventsTopic   string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	AuditCollection string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int           // Maximum number of retry attempts for outbox messages
	Retention        time.Duration // Age after which PROCESSED messages are purged; 0 keeps them
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

const (
	EnvDevelopment = "development"

	// DevJWTSecret is the well-known local default; validate rejects it
	// whenever APP_ENV is not development.
	DevJWTSecret = "dev-secret-change-me"
)

// problems collects validation failures so startup reports all of them at once
type problems []string

func (p *problems) check(ok bool, key, want string) {
	if !ok {
		*p = append(*p, key+" "+want)
	}
}

func (p *problems) positive(key string, v int64) {
	p.check(v > 0, key, "must be greater than 0")
}

func (p *problems) positiveDuration(key string, d time.Duration) {
	p.check(d > 0, key, "must be greater than 0")
}

func (p *problems) required(key, v string) {
	p.check(strings.TrimSpace(v) != "", key, "is required")
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New(strings.Join(p, ", "))
}

// validate checks every subsystem. Kafka and the outbox are only used by the
// audit processor, but both binaries share the defaults so the full set is
// checked either way.
func (c *Config) validate() error {
	var p problems

	p.positive("SERVER_PORT", int64(c.Server.Port))
	p.positiveDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	p.positiveDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	p.positiveDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	p.positiveDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)

	p.required("AUTH_JWT_SECRET", c.Auth.JWTSecret)
	p.check(c.Application.Env == EnvDevelopment || c.Auth.JWTSecret != DevJWTSecret,
		"AUTH_JWT_SECRET", "must be overridden outside "+EnvDevelopment)
	p.required("AUTH_ADMIN_ROLE", c.Auth.AdminRole)

	_, tzErr := time.LoadLocation(c.Coin.Timezone)
	p.check(tzErr == nil, "COIN_TIMEZONE", "must be a valid IANA zone")
	p.positive("COIN_HISTORY_CAPACITY", int64(c.Coin.HistoryCapacity))
	p.positive("COIN_QR_SIZE", int64(c.Coin.QRCodeSize))
	p.positive("COIN_REPORT_MONTHS", int64(c.Coin.ReportMonths))

	p.required("KAFKA_BROKERS", c.Kafka.Brokers)
	p.required("KAFKA_COIN_EVENTS_TOPIC", c.Kafka.CoinEventsTopic)
	p.required("KAFKA_CONSUMER_GROUP", c.Kafka.ConsumerGroup)
	p.required("KAFKA_DLQ_TOPIC", c.Kafka.DLQTopic)
	p.positive("KAFKA_CONSUMER_MIN_BYTES", int64(c.Kafka.MinBytes))
	p.positive("KAFKA_CONSUMER_MAX_BYTES", int64(c.Kafka.MaxBytes))
	p.check(c.Kafka.MaxBytes >= c.Kafka.MinBytes, "KAFKA_CONSUMER_MAX_BYTES", "must not be below KAFKA_CONSUMER_MIN_BYTES")
	p.positiveDuration("KAFKA_CONSUMER_MAX_WAIT", c.Kafka.MaxWait)

	p.required("POSTGRES_URL", c.Postgres.URL)
	p.positive("POSTGRES_MAX_CONNS", int64(c.Postgres.MaxConns))
	p.positive("POSTGRES_MIN_CONNS", int64(c.Postgres.MinConns))
	p.check(c.Postgres.MinConns <= c.Postgres.MaxConns, "POSTGRES_MIN_CONNS", "must not exceed POSTGRES_MAX_CONNS")
	p.positiveDuration("POSTGRES_MAX_CONN_LIFETIME", c.Postgres.ConnMaxLifetime)
	p.positiveDuration("POSTGRES_MAX_CONN_IDLE_TIME", c.Postgres.ConnMaxIdleTime)

	p.required("MONGO_URI", c.MongoDB.URI)
	p.required("MONGO_DATABASE", c.MongoDB.Database)
	p.required("MONGO_AUDIT_COLLECTION", c.MongoDB.AuditCollection)
	p.positiveDuration("MONGO_TIMEOUT", c.MongoDB.Timeout)
	p.check(c.MongoDB.MaxPoolSize > 0, "MONGO_MAX_POOL_SIZE", "must be greater than 0")
	p.check(c.MongoDB.MinPoolSize > 0, "MONGO_MIN_POOL_SIZE", "must be greater than 0")
	p.positiveDuration("MONGO_MAX_CONN_IDLE_TIME", c.MongoDB.MaxConnIdleTime)

	p.positiveDuration("OUTBOX_POLLING_INTERVAL", c.Outbox.PollingInterval)
	p.positive("OUTBOX_BATCH_SIZE", int64(c.Outbox.BatchSize))
	p.positive("OUTBOX_MAX_RETRY_ATTEMPTS", int64(c.Outbox.MaxRetryAttempts))
	p.check(c.Outbox.Retention >= 0, "OUTBOX_RETENTION", "must not be negative")

	p.positive("WORKER_POOL_SIZE", int64(c.WorkerPool.Size))

	return p.err()
}
