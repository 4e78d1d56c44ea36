package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCredentialBaseURL   = "https://api.accredible.com/v1"
	DefaultCredentialViewerURL = "https://www.credential.net"
	DefaultCredentialTimeout   = 10 * time.Second
	DefaultIssuanceLockTTL     = 30 * time.Second
)

// Server captures process level configuration for cmd/server and cmd/reconcile.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	// JWTSigningKey verifies learner bearer tokens on /request_certificate.
	JWTSigningKey string
	// CallbackTokenHash is the bcrypt hash of the grading pipeline's shared
	// secret. Empty disables callback authentication.
	CallbackTokenHash string
	// IssuanceLockTTL bounds how long one issuance may hold the per
	// learner/course lock. It must exceed the credential call timeout.
	IssuanceLockTTL time.Duration
	// SeedDemoData loads demo learners and courses at startup.
	SeedDemoData bool

	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Credential CredentialConfig
}

type DatabaseConfig struct {
	URL string
	// AutoMigrate applies the embedded migrations at startup.
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	LifecycleTopic string
	CallbackTopic  string
	GroupID        string
}

// Enabled reports whether any brokers are configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// CredentialConfig configures the outbound credential provider client.
type CredentialConfig struct {
	BaseURL string
	APIKey  string
	// ViewerBaseURL is the public host download links point at.
	ViewerBaseURL string
	Timeout       time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:              getEnv("CERTIFIER_ADDR", ":8080"),
		Environment:       getEnv("ENVIRONMENT", "dev"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		JWTSigningKey:     getEnv("JWT_SIGNING_KEY", ""),
		CallbackTokenHash: getEnv("CALLBACK_TOKEN_HASH", ""),
		IssuanceLockTTL:   getDuration("ISSUANCE_LOCK_TTL", DefaultIssuanceLockTTL),
		SeedDemoData:      getBool("SEED_DEMO_DATA", false),
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			AutoMigrate:     getBool("DATABASE_AUTO_MIGRATE", false),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(getEnv("KAFKA_BROKERS", "")),
			LifecycleTopic: getEnv("KAFKA_LIFECYCLE_TOPIC", "certificate.lifecycle"),
			CallbackTopic:  getEnv("KAFKA_CALLBACK_TOPIC", "certificate.callbacks"),
			GroupID:        getEnv("KAFKA_GROUP_ID", "certifier"),
		},
		Credential: CredentialConfig{
			BaseURL:       strings.TrimRight(getEnv("CREDENTIAL_BASE_URL", DefaultCredentialBaseURL), "/"),
			APIKey:        getEnv("CREDENTIAL_API_KEY", ""),
			ViewerBaseURL: strings.TrimRight(getEnv("CREDENTIAL_VIEWER_URL", DefaultCredentialViewerURL), "/"),
			Timeout:       getDuration("CREDENTIAL_TIMEOUT", DefaultCredentialTimeout),
		},
	}
}

// IsDev reports whether the process runs with development defaults.
func (s Server) IsDev() bool {
	return s.Environment == "dev" || s.Environment == "development"
}

// Validate reports every missing required setting at once.
func (s Server) Validate() error {
	var errs []error
	if s.Credential.APIKey == "" {
		errs = append(errs, errors.New("CREDENTIAL_API_KEY is required"))
	}
	if s.Credential.Timeout <= 0 {
		errs = append(errs, errors.New("CREDENTIAL_TIMEOUT must be positive"))
	}
	if s.IssuanceLockTTL <= s.Credential.Timeout {
		errs = append(errs, fmt.Errorf("ISSUANCE_LOCK_TTL (%s) must exceed CREDENTIAL_TIMEOUT (%s)", s.IssuanceLockTTL, s.Credential.Timeout))
	}
	if s.JWTSigningKey == "" && !s.IsDev() {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required outside dev"))
	}
	if s.Kafka.Enabled() && s.Kafka.LifecycleTopic == "" {
		errs = append(errs, errors.New("KAFKA_LIFECYCLE_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
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

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
