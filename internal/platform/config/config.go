// Package config builds runtime configuration from the environment so main
// stays lean. Every knob has a development default; production deployments
// override through the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// Server captures HTTP server and service level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// DevActorHeader allows X-Actor-ID to stand in for a bearer token.
	// Never enable outside local development.
	DevActorHeader bool

	Owner     id.PrincipalID
	ServiceID id.PrincipalID

	InitialThreshold   uint32
	ComparisonPolicy   string
	ThresholdAdminOnly bool

	// BatchOpBudget caps per-call batch work; 0 means unlimited.
	BatchOpBudget int

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// RedisConfig holds connection settings for the audit stream store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds the durable audit store DSN.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig holds the audit sink brokers; empty brokers disables the sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	addr := os.Getenv("SHIPMENT_STREAM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	owner, err := principalEnv("SHIPMENT_STREAM_OWNER_ID")
	if err != nil {
		return Server{}, err
	}
	serviceID, err := principalEnv("SHIPMENT_STREAM_SERVICE_ID")
	if err != nil {
		return Server{}, err
	}

	threshold, err := uintEnv("SHIPMENT_STREAM_THRESHOLD", 0)
	if err != nil {
		return Server{}, err
	}
	budget, err := intEnv("SHIPMENT_STREAM_BATCH_BUDGET", 0)
	if err != nil {
		return Server{}, err
	}

	policy := os.Getenv("SHIPMENT_STREAM_COMPARISON_POLICY")
	if policy == "" {
		policy = "strict"
	}

	return Server{
		Addr:               addr,
		JWTSigningKey:      jwtSigningKey,
		DevActorHeader:     os.Getenv("SHIPMENT_STREAM_DEV_ACTOR_HEADER") == "true",
		Owner:              owner,
		ServiceID:          serviceID,
		InitialThreshold:   uint32(threshold),
		ComparisonPolicy:   policy,
		ThresholdAdminOnly: os.Getenv("SHIPMENT_STREAM_THRESHOLD_ADMIN_ONLY") == "true",
		BatchOpBudget:      budget,
		Redis:              redisFromEnv(),
		Postgres:           PostgresConfig{DSN: os.Getenv("POSTGRES_DSN")},
		Kafka:              kafkaFromEnv(),
	}, nil
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func kafkaFromEnv() KafkaConfig {
	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "shipment-stream.audit"
	}
	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	return KafkaConfig{Brokers: brokers, Topic: topic}
}

// principalEnv parses an optional principal ID variable. Absence yields the
// nil principal; main decides whether that is acceptable for the role.
func principalEnv(key string) (id.PrincipalID, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return id.NilPrincipal, nil
	}
	p, err := id.ParsePrincipalID(raw)
	if err != nil {
		return id.NilPrincipal, fmt.Errorf("%s: %w", key, err)
	}
	return p, nil
}

func uintEnv(key string, fallback uint64) (uint64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
