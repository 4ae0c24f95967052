package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"aidchain/pkg/domain"
)

// Server captures everything the process needs at construction time. The
// administrator account, threshold, and minimum donation are immutable for
// the life of the process; changing them means redeploying.
type Server struct {
	Addr          string
	JWTSigningKey string

	Administrator domain.Account
	Threshold     domain.Amount
	MinDonation   domain.Amount

	PostgresDSN  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
}

// RedisConfig tunes the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Defaults mirror the original deployment: 0.32 ether threshold and 0.013
// ether minimum donation, expressed in wei.
const (
	defaultThreshold   = "320000000000000000"
	defaultMinDonation = "13000000000000000"
)

// FromEnv builds a Server config from environment variables so main stays
// lean.
//
// Errors: returns an error rather than a partially valid config when the
// administrator account or an amount override is malformed.
func FromEnv() (Server, error) {
	addr := os.Getenv("AIDCHAIN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	adminRaw := os.Getenv("AIDCHAIN_ADMIN_ACCOUNT")
	if adminRaw == "" {
		return Server{}, fmt.Errorf("AIDCHAIN_ADMIN_ACCOUNT is required")
	}
	admin, err := domain.ParseAccount(adminRaw)
	if err != nil {
		return Server{}, fmt.Errorf("AIDCHAIN_ADMIN_ACCOUNT: %w", err)
	}

	threshold, err := amountEnv("AIDCHAIN_THRESHOLD", defaultThreshold)
	if err != nil {
		return Server{}, err
	}
	minDonation, err := amountEnv("AIDCHAIN_MIN_DONATION", defaultMinDonation)
	if err != nil {
		return Server{}, err
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_EVENTS_TOPIC")
	if topic == "" {
		topic = "aidchain.events"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		Administrator: admin,
		Threshold:     threshold,
		MinDonation:   minDonation,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
	}, nil
}

// Redis returns the Redis client configuration with pool defaults.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func amountEnv(key, fallback string) (domain.Amount, error) {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	amt, err := domain.ParseAmount(raw)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("%s: %w", key, err)
	}
	return amt, nil
}
