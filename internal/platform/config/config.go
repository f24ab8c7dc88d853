// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Resolver captures the batch resolver's configuration. Optional adapters
// (HTTP lookup service, Postgres, Redis, Kafka) are enabled by setting their
// address/DSN; empty means disabled.
type Resolver struct {
	// InputDir holds one JSON array of normalized records per source system.
	InputDir string
	// OutputDir receives match_scores.json, relationships.json, and
	// unified_entities.json.
	OutputDir string
	// Workers bounds concurrent block scoring.
	Workers int

	// HTTPAddr, when set, keeps the process up after the batch serving the
	// read-only lookup API.
	HTTPAddr string

	PostgresDSN string
	RedisURL    string

	KafkaBrokers []string
	ReviewTopic  string
}

// EntityCacheTTL bounds how long a cached unified entity may serve lookups
// before falling through to the backing store.
var EntityCacheTTL = 5 * time.Minute

// FromEnv builds a Resolver config from environment variables, applying
// development defaults.
func FromEnv() Resolver {
	cfg := Resolver{
		InputDir:    envOr("UNIFY_INPUT_DIR", "data/normalized"),
		OutputDir:   envOr("UNIFY_OUTPUT_DIR", "data/resolved"),
		Workers:     4,
		HTTPAddr:    os.Getenv("UNIFY_HTTP_ADDR"),
		PostgresDSN: os.Getenv("UNIFY_POSTGRES_DSN"),
		RedisURL:    os.Getenv("UNIFY_REDIS_URL"),
		ReviewTopic: envOr("UNIFY_REVIEW_TOPIC", "identity.review-queue"),
	}

	if raw := os.Getenv("UNIFY_WORKERS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if raw := os.Getenv("UNIFY_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
