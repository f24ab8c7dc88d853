package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	require.Equal(t, "data/normalized", cfg.InputDir)
	require.Equal(t, "data/resolved", cfg.OutputDir)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, "identity.review-queue", cfg.ReviewTopic)
	require.Empty(t, cfg.HTTPAddr)
	require.Empty(t, cfg.PostgresDSN)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("UNIFY_INPUT_DIR", "/srv/in")
	t.Setenv("UNIFY_WORKERS", "8")
	t.Setenv("UNIFY_HTTP_ADDR", ":8080")
	t.Setenv("UNIFY_KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")

	cfg := FromEnv()

	require.Equal(t, "/srv/in", cfg.InputDir)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestFromEnvBadWorkersIgnored(t *testing.T) {
	t.Setenv("UNIFY_WORKERS", "zero")
	require.Equal(t, 4, FromEnv().Workers)

	t.Setenv("UNIFY_WORKERS", "-2")
	require.Equal(t, 4, FromEnv().Workers)
}
