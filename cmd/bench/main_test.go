package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	t.Setenv("CAPPED_CAPACITY", "64")
	t.Setenv("CAPPED_RETAIN", "8")
	t.Setenv("CAPPED_DURATION", "250ms")
	t.Setenv("CAPPED_SEED", "42")

	cfg, err := loadConfig([]string{"-retain", "16", "-workers", "0"})
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Capacity)
	assert.Equal(t, 16, cfg.Retain, "flag must override env")
	assert.Equal(t, 250*time.Millisecond, cfg.Duration)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 1, cfg.Workers, "non-positive workers clamp to 1")
	assert.Equal(t, ":8080", cfg.MetricsAddr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("CAPPED_ZIPF_S", "1.0")

	_, err := loadConfig(nil)
	require.Error(t, err)
}

func TestRun_InvalidCacheOptions(t *testing.T) {
	t.Setenv("CAPPED_CAPACITY", "10")
	t.Setenv("CAPPED_RETAIN", "10")

	cfg, err := loadConfig([]string{"-http", ""})
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.Error(t, run(context.Background(), cfg, log))
}
