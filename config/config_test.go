package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "binance_crypto_data.json", cfg.StoreFile)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 30*time.Second, cfg.Binance.Timeout)
	assert.Equal(t, 4, cfg.Binance.Workers)
	assert.Empty(t, cfg.Database.Url)
	assert.Empty(t, cfg.Redis.Addr)
}

func Test_Config_Environment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://stats@localhost:5432/crypto")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CRYPTOSTATS_BINANCE_WORKERS", "8")
	t.Setenv("CRYPTOSTATS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://stats@localhost:5432/crypto", cfg.Database.Url)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 8, cfg.Binance.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func Test_Config_File(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  addr: \":9090\"\nbinance:\n  requests_per_second: 2.5\nredis:\n  ttl: 1h\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2.5, cfg.Binance.RequestsPerSecond)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 4, cfg.Binance.Workers)
}

func Test_Config_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("CRYPTOSTATS_BINANCE_WORKERS", "0")
	_, err = Load("")
	assert.ErrorContains(t, err, "binance.workers")
}
