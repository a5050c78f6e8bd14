package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptostats/config"
	"cryptostats/logging"
)

func Test_ServiceContext_OptionalBackends(t *testing.T) {
	dir := t.TempDir()
	cfg = &config.Config{
		DataDir:   dir,
		StoreFile: "store.json",
		Binance: config.BinanceConfig{
			ApiBase:           "http://127.0.0.1:1",
			WebBase:           "http://127.0.0.1:1",
			Timeout:           time.Second,
			RequestsPerSecond: 1,
			Workers:           1,
		},
	}
	logger = logging.New("error", "text")
	t.Cleanup(func() { cfg, logger, closers = nil, nil, nil })

	sc, err := serviceContext(context.Background())
	require.NoError(t, err)

	assert.Nil(t, sc.Repository)
	assert.Nil(t, sc.Cache)
	assert.NotNil(t, sc.Fetcher)
	assert.Equal(t, filepath.Join(dir, "store.json"), sc.StoreFile)
	assert.Equal(t, filepath.Join(dir, "monthly_stats.json"), sc.Sink.StatsFile)
	assert.Empty(t, closers)
}

func Test_ServiceContext_RedisDownIsNotFatal(t *testing.T) {
	cfg = &config.Config{
		DataDir:   t.TempDir(),
		StoreFile: "store.json",
		Redis:     config.RedisConfig{Addr: "127.0.0.1:1", TTL: time.Minute},
		Binance: config.BinanceConfig{
			RequestsPerSecond: 1,
			Workers:           1,
		},
	}
	logger = logging.New("error", "text")
	t.Cleanup(func() { cfg, logger, closers = nil, nil, nil })

	sc, err := serviceContext(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sc.Cache)
}

func Test_Commands_Registered(t *testing.T) {
	for _, name := range []string{"rank", "fetch", "compute", "serve", "migrate"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	flag := fetchCmd.Flags().Lookup("top")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
	assert.Equal(t, "10", rankCmd.Flags().Lookup("top").DefValue)
}
