package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
)

func getTestCache(t *testing.T) (*RankingCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skip("miniredis cannot bind in this environment")
		}
		require.NoError(t, err)
	}
	t.Cleanup(mr.Close)

	rc := NewRankingCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { rc.Close() })
	return rc, mr
}

func Test_RankingCache_RoundTrip(t *testing.T) {
	rc, mr := getTestCache(t)
	ctx := context.Background()

	ranks := []m.MarketCapRank{
		{Symbol: "BTC", MarketCap: 6.7e11, Supply: 18.7e6},
		{Symbol: "ETH", MarketCap: 2.9e11, Supply: 116e6},
	}
	require.NoError(t, rc.Set(ctx, 2, ranks))
	assert.True(t, mr.Exists("market_cap_rank:2"))

	got, ok, err := rc.Get(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ranks, got)
}

func Test_RankingCache_MissAndExpiry(t *testing.T) {
	rc, mr := getTestCache(t)
	ctx := context.Background()

	_, ok, err := rc.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Set(ctx, 5, []m.MarketCapRank{{Symbol: "BTC"}}))
	ex.AssertAreEqual(t, "ttl", time.Minute, mr.TTL("market_cap_rank:5"))

	mr.FastForward(2 * time.Minute)

	_, ok, err = rc.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_RankingCache_CorruptValue(t *testing.T) {
	rc, mr := getTestCache(t)
	require.NoError(t, mr.Set("market_cap_rank:3", "not json"))

	_, ok, err := rc.Get(context.Background(), 3)
	assert.Error(t, err)
	assert.False(t, ok)
}

func Test_RankingCache_DefaultTtl(t *testing.T) {
	rc := NewRankingCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	defer rc.Close()
	ex.AssertAreEqual(t, "ttl", DefaultTTL, rc.ttl)
}
