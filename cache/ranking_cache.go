package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	m "cryptostats/data/models"
)

const (
	keyPrefix  = "market_cap_rank"
	DefaultTTL = 15 * time.Minute
)

// RankingCache keeps the latest top n rankings so repeated rank, fetch and http calls
// do not hit the exchange each time
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRankingCache connects to redis at addr and pings it
func NewRankingCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RankingCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return NewRankingCacheWithClient(rdb, ttl), nil
}

func NewRankingCacheWithClient(client *redis.Client, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RankingCache{client: client, ttl: ttl}
}

func rankingKey(n int) string {
	return fmt.Sprintf("%s:%d", keyPrefix, n)
}

// Get returns false on a miss
func (rc *RankingCache) Get(ctx context.Context, n int) ([]m.MarketCapRank, bool, error) {
	val, err := rc.client.Get(ctx, rankingKey(n)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading ranking %d from cache: %w", n, err)
	}

	var ranks []m.MarketCapRank
	if err := json.Unmarshal([]byte(val), &ranks); err != nil {
		return nil, false, fmt.Errorf("error decoding cached ranking %d: %w", n, err)
	}
	return ranks, true, nil
}

func (rc *RankingCache) Set(ctx context.Context, n int, ranks []m.MarketCapRank) error {
	data, err := json.Marshal(ranks)
	if err != nil {
		return fmt.Errorf("error encoding ranking %d: %w", n, err)
	}
	return rc.client.Set(ctx, rankingKey(n), data, rc.ttl).Err()
}

func (rc *RankingCache) Close() error {
	return rc.client.Close()
}
