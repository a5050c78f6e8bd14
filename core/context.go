package core

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"cryptostats/api/binance"
	m "cryptostats/data/models"
)

// Fetcher is the market data source, *binance.BinanceClient in production
type Fetcher interface {
	GetTopByMarketCap(ctx context.Context, n int) ([]m.MarketCapRank, error)
	GetTimeSeries(ctx context.Context, ranks []m.MarketCapRank, start, end time.Time, ti binance.TimeInterval) (m.TimeSeriesStore, error)
}

type RankingCache interface {
	Get(ctx context.Context, n int) ([]m.MarketCapRank, bool, error)
	Set(ctx context.Context, n int, ranks []m.MarketCapRank) error
}

// Repository is the postgres side, *repos.Postgres in production
type Repository interface {
	SaveSymbolTimeSeries(ctx context.Context, rank m.MarketCapRank, series m.SymbolSeries) (int64, error)
	InsertMonthlyStatistics(ctx context.Context, stats *m.MonthlyStatistics) (int32, int64, error)
	GetTimeSeriesStore(ctx context.Context) (m.TimeSeriesStore, error)
}

// ServiceContext holds the collaborators of every operation. Cache and Repository are
// optional and left nil when redis or postgres are not configured.
type ServiceContext struct {
	Context    context.Context
	Fetcher    Fetcher
	Cache      RankingCache
	Repository Repository
	Logger     logrus.FieldLogger
	StoreFile  string
	Sink       FileSink
}
